package expr

import "github.com/brimdata/gather"

// Var evaluates to the value of a variable, which lives in a slot of the
// row.  Variables not yet bound in a row are null.
type Var int

var _ Evaluator = (*Var)(nil)

func NewVar(slot int) *Var {
	return (*Var)(&slot)
}

func (v Var) Eval(row gather.Row) gather.Value {
	if int(v) < len(row) {
		return row[v]
	}
	return gather.Null
}

func (v Var) Slot() int {
	return int(v)
}
