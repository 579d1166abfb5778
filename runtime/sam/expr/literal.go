package expr

import "github.com/brimdata/gather"

type Literal struct {
	val gather.Value
}

var _ Evaluator = (*Literal)(nil)

func NewLiteral(val gather.Value) *Literal {
	return &Literal{val: val}
}

func (l Literal) Eval(gather.Row) gather.Value {
	return l.val
}

// IsLiteral reports whether e always evaluates to the same value.
func IsLiteral(e Evaluator) bool {
	_, ok := e.(*Literal)
	return ok
}
