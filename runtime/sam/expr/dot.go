package expr

import (
	"math"

	"github.com/brimdata/gather"
)

type DotExpr struct {
	record Evaluator
	field  string
}

func NewDotExpr(record Evaluator, field string) *DotExpr {
	return &DotExpr{record, field}
}

func (d *DotExpr) Eval(row gather.Row) gather.Value {
	return d.record.Eval(row).Attr(d.field)
}

// Index accesses an array element by position (negative positions count
// from the end) or an object attribute by name.  Anything else is null.
type Index struct {
	container Evaluator
	index     Evaluator
}

func NewIndexExpr(container, index Evaluator) *Index {
	return &Index{container, index}
}

func (i *Index) Eval(row gather.Row) gather.Value {
	container := i.container.Eval(row)
	index := i.index.Eval(row)
	switch container.Kind() {
	case gather.KindArray:
		f, ok := index.ToNumber()
		if !ok || index.IsNull() {
			return gather.Null
		}
		return container.Index(int(math.Trunc(f)))
	case gather.KindObject:
		if index.IsString() {
			return container.Attr(index.Str())
		}
	}
	return gather.Null
}
