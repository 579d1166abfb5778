package collect

import (
	"github.com/brimdata/gather"
	"github.com/brimdata/gather/runtime/sam/expr"
	"github.com/brimdata/gather/runtime/sam/expr/agg"
)

type valRow []agg.Function

func newValRow(aggs []*expr.Aggregator) valRow {
	row := make([]agg.Function, 0, len(aggs))
	for _, a := range aggs {
		row = append(row, a.NewFunction())
	}
	return row
}

func (v valRow) apply(aggs []*expr.Aggregator, row gather.Row) {
	for k, a := range aggs {
		a.Apply(v[k], row)
	}
}

func (v valRow) size() int {
	var n int
	for _, f := range v {
		n += f.Size()
	}
	return n
}
