package expr

import (
	"slices"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/order"
)

type SortExpr struct {
	Evaluator
	Order order.Which
}

func NewSortExpr(eval Evaluator, o order.Which) SortExpr {
	return SortExpr{eval, o}
}

type Comparator struct {
	exprs []SortExpr
}

// NewComparator returns a row comparator for exprs.  To compare rows a and
// b, it iterates over the elements e of exprs, stopping when e(a)!=e(b).
func NewComparator(exprs ...SortExpr) *Comparator {
	return &Comparator{slices.Clone(exprs)}
}

// Compare returns an integer comparing two rows according to the receiver's
// configuration.  The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func (c *Comparator) Compare(a, b gather.Row) int {
	for _, k := range c.exprs {
		aval := k.Eval(a)
		bval := k.Eval(b)
		if k.Order == order.Desc {
			aval, bval = bval, aval
		}
		if v := gather.Compare(aval, bval); v != 0 {
			return v
		}
	}
	return 0
}

// SortStable sorts rows in place, evaluating each key once per row.
func (c *Comparator) SortStable(rows []gather.Row) {
	if len(c.exprs) == 0 {
		return
	}
	type keyed struct {
		keys []gather.Value
		row  gather.Row
	}
	entries := make([]keyed, len(rows))
	for i, row := range rows {
		keys := make([]gather.Value, len(c.exprs))
		for k, e := range c.exprs {
			keys[k] = e.Eval(row)
		}
		entries[i] = keyed{keys, row}
	}
	slices.SortStableFunc(entries, func(a, b keyed) int {
		for k, e := range c.exprs {
			v := gather.Compare(a.keys[k], b.keys[k])
			if e.Order == order.Desc {
				v = -v
			}
			if v != 0 {
				return v
			}
		}
		return 0
	})
	for i := range entries {
		rows[i] = entries[i].row
	}
}
