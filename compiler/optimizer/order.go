package optimizer

import (
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/compiler/sfmt"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/pkg/field"
)

// keyOf returns the identity of a sort or group expression.  Attribute
// paths rooted at a variable are identified by their path and any other
// expression by its text, so that, e.g., a SORT on d.a matches an index on
// attribute a of the documents bound to d.
func keyOf(e dag.Expr) field.Path {
	if path := dag.FullPath(e); path != nil {
		return path
	}
	return field.Path{sfmt.DAGExpr(e)}
}

func sortKeys(s *dag.SortOp) order.SortKeys {
	var keys order.SortKeys
	for _, e := range s.Exprs {
		keys = append(keys, order.NewSortKey(e.Order, keyOf(e.Key)))
	}
	return keys
}

func groupKeys(c *dag.CollectOp) field.List {
	var keys field.List
	for _, g := range c.Groups {
		keys = append(keys, keyOf(g.RHS))
	}
	return keys
}

// ordering returns the order of the rows entering seq[end] and the index
// of the operation that established it, or -1 if the rows are unordered.
func (o *Optimizer) ordering(seq dag.Seq, end int) (order.SortKeys, int) {
	var keys order.SortKeys
	from := -1
	for k, op := range seq[:end] {
		switch op := op.(type) {
		case *dag.IndexScan:
			keys, from = o.indexOrder(op), k
		case *dag.CollectionScan, *dag.ValuesScan, *dag.ReturnOp:
			keys, from = nil, -1
		case *dag.SortOp:
			if !op.IsSortNull() {
				keys, from = sortKeys(op), k
			}
		case *dag.CollectOp:
			keys, from = collectOrder(op, keys), k
			if keys == nil {
				from = -1
			}
		}
	}
	return keys, from
}

func (o *Optimizer) indexOrder(scan *dag.IndexScan) order.SortKeys {
	for _, def := range o.indexes.Indexes(scan.Collection) {
		if def.Name != scan.Index {
			continue
		}
		var keys order.SortKeys
		for _, k := range def.SortKeys() {
			which := k.Order
			if scan.Reverse {
				which = !which
			}
			keys = append(keys, order.NewSortKey(which, k.Key.Rebase(scan.Var.Name)))
		}
		return keys
	}
	return nil
}

// collectOrder returns the order of the output of a sorted COLLECT, which
// is the order of its input restricted to the group keys and renamed to
// the group variables.  A hash COLLECT produces no particular order.
func collectOrder(c *dag.CollectOp, input order.SortKeys) order.SortKeys {
	if c.Method != "sorted" || len(c.Groups) == 0 {
		return nil
	}
	m := make(map[string]field.Path)
	for _, g := range c.Groups {
		m[keyOf(g.RHS).String()] = field.New(g.LHS.Name)
	}
	return input.Rename(m)
}
