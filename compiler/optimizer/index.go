package optimizer

import (
	"slices"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/storage"
	"go.uber.org/zap"
)

// hinted is the index provider of one scan: it honors the scan's
// disableIndex, indexHint and forceIndexHint options.
type hinted struct {
	storage.IndexProvider
	opts gather.Value
}

func (h hinted) Indexes(collection string) []storage.IndexDef {
	if h.opts.Attr("disableIndex").Bool() {
		return nil
	}
	var hints []string
	switch v := h.opts.Attr("indexHint"); {
	case v.IsString():
		hints = []string{v.Str()}
	case v.IsArray():
		for _, elem := range v.Array() {
			if elem.IsString() {
				hints = append(hints, elem.Str())
			}
		}
	}
	defs := h.IndexProvider.Indexes(collection)
	if len(hints) == 0 {
		return defs
	}
	var out []storage.IndexDef
	for _, hint := range hints {
		if i := slices.IndexFunc(defs, func(d storage.IndexDef) bool { return d.Name == hint }); i >= 0 {
			out = append(out, defs[i])
		}
	}
	if h.opts.Attr("forceIndexHint").Bool() {
		return out
	}
	for _, def := range defs {
		if !slices.Contains(hints, def.Name) {
			out = append(out, def)
		}
	}
	return out
}

// scanFor returns the full collection scan that feeds seq[end] through
// filters and calculations only, which preserve the order of the scan.
func scanFor(seq dag.Seq, end int) *dag.CollectionScan {
	for k := end - 1; k >= 0; k-- {
		switch op := seq[k].(type) {
		case *dag.FilterOp, *dag.CalcOp:
		case *dag.CollectionScan:
			return op
		default:
			return nil
		}
	}
	return nil
}

// indexFor returns the first sorted index of scan's collection whose order
// satisfies match, with the index keys rooted at the scan variable.
func (o *Optimizer) indexFor(scan *dag.CollectionScan, match func(order.SortKeys) bool) (storage.IndexDef, order.SortKeys, bool) {
	var keys order.SortKeys
	def, ok := storage.SortedIndex(hinted{o.indexes, scan.Options}, scan.Collection, func(k order.SortKeys) bool {
		keys = nil
		for _, key := range k {
			keys = append(keys, order.NewSortKey(key.Order, key.Key.Rebase(scan.Var.Name)))
		}
		return match(keys)
	})
	return def, keys, ok
}

// indexSortFor returns the sort that orders the input of the COLLECT at
// seq[end] by its group keys in the order of a sorted index, or nil if no
// index can provide such an order.
func (o *Optimizer) indexSortFor(seq dag.Seq, end int, c *dag.CollectOp) []dag.SortExpr {
	scan := scanFor(seq, end)
	if scan == nil {
		return nil
	}
	groups := groupKeys(c)
	_, keys, ok := o.indexFor(scan, func(keys order.SortKeys) bool {
		return keys.Groups(groups)
	})
	if !ok {
		return nil
	}
	var exprs []dag.SortExpr
	for _, key := range keys[:len(groups)] {
		i := slices.IndexFunc(groups, key.Key.Equal)
		exprs = append(exprs, dag.NewSortExpr(dag.CopyExpr(c.Groups[i].RHS), key.Order))
	}
	return exprs
}

// useIndexForSort replaces a full scan followed by a sort on attributes of
// the scanned documents with a scan of a sorted index that provides the
// order.
func (o *Optimizer) useIndexForSort(seq dag.Seq) dag.Seq {
	for k := 0; k < len(seq); k++ {
		s, ok := seq[k].(*dag.SortOp)
		if !ok || s.IsSortNull() {
			continue
		}
		scan := scanFor(seq, k)
		if scan == nil {
			continue
		}
		want := sortKeys(s)
		which := want.Primary().Order
		asc := make(order.SortKeys, 0, len(want))
		for _, key := range want {
			if key.Order != which || len(key.Key) < 2 || key.Key[0] != scan.Var.Name {
				asc = nil
				break
			}
			asc = append(asc, order.NewSortKey(order.Asc, key.Key))
		}
		if asc == nil {
			continue
		}
		def, _, ok := o.indexFor(scan, func(keys order.SortKeys) bool {
			return keys.HasPrefix(asc)
		})
		if !ok {
			continue
		}
		index := dag.NewIndexScan(scan.Collection, def.Name, scan.Var.Name, which == order.Desc)
		index.Var = scan.Var
		index.Options = scan.Options
		seq[slices.Index(seq, dag.Op(scan))] = index
		seq.Delete(k, k+1)
		k--
		o.apply(UseIndexForSort, zap.String("index", def.Name), zap.Bool("reverse", index.Reverse))
	}
	return seq
}
