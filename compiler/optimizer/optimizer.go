// Package optimizer rewrites an analyzed plan: it resolves the method of
// every COLLECT, inserts and removes sorts, replaces full scans with index
// scans where an index provides a needed order and drops unused INTO
// retention.  Explain renders the result.
package optimizer

import (
	"reflect"
	"slices"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/compiler/sfmt"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/qerr"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/storage"
	"go.uber.org/zap"
)

type Optimizer struct {
	logger   *zap.Logger
	indexes  storage.IndexProvider
	enabled  map[string]bool
	applied  []string
	warnings *qerr.Warnings
}

func New(logger *zap.Logger, indexes storage.IndexProvider, opts runtime.OptimizerOptions, warnings *qerr.Warnings) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{
		logger:   logger,
		indexes:  indexes,
		enabled:  enabledRules(opts.Rules, warnings),
		warnings: warnings,
	}
}

// Optimize rewrites main in place.  If fullCount is set, the last LIMIT of
// the plan maintains the full count.
func (o *Optimizer) Optimize(main *dag.Main, fullCount bool) *dag.Main {
	seq := main.Body
	for _, rule := range Rules {
		if !o.enabled[rule] {
			continue
		}
		switch rule {
		case RemoveCollectVariables:
			seq = o.removeCollectVariables(seq)
		case SpecializeCollect:
			seq = o.specializeCollect(seq)
		case UseIndexForSort:
			seq = o.useIndexForSort(seq)
		case RemoveRedundantSorts:
			seq = o.removeRedundantSorts(seq)
		}
	}
	if fullCount {
		for k := len(seq) - 1; k >= 0; k-- {
			if limit, ok := seq[k].(*dag.LimitOp); ok {
				limit.FullCount = true
				break
			}
		}
	}
	main.Body = seq
	return main
}

// Applied returns the names of the rules that changed the plan.
func (o *Optimizer) Applied() []string {
	return o.applied
}

func (o *Optimizer) apply(rule string, fields ...zap.Field) {
	o.logger.Debug("optimizer rule applied", append([]zap.Field{zap.String("rule", rule)}, fields...)...)
	if !slices.Contains(o.applied, rule) {
		o.applied = append(o.applied, rule)
	}
}

// references reports whether any operation of seq refers to the variable
// called name.
func references(seq dag.Seq, name string) bool {
	var found bool
	dag.WalkT(reflect.ValueOf(&seq).Elem(), func(v *dag.VarExpr) *dag.VarExpr {
		if v.Name == name {
			found = true
		}
		return v
	})
	return found
}

// removeCollectVariables drops the INTO retention of every COLLECT whose
// INTO variable is never used.
func (o *Optimizer) removeCollectVariables(seq dag.Seq) dag.Seq {
	for k, op := range seq {
		c, ok := op.(*dag.CollectOp)
		if !ok || c.Into == nil {
			continue
		}
		if !references(seq[k+1:], c.Into.Var.Name) {
			o.apply(RemoveCollectVariables, zap.String("var", c.Into.Var.Name))
			c.Into = nil
		}
	}
	return seq
}

type collectOptions struct {
	method string
	force  bool
}

func parseCollectOptions(opts gather.Value) collectOptions {
	var out collectOptions
	if v := opts.Attr("method"); v.IsString() && (v.Str() == "hash" || v.Str() == "sorted") {
		out.method = v.Str()
	}
	out.force = opts.Attr("forceMethod").Bool()
	return out
}

// specializeCollect chooses the hash or sorted method of every COLLECT.
// The sorted method is used when the input is ordered by the group keys,
// when a sorted index can provide that order, or when requested.  A
// request for hash is a hint that a usable order overrides unless
// forceMethod is set.  A sorted COLLECT whose input is not ordered gets a
// sort on its group keys, and a hash COLLECT gets a sort on its output
// unless it is followed by a sort of its own or by SORT null, which is
// dropped.
func (o *Optimizer) specializeCollect(seq dag.Seq) dag.Seq {
	for k := 0; k < len(seq); k++ {
		c, ok := seq[k].(*dag.CollectOp)
		if !ok {
			continue
		}
		opts := parseCollectOptions(c.Options)
		if len(c.Groups) == 0 {
			c.Method = "sorted"
			if opts.force && opts.method == "hash" {
				c.Method = "hash"
			}
			o.apply(SpecializeCollect, zap.String("method", c.Method), zap.Int("groups", 0))
			continue
		}
		input, _ := o.ordering(seq, k)
		keys := groupKeys(c)
		covered := input.Groups(keys)
		var indexed []dag.SortExpr
		if !covered && o.enabled[UseIndexForSort] {
			indexed = o.indexSortFor(seq, k, c)
		}
		switch {
		case opts.force && opts.method != "":
			c.Method = opts.method
		case covered || indexed != nil:
			c.Method = "sorted"
			c.MethodOverridden = opts.method == "hash"
		case opts.method == "sorted":
			c.Method = "sorted"
		default:
			c.Method = "hash"
		}
		if c.Method == "sorted" {
			if !covered {
				exprs := indexed
				if exprs == nil {
					for _, g := range c.Groups {
						exprs = append(exprs, dag.NewSortExpr(dag.CopyExpr(g.RHS), order.Asc))
					}
				}
				seq.Insert(k, dag.NewImplicitSortOp(exprs...))
				k++
			}
		} else if k+1 < len(seq) && isSortNull(seq[k+1]) {
			seq.Delete(k+1, k+2)
			c.Unsorted = true
		} else if k+1 < len(seq) && isSort(seq[k+1]) {
			// The sort that follows determines the output order.
		} else {
			var exprs []dag.SortExpr
			for _, g := range c.Groups {
				v := dag.NewVar(g.LHS.Name)
				v.Slot = g.LHS.Slot
				exprs = append(exprs, dag.NewSortExpr(v, order.Asc))
			}
			seq.Insert(k+1, dag.NewImplicitSortOp(exprs...))
			k++
		}
		o.apply(SpecializeCollect,
			zap.String("method", c.Method),
			zap.Int("groups", len(c.Groups)),
			zap.Bool("overridden", c.MethodOverridden))
	}
	return seq
}

func isSort(op dag.Op) bool {
	_, ok := op.(*dag.SortOp)
	return ok
}

func isSortNull(op dag.Op) bool {
	s, ok := op.(*dag.SortOp)
	return ok && s.IsSortNull()
}

// removeRedundantSorts removes SORT null and every sort whose input is
// already in the requested order.  A COLLECT whose output order made a
// sort redundant is marked as having eliminated it.
func (o *Optimizer) removeRedundantSorts(seq dag.Seq) dag.Seq {
	for k := 0; k < len(seq); k++ {
		s, ok := seq[k].(*dag.SortOp)
		if !ok {
			continue
		}
		if s.IsSortNull() {
			seq.Delete(k, k+1)
			k--
			o.apply(RemoveRedundantSorts, zap.String("sort", "null"))
			continue
		}
		input, from := o.ordering(seq, k)
		if !input.HasPrefix(sortKeys(s)) {
			continue
		}
		if c := orderedBy(seq, from); c != nil {
			c.EliminatedSort = true
		}
		o.apply(RemoveRedundantSorts, zap.String("sort", sfmt.DAGSeq(dag.Seq{s})))
		seq.Delete(k, k+1)
		k--
	}
	return seq
}

// orderedBy returns the COLLECT whose output order is established by
// seq[from], either directly or through the sort that follows a hash
// COLLECT.
func orderedBy(seq dag.Seq, from int) *dag.CollectOp {
	if from < 0 {
		return nil
	}
	if c, ok := seq[from].(*dag.CollectOp); ok {
		return c
	}
	if s, ok := seq[from].(*dag.SortOp); ok && s.Implicit && from > 0 {
		if c, ok := seq[from-1].(*dag.CollectOp); ok {
			return c
		}
	}
	return nil
}
