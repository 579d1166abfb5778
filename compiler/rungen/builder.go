// Package rungen builds the runtime puller graph of an optimized plan.
package rungen

import (
	"fmt"
	"reflect"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/runtime/exec"
	"github.com/brimdata/gather/runtime/sam/expr"
	"github.com/brimdata/gather/runtime/sam/op"
	"github.com/brimdata/gather/runtime/sam/op/limit"
	"github.com/brimdata/gather/runtime/sam/op/scan"
	"github.com/brimdata/gather/runtime/sam/op/sort"
	"github.com/brimdata/gather/sbuf"
)

type Builder struct {
	rctx  *runtime.Context
	env   *exec.Environment
	width int
}

func NewBuilder(rctx *runtime.Context, env *exec.Environment) *Builder {
	return &Builder{rctx: rctx, env: env}
}

// Build returns the puller producing the rows of main, where each row holds
// the value of the final RETURN in its only slot.
func (b *Builder) Build(main *dag.Main) (sbuf.Puller, error) {
	if len(main.Body) == 0 {
		return nil, fmt.Errorf("internal error: empty plan")
	}
	b.width = width(main)
	var parent sbuf.Puller
	for _, o := range main.Body {
		var err error
		parent, err = b.compileOp(o, parent)
		if err != nil {
			return nil, err
		}
	}
	return op.NewCatcher(parent), nil
}

// width returns the number of row slots main needs.
func width(main *dag.Main) int {
	n := 0
	dag.WalkT(reflect.ValueOf(main).Elem(), func(v *dag.VarExpr) *dag.VarExpr {
		n = max(n, v.Slot+1)
		return v
	})
	return n
}

func (b *Builder) compileOp(o dag.Op, parent sbuf.Puller) (sbuf.Puller, error) {
	if parent == nil {
		return b.compileSource(o)
	}
	switch o := o.(type) {
	case *dag.CalcOp:
		e, err := b.compileExpr(o.Expr)
		if err != nil {
			return nil, err
		}
		return op.NewCalc(b.rctx, parent, o.Var.Slot, e, !canFail(o.Expr)), nil
	case *dag.FilterOp:
		e, err := b.compileExpr(o.Expr)
		if err != nil {
			return nil, err
		}
		return op.NewFilter(b.rctx, parent, e), nil
	case *dag.SortOp:
		if o.IsSortNull() {
			return parent, nil
		}
		exprs, err := b.compileSortExprs(o.Exprs)
		if err != nil {
			return nil, err
		}
		return sort.New(b.rctx, parent, exprs), nil
	case *dag.LimitOp:
		return limit.New(b.rctx, parent, o.Offset, o.Count, o.FullCount), nil
	case *dag.CollectOp:
		return b.compileCollect(parent, o)
	case *dag.ReturnOp:
		e, err := b.compileExpr(o.Expr)
		if err != nil {
			return nil, err
		}
		return op.NewReturn(b.rctx, parent, e, !canFail(o.Expr)), nil
	}
	return nil, fmt.Errorf("internal error: %T can not follow another operation", o)
}

func (b *Builder) compileSource(o dag.Op) (sbuf.Puller, error) {
	switch o := o.(type) {
	case *dag.CollectionScan:
		coll, err := b.env.Lookup(o.Collection)
		if err != nil {
			return nil, err
		}
		return scan.NewCollectionScan(b.rctx, coll, o.Var.Slot, b.width), nil
	case *dag.IndexScan:
		coll, err := b.env.Lookup(o.Collection)
		if err != nil {
			return nil, err
		}
		return scan.NewIndexScan(b.rctx, coll, o.Index, o.Reverse, o.Var.Slot, b.width)
	case *dag.ValuesScan:
		vals := make([]gather.Value, 0, len(o.Values))
		for _, e := range o.Values {
			eval, err := b.compileExpr(e)
			if err != nil {
				return nil, err
			}
			vals = append(vals, eval.Eval(nil))
		}
		return scan.NewValuesScan(b.rctx, vals, o.Var.Slot, b.width), nil
	}
	return nil, fmt.Errorf("internal error: plan starts with %T instead of a source", o)
}

func (b *Builder) compileSortExprs(exprs []dag.SortExpr) ([]expr.SortExpr, error) {
	out := make([]expr.SortExpr, 0, len(exprs))
	for _, s := range exprs {
		e, err := b.compileExpr(s.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, expr.NewSortExpr(e, s.Order))
	}
	return out, nil
}
