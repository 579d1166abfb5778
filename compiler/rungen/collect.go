package rungen

import (
	"fmt"

	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/runtime/sam/expr"
	"github.com/brimdata/gather/runtime/sam/op/collect"
	"github.com/brimdata/gather/sbuf"
)

func (b *Builder) compileCollect(parent sbuf.Puller, c *dag.CollectOp) (*collect.Op, error) {
	method := collect.Hash
	if c.Method != "" {
		var err error
		if method, err = collect.ParseMethod(c.Method); err != nil {
			return nil, err
		}
	}
	config := collect.Config{
		Method:    method,
		IntoSlot:  -1,
		CountSlot: -1,
		Width:     b.width,
	}
	for _, g := range c.Groups {
		e, err := b.compileExpr(g.RHS)
		if err != nil {
			return nil, err
		}
		config.Keys = append(config.Keys, e)
		config.KeySlots = append(config.KeySlots, g.LHS.Slot)
	}
	for _, a := range c.Aggs {
		agg, err := b.compileAgg(a)
		if err != nil {
			return nil, err
		}
		config.Aggs = append(config.Aggs, agg)
		config.AggSlots = append(config.AggSlots, a.LHS.Slot)
	}
	if c.Into != nil {
		if c.Into.Expr == nil {
			return nil, fmt.Errorf("internal error: INTO %s has no projection", c.Into.Var.Name)
		}
		e, err := b.compileExpr(c.Into.Expr)
		if err != nil {
			return nil, err
		}
		config.Into = e
		config.IntoSlot = c.Into.Var.Slot
	}
	if c.CountInto != nil {
		config.CountSlot = c.CountInto.Slot
	}
	return collect.New(b.rctx, parent, config)
}

func (b *Builder) compileAgg(a dag.Assignment) (*expr.Aggregator, error) {
	call, ok := a.RHS.(*dag.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil, fmt.Errorf("internal error: aggregate %s is not an aggregate call", a.LHS.Name)
	}
	arg, err := b.compileExpr(call.Args[0])
	if err != nil {
		return nil, err
	}
	return expr.NewAggregator(call.Name, arg)
}
