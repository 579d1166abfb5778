package semantic

import (
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/qerr"
	"github.com/brimdata/gather/runtime/sam/expr/agg"
)

// semCollect builds a COLLECT: it checks the clause structure and the form
// of every aggregate before resolving any variable, so that a malformed
// clause is reported as such even when it also references unknown
// variables.  The grouping, aggregate and INTO expressions are resolved in
// the incoming scope and the returned scope holds only the variables the
// COLLECT binds.
func (a *analyzer) semCollect(scope *Scope, c *dag.CollectOp) (*Scope, error) {
	if err := checkCollectStructure(c); err != nil {
		return nil, err
	}
	for _, assignment := range c.Aggs {
		if err := checkAggregate(assignment); err != nil {
			return nil, err
		}
	}
	for _, g := range c.Groups {
		if err := a.semExpr(scope, g.RHS); err != nil {
			return nil, err
		}
	}
	for _, assignment := range c.Aggs {
		call := assignment.RHS.(*dag.CallExpr)
		call.Name, _ = agg.Canonical(call.Name)
		if err := a.semExprs(scope, call.Args); err != nil {
			return nil, err
		}
	}
	if c.Into != nil {
		if err := a.semInto(scope, c); err != nil {
			return nil, err
		}
	}
	a.checkOptions("COLLECT", c.Options, collectOptions)
	out := NewScope()
	for _, v := range c.Vars() {
		if err := a.slots.define(out, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkCollectStructure(c *dag.CollectOp) error {
	if len(c.Groups) == 0 && len(c.Aggs) == 0 && c.Into == nil && c.CountInto == nil {
		return qerr.Structural("COLLECT requires a grouping, AGGREGATE, INTO or WITH COUNT INTO")
	}
	if c.CountInto != nil && (len(c.Aggs) > 0 || c.Into != nil) {
		return qerr.Structural("WITH COUNT INTO cannot be combined with AGGREGATE or INTO")
	}
	for _, g := range c.Groups {
		if g.LHS == nil || g.RHS == nil {
			return qerr.Structural("COLLECT grouping requires a variable and an expression")
		}
	}
	for _, assignment := range c.Aggs {
		if assignment.LHS == nil {
			return qerr.Structural("AGGREGATE requires a variable")
		}
	}
	if c.Into != nil && c.Into.Var == nil {
		return qerr.Structural("INTO requires a variable")
	}
	if len(c.Keep) > 0 {
		if c.Into == nil {
			return qerr.Structural("KEEP requires INTO")
		}
		if c.Into.Expr != nil {
			return qerr.Structural("KEEP cannot be combined with an INTO expression")
		}
	}
	return nil
}

// checkAggregate checks that the right-hand side of an AGGREGATE
// assignment is a call of an aggregate function with one argument.
// Anything else, such as a constant, an attribute, a scalar function or an
// expression over an aggregate call, can not be computed incrementally.
func checkAggregate(assignment dag.Assignment) error {
	call, ok := assignment.RHS.(*dag.CallExpr)
	if !ok {
		return qerr.InvalidAggregate("%s must be an aggregate function call", assignment.LHS.Name)
	}
	if _, ok := agg.Canonical(call.Name); !ok {
		return qerr.InvalidAggregate("%s is not an aggregate function", call.Name)
	}
	if len(call.Args) != 1 {
		return qerr.InvalidAggregate("%s requires exactly one argument", call.Name)
	}
	return nil
}

// semInto resolves the INTO expression.  Without one, each group retains
// an object of the KEEP variables or, without KEEP, of every variable in
// scope.
func (a *analyzer) semInto(scope *Scope, c *dag.CollectOp) error {
	if c.Into.Expr != nil {
		return a.semExpr(scope, c.Into.Expr)
	}
	vars := scope.Vars()
	if len(c.Keep) > 0 {
		vars = vars[:0:0]
		for _, k := range c.Keep {
			v := scope.lookup(k.Name)
			if v == nil {
				return qerr.UnknownVariable(k.Name)
			}
			k.Slot = v.Slot
			vars = append(vars, v)
		}
	}
	var fields []dag.Field
	for _, v := range vars {
		ref := dag.NewVar(v.Name)
		ref.Slot = v.Slot
		fields = append(fields, dag.Field{Name: v.Name, Value: ref})
	}
	c.Into.Expr = dag.NewObjectExpr(fields...)
	c.Keep = nil
	return nil
}
