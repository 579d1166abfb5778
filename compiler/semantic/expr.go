package semantic

import (
	"strings"

	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/qerr"
	"github.com/brimdata/gather/runtime/sam/expr/function"
)

var binaryOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"&&": true, "||": true, "and": true, "or": true,
	"in": true, "not in": true,
}

var unaryOps = map[string]bool{"!": true, "not": true, "-": true, "+": true}

// semExpr resolves the variable references of e against scope and checks
// operators and function calls.
func (a *analyzer) semExpr(scope *Scope, e dag.Expr) error {
	switch e := e.(type) {
	case nil:
		return qerr.Structural("expression is missing")
	case *dag.ArrayExpr:
		return a.semExprs(scope, e.Elems)
	case *dag.BinaryExpr:
		e.Op = strings.ToLower(e.Op)
		if !binaryOps[e.Op] {
			return qerr.Structural("unknown operator %q", e.Op)
		}
		if err := a.semExpr(scope, e.LHS); err != nil {
			return err
		}
		return a.semExpr(scope, e.RHS)
	case *dag.CallExpr:
		if _, err := function.New(e.Name, len(e.Args)); err != nil {
			return qerr.Wrap(qerr.KindParseOrStructural, err, e.Name)
		}
		return a.semExprs(scope, e.Args)
	case *dag.CondExpr:
		if err := a.semExpr(scope, e.Cond); err != nil {
			return err
		}
		if e.Then != nil {
			if err := a.semExpr(scope, e.Then); err != nil {
				return err
			}
		}
		return a.semExpr(scope, e.Else)
	case *dag.DotExpr:
		return a.semExpr(scope, e.LHS)
	case *dag.IndexExpr:
		if err := a.semExpr(scope, e.Expr); err != nil {
			return err
		}
		return a.semExpr(scope, e.Index)
	case *dag.Literal:
		return nil
	case *dag.ObjectExpr:
		for _, f := range e.Fields {
			if err := a.semExpr(scope, f.Value); err != nil {
				return err
			}
		}
		return nil
	case *dag.UnaryExpr:
		e.Op = strings.ToLower(e.Op)
		if !unaryOps[e.Op] {
			return qerr.Structural("unknown operator %q", e.Op)
		}
		return a.semExpr(scope, e.Operand)
	case *dag.VarExpr:
		v := scope.lookup(e.Name)
		if v == nil {
			return qerr.UnknownVariable(e.Name)
		}
		e.Slot = v.Slot
		return nil
	}
	return qerr.Structural("unknown expression type %T", e)
}

func (a *analyzer) semExprs(scope *Scope, exprs []dag.Expr) error {
	for _, e := range exprs {
		if err := a.semExpr(scope, e); err != nil {
			return err
		}
	}
	return nil
}
