package rungen

import (
	"fmt"
	"reflect"

	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/runtime/sam/expr"
	"github.com/brimdata/gather/runtime/sam/expr/function"
)

func (b *Builder) compileExpr(e dag.Expr) (expr.Evaluator, error) {
	switch e := e.(type) {
	case *dag.Literal:
		return expr.NewLiteral(e.Value), nil
	case *dag.VarExpr:
		if e.Slot < 0 {
			return nil, fmt.Errorf("internal error: variable %s has no slot", e.Name)
		}
		return expr.NewVar(e.Slot), nil
	case *dag.DotExpr:
		lhs, err := b.compileExpr(e.LHS)
		if err != nil {
			return nil, err
		}
		return expr.NewDotExpr(lhs, e.RHS), nil
	case *dag.IndexExpr:
		container, err := b.compileExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		index, err := b.compileExpr(e.Index)
		if err != nil {
			return nil, err
		}
		return expr.NewIndexExpr(container, index), nil
	case *dag.ArrayExpr:
		elems, err := b.compileExprs(e.Elems)
		if err != nil {
			return nil, err
		}
		return expr.NewArrayExpr(elems), nil
	case *dag.ObjectExpr:
		names := make([]string, 0, len(e.Fields))
		exprs := make([]dag.Expr, 0, len(e.Fields))
		for _, f := range e.Fields {
			names = append(names, f.Name)
			exprs = append(exprs, f.Value)
		}
		evals, err := b.compileExprs(exprs)
		if err != nil {
			return nil, err
		}
		return expr.NewObjectExpr(names, evals), nil
	case *dag.UnaryExpr:
		return b.compileUnary(e)
	case *dag.BinaryExpr:
		return b.compileBinary(e)
	case *dag.CondExpr:
		cond, err := b.compileExpr(e.Cond)
		if err != nil {
			return nil, err
		}
		var then expr.Evaluator
		if e.Then != nil {
			if then, err = b.compileExpr(e.Then); err != nil {
				return nil, err
			}
		}
		els, err := b.compileExpr(e.Else)
		if err != nil {
			return nil, err
		}
		return expr.NewConditional(cond, then, els), nil
	case *dag.CallExpr:
		fn, err := function.New(e.Name, len(e.Args))
		if err != nil {
			return nil, fmt.Errorf("%s(): %w", e.Name, err)
		}
		args, err := b.compileExprs(e.Args)
		if err != nil {
			return nil, err
		}
		return expr.NewCall(fn, args), nil
	}
	return nil, fmt.Errorf("internal error: unknown expression %T", e)
}

func (b *Builder) compileExprs(exprs []dag.Expr) ([]expr.Evaluator, error) {
	out := make([]expr.Evaluator, 0, len(exprs))
	for _, e := range exprs {
		eval, err := b.compileExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, eval)
	}
	return out, nil
}

func (b *Builder) compileUnary(e *dag.UnaryExpr) (expr.Evaluator, error) {
	operand, err := b.compileExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "!", "not":
		return expr.NewLogicalNot(operand), nil
	case "-":
		return expr.NewUnaryMinus(operand), nil
	case "+":
		return expr.NewUnaryPlus(operand), nil
	}
	return nil, fmt.Errorf("unknown unary operator %q", e.Op)
}

func (b *Builder) compileBinary(e *dag.BinaryExpr) (expr.Evaluator, error) {
	lhs, err := b.compileExpr(e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := b.compileExpr(e.RHS)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "&&", "and":
		return expr.NewLogicalAnd(lhs, rhs), nil
	case "||", "or":
		return expr.NewLogicalOr(lhs, rhs), nil
	case "in":
		return expr.NewIn(lhs, rhs, false), nil
	case "not in":
		return expr.NewIn(lhs, rhs, true), nil
	case "==", "!=", "<", "<=", ">", ">=":
		return expr.NewCompareRelative(lhs, rhs, e.Op)
	case "+", "-", "*", "/", "%":
		return expr.NewArithmetic(lhs, rhs, e.Op)
	}
	return nil, fmt.Errorf("unknown operator %q", e.Op)
}

// canFail reports whether evaluating e can abort the query.
func canFail(e dag.Expr) bool {
	var found bool
	dag.WalkT(reflect.ValueOf(&e).Elem(), func(call *dag.CallExpr) *dag.CallExpr {
		if function.CanFail(call.Name) {
			found = true
		}
		return call
	})
	return found
}
