package sfmt

import (
	"regexp"
	"strings"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/order"
)

// DAG formats a plan as query text, one operation per line.
func DAG(main *dag.Main) string {
	c := &canonDAG{formatter{tab: 2}}
	c.seq(main.Body)
	return c.String()
}

func DAGSeq(seq dag.Seq) string {
	return DAG(&dag.Main{Body: seq})
}

func DAGExpr(e dag.Expr) string {
	c := &canonDAG{formatter{tab: 2}}
	c.expr(e, "")
	return c.String()
}

// DAGExprs formats a comma-separated list of expressions.
func DAGExprs(exprs []dag.Expr) string {
	c := &canonDAG{formatter{tab: 2}}
	c.exprs(exprs)
	return c.String()
}

type canonDAG struct {
	formatter
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (c *canonDAG) name(s string) {
	if identifier.MatchString(s) {
		c.write(s)
	} else {
		c.write("`%s`", strings.ReplaceAll(s, "`", "\\`"))
	}
}

func (c *canonDAG) exprs(exprs []dag.Expr) {
	for k, e := range exprs {
		if k > 0 {
			c.write(", ")
		}
		c.expr(e, "")
	}
}

func (c *canonDAG) expr(e dag.Expr, parent string) {
	switch e := e.(type) {
	case nil:
		c.write("null")
	case *dag.ArrayExpr:
		c.write("[")
		c.exprs(e.Elems)
		c.write("]")
	case *dag.BinaryExpr:
		parens := needsparens(parent, e.Op)
		c.maybewrite("(", parens)
		c.expr(e.LHS, e.Op)
		c.write(" %s ", strings.ToUpper(e.Op))
		c.expr(e.RHS, e.Op)
		c.maybewrite(")", parens)
	case *dag.CallExpr:
		c.write(strings.ToUpper(e.Name))
		c.write("(")
		c.exprs(e.Args)
		c.write(")")
	case *dag.CondExpr:
		parens := needsparens(parent, "?")
		c.maybewrite("(", parens)
		c.expr(e.Cond, "?")
		if e.Then == nil {
			c.write(" ?: ")
		} else {
			c.write(" ? ")
			c.expr(e.Then, "?")
			c.write(" : ")
		}
		c.expr(e.Else, "?")
		c.maybewrite(")", parens)
	case *dag.DotExpr:
		c.expr(e.LHS, "")
		c.write(".")
		c.name(e.RHS)
	case *dag.IndexExpr:
		c.expr(e.Expr, "")
		c.write("[")
		c.expr(e.Index, "")
		c.write("]")
	case *dag.Literal:
		c.write(e.Value.String())
	case *dag.ObjectExpr:
		c.write("{")
		for k, f := range e.Fields {
			if k > 0 {
				c.write(", ")
			}
			c.name(f.Name)
			c.write(": ")
			c.expr(f.Value, "")
		}
		c.write("}")
	case *dag.UnaryExpr:
		op := e.Op
		if op == "!" {
			op = "NOT "
		}
		c.write(op)
		c.expr(e.Operand, "not")
	case *dag.VarExpr:
		c.name(e.Name)
	default:
		c.write("(unknown expr %T)", e)
	}
}

func (c *canonDAG) maybewrite(s string, do bool) {
	if do {
		c.write(s)
	}
}

func (c *canonDAG) seq(seq dag.Seq) {
	for k, op := range seq {
		if k > 0 {
			c.line()
		}
		c.op(op)
		if k == 0 {
			c.open()
		}
	}
	c.indent = 0
}

func (c *canonDAG) assignments(assignments []dag.Assignment) {
	for k, a := range assignments {
		if k > 0 {
			c.write(", ")
		}
		c.name(a.LHS.Name)
		c.write(" = ")
		c.expr(a.RHS, "")
	}
}

func (c *canonDAG) options(o gather.Value) {
	if !o.IsNull() {
		c.write(" OPTIONS %s", o)
	}
}

func (c *canonDAG) op(op dag.Op) {
	switch op := op.(type) {
	case *dag.CollectionScan:
		c.write("FOR ")
		c.name(op.Var.Name)
		c.write(" IN ")
		c.name(op.Collection)
		c.options(op.Options)
	case *dag.IndexScan:
		c.write("FOR ")
		c.name(op.Var.Name)
		c.write(" IN ")
		c.name(op.Collection)
		c.write(" /* index %s", op.Index)
		if op.Reverse {
			c.write(" reverse")
		}
		c.write(" */")
		c.options(op.Options)
	case *dag.ValuesScan:
		c.write("FOR ")
		c.name(op.Var.Name)
		c.write(" IN [")
		c.exprs(op.Values)
		c.write("]")
	case *dag.CalcOp:
		c.write("LET ")
		c.name(op.Var.Name)
		c.write(" = ")
		c.expr(op.Expr, "")
	case *dag.FilterOp:
		c.write("FILTER ")
		c.expr(op.Expr, "")
	case *dag.SortOp:
		c.write("SORT ")
		for k, s := range op.Exprs {
			if k > 0 {
				c.write(", ")
			}
			c.expr(s.Key, "")
			if s.Order == order.Desc {
				c.write(" DESC")
			}
		}
		if op.Implicit {
			c.write(" /* implicit */")
		}
		c.options(op.Options)
	case *dag.LimitOp:
		c.write("LIMIT %d, %d", op.Offset, op.Count)
		if op.FullCount {
			c.write(" /* fullCount */")
		}
		c.options(op.Options)
	case *dag.CollectOp:
		c.collect(op)
	case *dag.ReturnOp:
		c.write("RETURN ")
		c.expr(op.Expr, "")
	default:
		c.write("(unknown op %T)", op)
	}
}

func (c *canonDAG) collect(op *dag.CollectOp) {
	c.write("COLLECT")
	if len(op.Groups) > 0 {
		c.write(" ")
		c.assignments(op.Groups)
	}
	if len(op.Aggs) > 0 {
		c.write(" AGGREGATE ")
		c.assignments(op.Aggs)
	}
	if op.Into != nil {
		c.write(" INTO ")
		c.name(op.Into.Var.Name)
		if op.Into.Expr != nil {
			c.write(" = ")
			c.expr(op.Into.Expr, "")
		}
	}
	if len(op.Keep) > 0 {
		c.write(" KEEP ")
		for k, v := range op.Keep {
			if k > 0 {
				c.write(", ")
			}
			c.name(v.Name)
		}
	}
	if op.CountInto != nil {
		c.write(" WITH COUNT INTO ")
		c.name(op.CountInto.Name)
	}
	c.options(op.Options)
	if op.Method != "" {
		c.write(" /* %s */", op.Method)
	}
}
