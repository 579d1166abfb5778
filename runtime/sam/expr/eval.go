package expr

import (
	"fmt"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/pkg/anymath"
)

type Evaluator interface {
	Eval(gather.Row) gather.Value
}

type Function interface {
	Call([]gather.Value) gather.Value
}

type Not struct {
	expr Evaluator
}

var _ Evaluator = (*Not)(nil)

func NewLogicalNot(e Evaluator) *Not {
	return &Not{e}
}

func (n *Not) Eval(row gather.Row) gather.Value {
	return gather.NewBool(!n.expr.Eval(row).Truthy())
}

// And and Or evaluate to one of their operands, short-circuiting the right
// operand when the left one decides the result.
type And struct {
	lhs Evaluator
	rhs Evaluator
}

func NewLogicalAnd(lhs, rhs Evaluator) *And {
	return &And{lhs, rhs}
}

func (a *And) Eval(row gather.Row) gather.Value {
	lhs := a.lhs.Eval(row)
	if !lhs.Truthy() {
		return lhs
	}
	return a.rhs.Eval(row)
}

type Or struct {
	lhs Evaluator
	rhs Evaluator
}

func NewLogicalOr(lhs, rhs Evaluator) *Or {
	return &Or{lhs, rhs}
}

func (o *Or) Eval(row gather.Row) gather.Value {
	lhs := o.lhs.Eval(row)
	if lhs.Truthy() {
		return lhs
	}
	return o.rhs.Eval(row)
}

type In struct {
	elem      Evaluator
	container Evaluator
	negate    bool
}

func NewIn(elem, container Evaluator, negate bool) *In {
	return &In{elem, container, negate}
}

func (i *In) Eval(row gather.Row) gather.Value {
	elem := i.elem.Eval(row)
	found := false
	for _, v := range i.container.Eval(row).Array() {
		if gather.Equal(elem, v) {
			found = true
			break
		}
	}
	return gather.NewBool(found != i.negate)
}

type Compare struct {
	lhs     Evaluator
	rhs     Evaluator
	compare func(int) bool
}

func NewCompareRelative(lhs, rhs Evaluator, op string) (*Compare, error) {
	var compare func(int) bool
	switch op {
	case "==":
		compare = func(c int) bool { return c == 0 }
	case "!=":
		compare = func(c int) bool { return c != 0 }
	case "<":
		compare = func(c int) bool { return c < 0 }
	case "<=":
		compare = func(c int) bool { return c <= 0 }
	case ">":
		compare = func(c int) bool { return c > 0 }
	case ">=":
		compare = func(c int) bool { return c >= 0 }
	default:
		return nil, fmt.Errorf("unknown comparison operator: %s", op)
	}
	return &Compare{lhs, rhs, compare}, nil
}

func (c *Compare) Eval(row gather.Row) gather.Value {
	return gather.NewBool(c.compare(gather.Compare(c.lhs.Eval(row), c.rhs.Eval(row))))
}

// Arith applies an arithmetic operator after converting both operands to
// numbers.  Results that are not finite numbers, such as a division by
// zero, are null.
type Arith struct {
	lhs      Evaluator
	rhs      Evaluator
	function anymath.Float64
}

func NewArithmetic(lhs, rhs Evaluator, op string) (*Arith, error) {
	var f *anymath.Function
	switch op {
	case "+":
		f = anymath.Add
	case "-":
		f = anymath.Sub
	case "*":
		f = anymath.Mul
	case "/":
		f = anymath.Div
	case "%":
		f = anymath.Mod
	default:
		return nil, fmt.Errorf("unknown arithmetic operator: %s", op)
	}
	return &Arith{lhs, rhs, f.Float64}, nil
}

func (a *Arith) Eval(row gather.Row) gather.Value {
	lhs, _ := a.lhs.Eval(row).ToNumber()
	rhs, _ := a.rhs.Eval(row).ToNumber()
	return gather.NewNumber(a.function(lhs, rhs))
}

type Negate struct {
	expr Evaluator
}

func NewUnaryMinus(e Evaluator) *Negate {
	return &Negate{e}
}

func (n *Negate) Eval(row gather.Row) gather.Value {
	f, _ := n.expr.Eval(row).ToNumber()
	return gather.NewNumber(-f)
}

type Plus struct {
	expr Evaluator
}

func NewUnaryPlus(e Evaluator) *Plus {
	return &Plus{e}
}

func (p *Plus) Eval(row gather.Row) gather.Value {
	f, _ := p.expr.Eval(row).ToNumber()
	return gather.NewNumber(f)
}

type Conditional struct {
	predicate Evaluator
	thenExpr  Evaluator
	elseExpr  Evaluator
}

// NewConditional returns a ternary evaluator.  If thenExpr is nil, the
// value of predicate is returned when it is truthy.
func NewConditional(predicate, thenExpr, elseExpr Evaluator) *Conditional {
	return &Conditional{predicate, thenExpr, elseExpr}
}

func (c *Conditional) Eval(row gather.Row) gather.Value {
	val := c.predicate.Eval(row)
	if val.Truthy() {
		if c.thenExpr == nil {
			return val
		}
		return c.thenExpr.Eval(row)
	}
	return c.elseExpr.Eval(row)
}

type Call struct {
	fn    Function
	exprs []Evaluator
	args  []gather.Value
}

func NewCall(fn Function, exprs []Evaluator) *Call {
	return &Call{
		fn:    fn,
		exprs: exprs,
		args:  make([]gather.Value, len(exprs)),
	}
}

func (c *Call) Eval(row gather.Row) gather.Value {
	for k, e := range c.exprs {
		c.args[k] = e.Eval(row)
	}
	return c.fn.Call(c.args)
}

type ArrayExpr struct {
	elems []Evaluator
}

func NewArrayExpr(elems []Evaluator) *ArrayExpr {
	return &ArrayExpr{elems}
}

func (a *ArrayExpr) Eval(row gather.Row) gather.Value {
	vals := make([]gather.Value, 0, len(a.elems))
	for _, e := range a.elems {
		vals = append(vals, e.Eval(row))
	}
	return gather.NewArray(vals)
}

type ObjectExpr struct {
	names []string
	exprs []Evaluator
}

func NewObjectExpr(names []string, exprs []Evaluator) *ObjectExpr {
	return &ObjectExpr{names, exprs}
}

func (o *ObjectExpr) Eval(row gather.Row) gather.Value {
	fields := make([]gather.Field, 0, len(o.names))
	for k, name := range o.names {
		fields = append(fields, gather.Field{Name: name, Value: o.exprs[k].Eval(row)})
	}
	return gather.NewObject(fields)
}
