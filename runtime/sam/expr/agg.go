package expr

import (
	"github.com/brimdata/gather"
	"github.com/brimdata/gather/runtime/sam/expr/agg"
)

type Aggregator struct {
	pattern agg.Pattern
	expr    Evaluator
}

func NewAggregator(name string, expr Evaluator) (*Aggregator, error) {
	pattern, err := agg.NewPattern(name)
	if err != nil {
		return nil, err
	}
	if expr == nil {
		expr = &Literal{gather.True}
	}
	return &Aggregator{
		pattern: pattern,
		expr:    expr,
	}, nil
}

func (a *Aggregator) NewFunction() agg.Function {
	return a.pattern()
}

func (a *Aggregator) Apply(f agg.Function, row gather.Row) {
	f.Consume(a.expr.Eval(row))
}
