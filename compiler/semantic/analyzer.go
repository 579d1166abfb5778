// Package semantic checks a query plan before it is optimized: it resolves
// every variable reference, assigns row slots to variables, validates the
// structure of COLLECT clauses and their aggregate expressions, and
// collects warnings for unrecognized OPTIONS attributes.
package semantic

import (
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/qerr"
)

// Analyze checks main and returns a copy of it with variable slots
// assigned and default INTO projections made explicit.  Errors abort
// compilation while options problems are added to warnings.
func Analyze(main *dag.Main, warnings *qerr.Warnings) (*dag.Main, error) {
	if len(main.Body) == 0 {
		return nil, qerr.Structural("query is empty")
	}
	a := &analyzer{
		warnings: warnings,
		slots:    slots{defined: make(map[string]bool)},
	}
	seq := dag.CopySeq(main.Body)
	if err := a.semSeq(seq); err != nil {
		return nil, err
	}
	return &dag.Main{Body: seq}, nil
}

type analyzer struct {
	warnings *qerr.Warnings
	slots    slots
}

func (a *analyzer) semSeq(seq dag.Seq) error {
	if dag.SourceVar(seq[0]) == nil {
		return qerr.Structural("query must start with FOR")
	}
	scope := NewScope()
	for k, op := range seq {
		if k > 0 && dag.SourceVar(op) != nil {
			return qerr.Structural("nested FOR loops are not supported")
		}
		if _, ok := op.(*dag.ReturnOp); ok && k != len(seq)-1 {
			return qerr.Structural("RETURN must be the last operation of a query")
		}
		var err error
		scope, err = a.semOp(scope, op)
		if err != nil {
			return err
		}
	}
	if _, ok := seq[len(seq)-1].(*dag.ReturnOp); !ok {
		return qerr.Structural("query must end with RETURN")
	}
	return nil
}

// semOp checks op against the variables in scope and returns the scope of
// the operation that follows it.
func (a *analyzer) semOp(scope *Scope, op dag.Op) (*Scope, error) {
	switch op := op.(type) {
	case *dag.CollectionScan:
		if op.Collection == "" {
			return nil, qerr.Structural("FOR requires a collection")
		}
		a.checkOptions("FOR", op.Options, scanOptions)
		return scope, a.slots.define(scope, op.Var)
	case *dag.IndexScan:
		if op.Collection == "" || op.Index == "" {
			return nil, qerr.Structural("index scan requires a collection and an index")
		}
		a.checkOptions("FOR", op.Options, scanOptions)
		return scope, a.slots.define(scope, op.Var)
	case *dag.ValuesScan:
		// Values are constant and evaluated before any variable exists.
		if err := a.semExprs(NewScope(), op.Values); err != nil {
			return nil, err
		}
		return scope, a.slots.define(scope, op.Var)
	case *dag.CalcOp:
		if err := a.semExpr(scope, op.Expr); err != nil {
			return nil, err
		}
		return scope, a.slots.define(scope, op.Var)
	case *dag.FilterOp:
		return scope, a.semExpr(scope, op.Expr)
	case *dag.SortOp:
		if len(op.Exprs) == 0 {
			return nil, qerr.Structural("SORT requires at least one expression")
		}
		for _, s := range op.Exprs {
			if err := a.semExpr(scope, s.Key); err != nil {
				return nil, err
			}
		}
		a.checkOptions("SORT", op.Options, noOptions)
		return scope, nil
	case *dag.LimitOp:
		if op.Offset < 0 || op.Count < 0 {
			return nil, qerr.Structural("LIMIT offset and count must not be negative")
		}
		a.checkOptions("LIMIT", op.Options, noOptions)
		return scope, nil
	case *dag.ReturnOp:
		return scope, a.semExpr(scope, op.Expr)
	case *dag.CollectOp:
		return a.semCollect(scope, op)
	}
	return nil, qerr.Structural("unknown operation %T", op)
}
