package semantic_test

import (
	"testing"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/compiler/semantic"
	"github.com/brimdata/gather/compiler/sfmt"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/qerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(v, attr string) dag.Expr {
	return dag.NewDot(dag.NewVar(v), attr)
}

func lit(s string) dag.Expr {
	return dag.NewLiteral(gather.MustParse(s))
}

func analyze(t *testing.T, ops ...dag.Op) (*dag.Main, qerr.Warnings, error) {
	t.Helper()
	var warnings qerr.Warnings
	main, err := semantic.Analyze(&dag.Main{Body: ops}, &warnings)
	return main, warnings, err
}

func TestSlots(t *testing.T) {
	collect := dag.NewCollectOp(dag.NewAssignment("g", dot("i", "group")))
	collect.Aggs = []dag.Assignment{dag.NewAssignment("n", dag.NewCall("count", lit("1")))}
	input := []dag.Op{
		dag.NewCollectionScan("docs", "i"),
		dag.NewCalcOp("x", dot("i", "value")),
		collect,
		dag.NewReturnOp(dag.NewBinaryExpr("+", dag.NewVar("g"), dag.NewVar("n"))),
	}
	main, warnings, err := analyze(t, input...)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	c := main.Body[2].(*dag.CollectOp)
	assert.Equal(t, 0, main.Body[0].(*dag.CollectionScan).Var.Slot)
	assert.Equal(t, 1, main.Body[1].(*dag.CalcOp).Var.Slot)
	assert.Equal(t, 2, c.Groups[0].LHS.Slot)
	assert.Equal(t, 3, c.Aggs[0].LHS.Slot)
	assert.Equal(t, "LENGTH", c.Aggs[0].RHS.(*dag.CallExpr).Name)
	ret := main.Body[3].(*dag.ReturnOp).Expr.(*dag.BinaryExpr)
	assert.Equal(t, 2, ret.LHS.(*dag.VarExpr).Slot)
	assert.Equal(t, 3, ret.RHS.(*dag.VarExpr).Slot)
	// The input plan is not modified.
	assert.Equal(t, -1, collect.Groups[0].LHS.Slot)
}

func TestInvalidAggregates(t *testing.T) {
	for _, rhs := range []dag.Expr{
		lit("1"),
		dot("i", "test"),
		dag.NewBinaryExpr("+", dag.NewCall("LENGTH", dag.NewVar("i")), lit("1")),
		dag.NewCall("IS_NUMBER", dag.NewVar("i")),
		dag.NewCall("SUM", dag.NewVar("i"), lit("2")),
		dag.NewVar("i"),
	} {
		t.Run(sfmt.DAGExpr(rhs), func(t *testing.T) {
			collect := dag.NewCollectOp()
			collect.Aggs = []dag.Assignment{
				dag.NewAssignment("valid", dag.NewCall("MAX", dot("i", "value"))),
				dag.NewAssignment("c", rhs),
			}
			_, _, err := analyze(t,
				dag.NewCollectionScan("docs", "i"),
				collect,
				dag.NewReturnOp(dag.NewVar("c")),
			)
			require.Error(t, err)
			assert.Equal(t, qerr.KindInvalidAggregateExpression, qerr.KindOf(err))
		})
	}
}

func TestUnknownVariables(t *testing.T) {
	ownGroup := dag.NewCollectOp(
		dag.NewAssignment("a", dot("i", "a")),
		dag.NewAssignment("b", dag.NewVar("a")),
	)
	groupInAggregate := dag.NewCollectOp(dag.NewAssignment("g", dot("i", "g")))
	groupInAggregate.Aggs = []dag.Assignment{dag.NewAssignment("m", dag.NewCall("MAX", dag.NewVar("g")))}
	ownAggregate := dag.NewCollectOp()
	ownAggregate.Aggs = []dag.Assignment{dag.NewAssignment("m", dag.NewCall("MAX", dag.NewVar("m")))}
	later := dag.NewCollectOp(dag.NewAssignment("g", dag.NewVar("later")))
	keep := dag.NewCollectOp(dag.NewAssignment("g", dot("i", "g")))
	keep.Into = &dag.Into{Var: dag.NewVar("rows")}
	keep.Keep = []*dag.VarExpr{dag.NewVar("nope")}
	for name, collect := range map[string]*dag.CollectOp{
		"own group":        ownGroup,
		"group aggregate":  groupInAggregate,
		"own aggregate":    ownAggregate,
		"later variable":   later,
		"unknown KEEP var": keep,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := analyze(t,
				dag.NewCollectionScan("docs", "i"),
				collect,
				dag.NewCalcOp("later", lit("1")),
				dag.NewReturnOp(lit("1")),
			)
			require.Error(t, err)
			assert.Equal(t, qerr.KindUnknownVariable, qerr.KindOf(err))
		})
	}
}

func TestScopeAfterCollect(t *testing.T) {
	_, _, err := analyze(t,
		dag.NewCollectionScan("docs", "i"),
		dag.NewCollectOp(dag.NewAssignment("g", dot("i", "g"))),
		dag.NewReturnOp(dag.NewVar("i")),
	)
	require.Error(t, err)
	assert.EqualError(t, err, "unknown variable 'i'")
}

func TestStructuralErrors(t *testing.T) {
	countWithAgg := dag.NewCollectOp()
	countWithAgg.CountInto = dag.NewVar("n")
	countWithAgg.Aggs = []dag.Assignment{dag.NewAssignment("m", dag.NewCall("MAX", dag.NewVar("i")))}
	countWithInto := dag.NewCollectOp()
	countWithInto.CountInto = dag.NewVar("n")
	countWithInto.Into = &dag.Into{Var: dag.NewVar("rows")}
	keepWithoutInto := dag.NewCollectOp(dag.NewAssignment("g", dag.NewVar("i")))
	keepWithoutInto.Keep = []*dag.VarExpr{dag.NewVar("i")}
	keepWithExpr := dag.NewCollectOp()
	keepWithExpr.Into = &dag.Into{Var: dag.NewVar("rows"), Expr: dag.NewVar("i")}
	keepWithExpr.Keep = []*dag.VarExpr{dag.NewVar("i")}
	duplicate := dag.NewCollectOp(dag.NewAssignment("g", dag.NewVar("i")))
	duplicate.Aggs = []dag.Assignment{dag.NewAssignment("g", dag.NewCall("MAX", dag.NewVar("i")))}
	shadow := dag.NewCollectOp(dag.NewAssignment("i", dot("i", "g")))
	for name, collect := range map[string]*dag.CollectOp{
		"empty":             dag.NewCollectOp(),
		"count with agg":    countWithAgg,
		"count with into":   countWithInto,
		"keep without into": keepWithoutInto,
		"keep with expr":    keepWithExpr,
		"duplicate var":     duplicate,
		"shadowed var":      shadow,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := analyze(t,
				dag.NewCollectionScan("docs", "i"),
				collect,
				dag.NewReturnOp(lit("1")),
			)
			require.Error(t, err)
			assert.Equal(t, qerr.KindParseOrStructural, qerr.KindOf(err))
		})
	}
}

func TestPlanShape(t *testing.T) {
	for name, ops := range map[string][]dag.Op{
		"no source":    {dag.NewReturnOp(lit("1"))},
		"no return":    {dag.NewCollectionScan("docs", "i")},
		"nested FOR":   {dag.NewCollectionScan("docs", "i"), dag.NewCollectionScan("docs", "j"), dag.NewReturnOp(lit("1"))},
		"early return": {dag.NewCollectionScan("docs", "i"), dag.NewReturnOp(lit("1")), dag.NewReturnOp(lit("1"))},
		"bad limit":    {dag.NewCollectionScan("docs", "i"), dag.NewLimitOp(-1, 1), dag.NewReturnOp(lit("1"))},
		"bad function": {dag.NewCollectionScan("docs", "i"), dag.NewReturnOp(dag.NewCall("NOPE"))},
		"bad operator": {dag.NewCollectionScan("docs", "i"), dag.NewReturnOp(dag.NewBinaryExpr("=~", lit("1"), lit("2")))},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := analyze(t, ops...)
			require.Error(t, err)
			assert.Equal(t, qerr.KindParseOrStructural, qerr.KindOf(err))
		})
	}
}

func TestOptionsWarnings(t *testing.T) {
	collect := dag.NewCollectOp(dag.NewAssignment("g", dot("i", "g")))
	collect.Options = gather.MustParse(`{"method":"foo","forceMethod":"yes","tititi":1}`)
	sort := dag.NewSortOp(dag.NewSortExpr(dag.NewVar("g"), order.Asc))
	sort.Options = gather.MustParse(`{"method":"hash"}`)
	scan := dag.NewCollectionScan("docs", "i")
	scan.Options = gather.MustParse(`{"indexHint":["a","b"],"disableIndex":false}`)
	limit := dag.NewLimitOp(0, 1)
	limit.Options = gather.MustParse(`5`)
	_, warnings, err := analyze(t, scan, collect, sort, limit, dag.NewReturnOp(dag.NewVar("g")))
	require.NoError(t, err)
	require.Len(t, warnings, 5)
	for _, w := range warnings {
		assert.Equal(t, 1575, w.Code)
	}
	assert.Equal(t, []string{
		"invalid value for COLLECT OPTIONS attribute 'method': \"foo\"",
		"invalid value for COLLECT OPTIONS attribute 'forceMethod': \"yes\"",
		"invalid OPTIONS attribute found for COLLECT: tititi",
		"invalid OPTIONS attribute found for SORT: method",
		"LIMIT OPTIONS must be an object, got number",
	}, warnings.Messages())
}

func TestDefaultInto(t *testing.T) {
	into := dag.NewCollectOp(dag.NewAssignment("g", dot("i", "g")))
	into.Into = &dag.Into{Var: dag.NewVar("rows")}
	keep := dag.NewCollectOp(dag.NewAssignment("h", dag.NewVar("g")))
	keep.Into = &dag.Into{Var: dag.NewVar("kept")}
	keep.Keep = []*dag.VarExpr{dag.NewVar("rows")}
	main, _, err := analyze(t,
		dag.NewCollectionScan("docs", "i"),
		dag.NewCalcOp("x", dot("i", "x")),
		into,
		keep,
		dag.NewReturnOp(dag.NewVar("kept")),
	)
	require.NoError(t, err)
	c := main.Body[2].(*dag.CollectOp)
	assert.Equal(t, "{i: i, x: x}", sfmt.DAGExpr(c.Into.Expr))
	obj := c.Into.Expr.(*dag.ObjectExpr)
	assert.Equal(t, 1, obj.Fields[1].Value.(*dag.VarExpr).Slot)
	k := main.Body[3].(*dag.CollectOp)
	assert.Equal(t, "{rows: rows}", sfmt.DAGExpr(k.Into.Expr))
	assert.Nil(t, k.Keep)
}
