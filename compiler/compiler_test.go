package compiler_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/compiler"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/qerr"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/runtime/exec"
	"github.com/brimdata/gather/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(v, attr string) dag.Expr {
	return dag.NewDot(dag.NewVar(v), attr)
}

func lit(s string) dag.Expr {
	return dag.NewLiteral(gather.MustParse(s))
}

func field(name string, e dag.Expr) dag.Field {
	return dag.Field{Name: name, Value: e}
}

// environment returns a collection "docs" of 2000 documents
// {"value": i, "group": i % 10}, with a skiplist index on group if indexed.
func environment(t *testing.T, indexed bool) *exec.Environment {
	t.Helper()
	cat := storage.NewCatalog()
	coll := cat.Create("docs")
	for i := range 2000 {
		require.NoError(t, coll.Insert(gather.MustParse(fmt.Sprintf(`{"value":%d,"group":%d}`, i, i%10))))
	}
	if indexed {
		_, err := coll.EnsureIndex(storage.IndexDef{Name: "group", Type: storage.Skiplist, Fields: []string{"group"}})
		require.NoError(t, err)
	}
	return exec.NewEnvironment(cat, nil, nil)
}

func newContext(opts runtime.Options) *runtime.Context {
	return runtime.NewContext(context.Background(), opts, nil)
}

// aggregates is FOR i IN docs COLLECT g = i.group AGGREGATE ... OPTIONS opts
// [tail] RETURN {g, min, max, sum, avg, n}.
func aggregates(opts string, tail ...dag.Op) *dag.Main {
	collect := dag.NewCollectOp(dag.NewAssignment("g", dot("i", "group")))
	collect.Aggs = []dag.Assignment{
		dag.NewAssignment("min", dag.NewCall("MIN", dot("i", "value"))),
		dag.NewAssignment("max", dag.NewCall("MAX", dot("i", "value"))),
		dag.NewAssignment("sum", dag.NewCall("SUM", dot("i", "value"))),
		dag.NewAssignment("avg", dag.NewCall("AVERAGE", dot("i", "value"))),
		dag.NewAssignment("n", dag.NewCall("COUNT", lit("1"))),
	}
	if opts != "" {
		collect.Options = gather.MustParse(opts)
	}
	body := dag.Seq{dag.NewCollectionScan("docs", "i"), collect}
	body = append(body, tail...)
	body = append(body, dag.NewReturnOp(dag.NewObjectExpr(
		field("g", dag.NewVar("g")),
		field("min", dag.NewVar("min")),
		field("max", dag.NewVar("max")),
		field("sum", dag.NewVar("sum")),
		field("avg", dag.NewVar("avg")),
		field("n", dag.NewVar("n")),
	)))
	return &dag.Main{Body: body}
}

func checkGroups(t *testing.T, vals []gather.Value) {
	t.Helper()
	require.Len(t, vals, 10)
	for k, v := range vals {
		i := v.Attr("g").Number()
		assert.Equal(t, float64(k), i)
		assert.Equal(t, i, v.Attr("min").Number())
		assert.Equal(t, 1990+i, v.Attr("max").Number())
		assert.Equal(t, 199000+i*200, v.Attr("sum").Number())
		assert.Equal(t, 995+i, v.Attr("avg").Number())
		assert.Equal(t, 200.0, v.Attr("n").Number())
	}
}

func TestGrouping(t *testing.T) {
	for _, indexed := range []bool{false, true} {
		for _, opts := range []string{"", `{"method":"hash"}`, `{"method":"sorted"}`, `{"method":"hash","forceMethod":true}`} {
			t.Run(fmt.Sprintf("indexed=%t/%s", indexed, opts), func(t *testing.T) {
				rctx := newContext(runtime.Options{BatchSize: 64})
				vals, err := compiler.RunAll(rctx, environment(t, indexed), aggregates(opts))
				require.NoError(t, err)
				checkGroups(t, vals)
				assert.Equal(t, int64(2000), rctx.Stats.ScannedFull+rctx.Stats.ScannedIndex)
				assert.Zero(t, rctx.Memory.Used())
			})
		}
	}
}

func TestGroupingWithSortNull(t *testing.T) {
	rctx := newContext(runtime.Options{})
	main := aggregates(`{"method":"hash"}`, dag.NewSortOp(dag.NewSortExpr(lit("null"), order.Asc)))
	vals, err := compiler.RunAll(rctx, environment(t, false), main)
	require.NoError(t, err)
	// Groups are produced in order of first occurrence, which is key order
	// for this input.
	checkGroups(t, vals)
}

func TestSortDescending(t *testing.T) {
	for _, indexed := range []bool{false, true} {
		main := aggregates("", dag.NewSortOp(dag.NewSortExpr(dag.NewVar("g"), order.Desc)))
		vals, err := compiler.RunAll(newContext(runtime.Options{}), environment(t, indexed), main)
		require.NoError(t, err)
		require.Len(t, vals, 10)
		for k, v := range vals {
			assert.Equal(t, float64(9-k), v.Attr("g").Number())
		}
	}
}

func TestExplainSortNodes(t *testing.T) {
	cases := []struct {
		indexed    bool
		opts       string
		method     string
		sorts      int
		overridden bool
	}{
		{false, "", "hash", 1, false},
		{false, `{"method":"sorted"}`, "sorted", 1, false},
		{true, "", "sorted", 0, false},
		{true, `{"method":"hash"}`, "sorted", 0, true},
		{true, `{"method":"hash","forceMethod":true}`, "hash", 1, false},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("indexed=%t/%s", c.indexed, c.opts), func(t *testing.T) {
			e, err := compiler.Explain(newContext(runtime.Options{}), environment(t, c.indexed), aggregates(c.opts))
			require.NoError(t, err)
			collect := e.Plan.Find("CollectNode")
			require.Len(t, collect, 1)
			assert.Equal(t, c.method, collect[0].CollectOptions.Method)
			assert.Equal(t, c.overridden, collect[0].MethodOverridden)
			assert.Equal(t, c.sorts, e.Plan.Count("SortNode"))
			assert.Empty(t, e.Warnings)
		})
	}
}

func limited(offset, count int) *dag.Main {
	return &dag.Main{Body: dag.Seq{
		dag.NewCollectionScan("docs", "i"),
		dag.NewLimitOp(offset, count),
		dag.NewReturnOp(dot("i", "value")),
	}}
}

func TestFullCount(t *testing.T) {
	env := environment(t, false)
	cases := []struct {
		offset, count int
		returned      int
	}{
		{0, 10, 10},
		{1995, 100, 5},
		{2000, 100, 0},
		{3000, 100, 0},
	}
	for _, c := range cases {
		rctx := newContext(runtime.Options{FullCount: true})
		vals, err := compiler.RunAll(rctx, env, limited(c.offset, c.count))
		require.NoError(t, err)
		assert.Len(t, vals, c.returned)
		assert.Equal(t, int64(2000), rctx.Stats.FullCount)
		if c.returned > 0 {
			assert.Equal(t, float64(c.offset), vals[0].Number())
		}
	}
}

func TestLimitStopsScan(t *testing.T) {
	rctx := newContext(runtime.Options{BatchSize: 10})
	vals, err := compiler.RunAll(rctx, environment(t, false), limited(100, 5))
	require.NoError(t, err)
	assert.Len(t, vals, 5)
	assert.Zero(t, rctx.Stats.FullCount)
	assert.Less(t, rctx.Stats.ScannedFull, int64(2000))
}

func TestInvalidAggregate(t *testing.T) {
	collect := dag.NewCollectOp()
	collect.Aggs = []dag.Assignment{dag.NewAssignment("c", dot("i", "value"))}
	main := &dag.Main{Body: dag.Seq{
		dag.NewCollectionScan("docs", "i"),
		collect,
		dag.NewReturnOp(dag.NewVar("c")),
	}}
	_, err := compiler.RunAll(newContext(runtime.Options{}), environment(t, false), main)
	require.Error(t, err)
	assert.Equal(t, qerr.KindInvalidAggregateExpression, qerr.KindOf(err))
	assert.Equal(t, 1574, qerr.KindOf(err).Code())
}

func TestUnknownCollection(t *testing.T) {
	_, err := compiler.RunAll(newContext(runtime.Options{}), environment(t, false), &dag.Main{Body: dag.Seq{
		dag.NewCollectionScan("nope", "i"),
		dag.NewReturnOp(dag.NewVar("i")),
	}})
	assert.Error(t, err)
}

// into is FOR i IN docs COLLECT g = i.group INTO docs OPTIONS opts
// RETURN {g, n: LENGTH(docs)}.
func into(opts string) *dag.Main {
	collect := dag.NewCollectOp(dag.NewAssignment("g", dot("i", "group")))
	collect.Into = &dag.Into{Var: dag.NewVar("members")}
	if opts != "" {
		collect.Options = gather.MustParse(opts)
	}
	return &dag.Main{Body: dag.Seq{
		dag.NewCollectionScan("docs", "i"),
		collect,
		dag.NewReturnOp(dag.NewObjectExpr(
			field("g", dag.NewVar("g")),
			field("n", dag.NewCall("LENGTH", dag.NewVar("members"))),
		)),
	}}
}

func TestInto(t *testing.T) {
	vals, err := compiler.RunAll(newContext(runtime.Options{}), environment(t, true), into(""))
	require.NoError(t, err)
	require.Len(t, vals, 10)
	for _, v := range vals {
		assert.Equal(t, 200.0, v.Attr("n").Number())
	}
}

func TestMemoryLimit(t *testing.T) {
	sorted := &dag.Main{Body: dag.Seq{
		dag.NewCollectionScan("docs", "i"),
		dag.NewSortOp(dag.NewSortExpr(dot("i", "value"), order.Desc)),
		dag.NewReturnOp(dag.NewVar("i")),
	}}
	cases := []struct {
		name    string
		indexed bool
		main    *dag.Main
	}{
		{"hash", false, into(`{"method":"hash"}`)},
		{"sorted", true, into("")},
		{"sort", false, sorted},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := environment(t, c.indexed)
			rctx := newContext(runtime.Options{MemoryLimit: 8 << 10})
			_, err := compiler.RunAll(rctx, env, c.main)
			require.Error(t, err)
			assert.Equal(t, qerr.KindResourceLimitExceeded, qerr.KindOf(err))
			assert.Equal(t, 32, qerr.KindOf(err).Code())
			assert.Zero(t, rctx.Memory.Used())

			rctx = newContext(runtime.Options{})
			_, err = compiler.RunAll(rctx, env, c.main)
			require.NoError(t, err)
			assert.Greater(t, rctx.Stats.PeakMemoryUsage, int64(8<<10))
		})
	}
}

func TestOptionsWarnings(t *testing.T) {
	rctx := newContext(runtime.Options{Optimizer: runtime.OptimizerOptions{Rules: []string{"-bogus"}}})
	e, err := compiler.Explain(rctx, environment(t, false), aggregates(`{"method":"fast","color":1}`))
	require.NoError(t, err)
	assert.Len(t, e.Warnings, 3)
	for _, w := range e.Warnings {
		assert.Equal(t, 1575, w.Code)
	}
	assert.Equal(t, "hash", e.Plan.Find("CollectNode")[0].CollectOptions.Method)
}

func TestBadOptions(t *testing.T) {
	rctx := newContext(runtime.Options{MemoryLimit: -1})
	_, err := compiler.Run(rctx, environment(t, false), limited(0, 1))
	require.Error(t, err)
	assert.Equal(t, qerr.KindBadParameter, qerr.KindOf(err))
}

func TestValuesAndCalc(t *testing.T) {
	main := &dag.Main{Body: dag.Seq{
		dag.NewValuesScan("x", lit("3"), lit("1"), lit(`"a"`), lit("2")),
		dag.NewFilterOp(dag.NewCall("IS_NUMBER", dag.NewVar("x"))),
		dag.NewCalcOp("y", dag.NewBinaryExpr("*", dag.NewVar("x"), lit("10"))),
		dag.NewSortOp(dag.NewSortExpr(dag.NewVar("y"), order.Asc)),
		dag.NewReturnOp(dag.NewArrayExpr(dag.NewVar("x"), dag.NewVar("y"))),
	}}
	rctx := newContext(runtime.Options{})
	vals, err := compiler.RunAll(rctx, environment(t, false), main)
	require.NoError(t, err)
	var out []string
	for _, v := range vals {
		out = append(out, v.String())
	}
	assert.Equal(t, []string{"[1,10]", "[2,20]", "[3,30]"}, out)
	assert.Equal(t, int64(1), rctx.Stats.Filtered)
}

func TestCountWithoutGroups(t *testing.T) {
	for _, rows := range []int{0, 2000} {
		collect := dag.NewCollectOp()
		collect.CountInto = dag.NewVar("n")
		main := &dag.Main{Body: dag.Seq{
			dag.NewCollectionScan("docs", "i"),
			dag.NewLimitOp(0, rows),
			collect,
			dag.NewReturnOp(dag.NewVar("n")),
		}}
		vals, err := compiler.RunAll(newContext(runtime.Options{}), environment(t, false), main)
		require.NoError(t, err)
		require.Len(t, vals, 1)
		assert.Equal(t, float64(rows), vals[0].Number())
	}
}

func TestRunTwiceSameOrder(t *testing.T) {
	env := environment(t, false)
	main := aggregates(`{"method":"hash"}`, dag.NewSortOp(dag.NewSortExpr(lit("null"), order.Asc)))
	first, err := compiler.RunAll(newContext(runtime.Options{}), env, main)
	require.NoError(t, err)
	second, err := compiler.RunAll(newContext(runtime.Options{}), env, main)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for k := range first {
		assert.Zero(t, gather.Compare(first[k], second[k]), "group %d", k)
	}
}

func TestLimitEvaluatesSkippedFailingCalc(t *testing.T) {
	fail := &dag.CondExpr{
		Kind: "CondExpr",
		Cond: dag.NewBinaryExpr("==", dag.NewVar("x"), lit("1")),
		Then: dag.NewCall("FAIL", lit(`"boom"`)),
		Else: dag.NewVar("x"),
	}
	main := &dag.Main{Body: dag.Seq{
		dag.NewValuesScan("x", lit("1"), lit("2")),
		dag.NewCalcOp("y", fail),
		dag.NewLimitOp(1, 1),
		dag.NewReturnOp(dag.NewVar("y")),
	}}
	_, err := compiler.RunAll(newContext(runtime.Options{}), environment(t, false), main)
	assert.ErrorContains(t, err, "boom")

	main.Body[1] = dag.NewCalcOp("y", dag.NewVar("x"))
	vals, err := compiler.RunAll(newContext(runtime.Options{}), environment(t, false), main)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, float64(2), vals[0].Number())
}
