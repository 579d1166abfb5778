package expr

import (
	"testing"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(s string) Evaluator {
	return NewLiteral(gather.MustParse(s))
}

func TestEvaluators(t *testing.T) {
	doc := gather.MustParse(`{"a":{"b":[10,20,30]},"s":"x"}`)
	row := gather.Row{doc, gather.NewInt(2)}
	v0, v1 := NewVar(0), NewVar(1)

	assert.Equal(t, "20", NewIndexExpr(NewDotExpr(NewDotExpr(v0, "a"), "b"), lit("1")).Eval(row).String())
	assert.Equal(t, "30", NewIndexExpr(NewDotExpr(NewDotExpr(v0, "a"), "b"), lit("-1")).Eval(row).String())
	assert.Equal(t, `"x"`, NewIndexExpr(v0, lit(`"s"`)).Eval(row).String())
	assert.Equal(t, "null", NewDotExpr(v1, "a").Eval(row).String())
	assert.Equal(t, "null", NewVar(5).Eval(row).String())

	add, err := NewArithmetic(v1, lit(`"3"`), "+")
	require.NoError(t, err)
	assert.Equal(t, "5", add.Eval(row).String())
	div, err := NewArithmetic(v1, lit("0"), "/")
	require.NoError(t, err)
	assert.Equal(t, "null", div.Eval(row).String())
	mod, err := NewArithmetic(lit("7"), v1, "%")
	require.NoError(t, err)
	assert.Equal(t, "1", mod.Eval(row).String())

	lt, err := NewCompareRelative(lit("null"), lit("false"), "<")
	require.NoError(t, err)
	assert.Equal(t, "true", lt.Eval(row).String())
	_, err = NewCompareRelative(v0, v1, "=~")
	assert.Error(t, err)

	assert.Equal(t, "0", NewLogicalAnd(lit("0"), lit("1")).Eval(row).String())
	assert.Equal(t, `"y"`, NewLogicalOr(lit(`""`), lit(`"y"`)).Eval(row).String())
	assert.False(t, NewLogicalNot(lit("[]")).Eval(row).Bool())
	assert.True(t, NewLogicalNot(lit("null")).Eval(row).Bool())
}

func TestInAndConditional(t *testing.T) {
	row := gather.Row{gather.MustParse("[1,2,3]")}
	assert.True(t, NewIn(lit("2"), NewVar(0), false).Eval(row).Bool())
	assert.True(t, NewIn(lit("4"), NewVar(0), true).Eval(row).Bool())
	assert.False(t, NewIn(lit("1"), lit(`"1"`), false).Eval(row).Bool())
	assert.Equal(t, `"a"`, NewConditional(lit("true"), lit(`"a"`), lit(`"b"`)).Eval(row).String())
	assert.Equal(t, `"b"`, NewConditional(lit("0"), lit(`"a"`), lit(`"b"`)).Eval(row).String())
	assert.Equal(t, "7", NewConditional(lit("7"), nil, lit(`"b"`)).Eval(row).String())
}

func TestConstructors(t *testing.T) {
	row := gather.Row{gather.NewInt(1)}
	arr := NewArrayExpr([]Evaluator{NewVar(0), lit("null")})
	assert.Equal(t, "[1,null]", arr.Eval(row).String())
	obj := NewObjectExpr([]string{"b", "a", "b"}, []Evaluator{NewVar(0), lit("2"), lit("3")})
	assert.Equal(t, `{"b":3,"a":2}`, obj.Eval(row).String())
}

func TestComparator(t *testing.T) {
	rows := []gather.Row{
		{gather.MustParse(`{"k":2,"v":"a"}`)},
		{gather.MustParse(`{"k":null,"v":"b"}`)},
		{gather.MustParse(`{"k":2,"v":"c"}`)},
		{gather.MustParse(`{"v":"d"}`)},
		{gather.MustParse(`{"k":"1","v":"e"}`)},
	}
	cmp := NewComparator(NewSortExpr(NewDotExpr(NewVar(0), "k"), order.Asc))
	cmp.SortStable(rows)
	var vs []string
	for _, r := range rows {
		vs = append(vs, r[0].Attr("v").Str())
	}
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, vs)

	desc := NewComparator(NewSortExpr(NewDotExpr(NewVar(0), "k"), order.Desc))
	assert.Equal(t, -1, desc.Compare(rows[4], rows[0]))
	assert.Equal(t, 1, desc.Compare(rows[0], rows[2]))
	assert.Equal(t, 0, desc.Compare(rows[0], rows[1]))
}

func TestAggregator(t *testing.T) {
	a, err := NewAggregator("max", NewDotExpr(NewVar(0), "n"))
	require.NoError(t, err)
	f := a.NewFunction()
	for _, s := range []string{`{"n":1}`, `{"n":5}`, `{}`} {
		a.Apply(f, gather.Row{gather.MustParse(s)})
	}
	assert.Equal(t, "5", f.Result().String())
	_, err = NewAggregator("IS_NUMBER", nil)
	assert.Error(t, err)
}
