package sort

import (
	"context"
	"fmt"
	"testing"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/qerr"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/runtime/sam/expr"
	"github.com/brimdata/gather/sbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs(vals ...string) []gather.Row {
	var rows []gather.Row
	for k, v := range vals {
		rows = append(rows, gather.Row{gather.MustParse(fmt.Sprintf(`{"k":%s,"i":%d}`, v, k))})
	}
	return rows
}

func key(which order.Which) []expr.SortExpr {
	return []expr.SortExpr{expr.NewSortExpr(expr.NewDotExpr(expr.NewVar(0), "k"), which)}
}

func TestSort(t *testing.T) {
	input := docs(`3`, `"a"`, `null`, `1`, `3`, `[1]`, `true`)
	out, err := sbuf.ReadAll(New(runtime.DefaultContext(), sbuf.NewSlicePuller(input, 2), key(order.Asc)))
	require.NoError(t, err)
	var got []string
	for _, row := range out {
		got = append(got, row[0].String())
	}
	assert.Equal(t, []string{
		`{"k":null,"i":2}`,
		`{"k":true,"i":6}`,
		`{"k":1,"i":3}`,
		`{"k":3,"i":0}`,
		`{"k":3,"i":4}`,
		`{"k":"a","i":1}`,
		`{"k":[1],"i":5}`,
	}, got)
}

func TestSortDescendingSkip(t *testing.T) {
	op := New(runtime.DefaultContext(), sbuf.NewSlicePuller(docs("1", "2", "3", "4"), 3), key(order.Desc))
	n, err := op.Skip(1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	out, err := sbuf.ReadAll(op)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "3", out[0][0].Attr("k").String())
}

func TestSortMemoryLimit(t *testing.T) {
	rctx := runtime.NewContext(context.Background(), runtime.Options{MemoryLimit: 256}, nil)
	input := docs("1", "2", "3", "4", "5", "6", "7", "8", "9", "10")
	_, err := sbuf.ReadAll(New(rctx, sbuf.NewSlicePuller(input, 1), key(order.Asc)))
	require.Error(t, err)
	assert.Equal(t, qerr.KindResourceLimitExceeded, qerr.KindOf(err))
	assert.Zero(t, rctx.Memory.Used())
}
