package collect

import (
	"context"
	"errors"
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

func docs(n, groups int) []gather.Row {
	rows := make([]gather.Row, n)
	for i := range rows {
		rows[i] = gather.Row{gather.MustParse(fmt.Sprintf(`{"g":%d,"v":%d}`, i%groups, i)), gather.Null, gather.Null}
	}
	return rows
}

func attr(slot int, name string) expr.Evaluator {
	return expr.NewDotExpr(expr.NewVar(slot), name)
}

func config(t *testing.T, method Method) Config {
	sum, err := expr.NewAggregator("SUM", attr(0, "v"))
	require.NoError(t, err)
	return Config{
		Method:    method,
		Keys:      []expr.Evaluator{attr(0, "g")},
		KeySlots:  []Slot{0},
		Aggs:      []*expr.Aggregator{sum},
		AggSlots:  []Slot{1},
		IntoSlot:  -1,
		CountSlot: 2,
		Width:     3,
	}
}

func run(t *testing.T, rctx *runtime.Context, rows []gather.Row, c Config) ([]gather.Row, error) {
	t.Helper()
	op, err := New(rctx, sbuf.NewSlicePuller(rows, 100), c)
	require.NoError(t, err)
	return sbuf.ReadAll(op)
}

func TestHashAndSortedAgree(t *testing.T) {
	input := docs(2000, 7)
	hashed, err := run(t, runtime.DefaultContext(), input, config(t, Hash))
	require.NoError(t, err)
	require.Len(t, hashed, 7)
	// First occurrence order.
	for i, row := range hashed {
		assert.Equal(t, float64(i), row[0].Number())
	}

	sorted := make([]gather.Row, len(input))
	copy(sorted, input)
	expr.NewComparator(expr.NewSortExpr(attr(0, "g"), order.Asc)).SortStable(sorted)
	streamed, err := run(t, runtime.DefaultContext(), sorted, config(t, Sorted))
	require.NoError(t, err)
	require.Len(t, streamed, 7)

	var total int64
	for i := range hashed {
		assert.Equal(t, hashed[i][0].String(), streamed[i][0].String())
		assert.Equal(t, hashed[i][1].String(), streamed[i][1].String())
		assert.Equal(t, hashed[i][2].String(), streamed[i][2].String())
		total += int64(streamed[i][2].Number())
	}
	assert.EqualValues(t, 2000, total)
}

func TestInto(t *testing.T) {
	c := Config{
		Method:    Hash,
		Keys:      []expr.Evaluator{attr(0, "g")},
		KeySlots:  []Slot{0},
		Into:      attr(0, "v"),
		IntoSlot:  1,
		CountSlot: -1,
		Width:     3,
	}
	out, err := run(t, runtime.DefaultContext(), docs(6, 2), c)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "[0,2,4]", out[0][1].String())
	assert.Equal(t, "[1,3,5]", out[1][1].String())
	assert.True(t, out[0][2].IsNull())
}

func TestNoKeys(t *testing.T) {
	for _, method := range []Method{Hash, Sorted} {
		t.Run(string(method), func(t *testing.T) {
			c := config(t, method)
			c.Keys, c.KeySlots = nil, nil
			out, err := run(t, runtime.DefaultContext(), docs(10, 3), c)
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, "45", out[0][1].String())
			assert.Equal(t, "10", out[0][2].String())

			out, err = run(t, runtime.DefaultContext(), nil, c)
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, "0", out[0][1].String())
			assert.Equal(t, "0", out[0][2].String())
		})
	}
}

func TestEmptyInputWithKeys(t *testing.T) {
	out, err := run(t, runtime.DefaultContext(), nil, config(t, Hash))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMemoryLimit(t *testing.T) {
	for _, method := range []Method{Hash, Sorted} {
		t.Run(string(method), func(t *testing.T) {
			rctx := runtime.NewContext(context.Background(), runtime.Options{MemoryLimit: 4096}, nil)
			c := config(t, method)
			c.Into = expr.NewVar(0)
			c.IntoSlot = 1
			c.Aggs, c.AggSlots = nil, nil
			// All rows fall into one group so only per-row charging can
			// catch the growth.
			_, err := run(t, rctx, docs(1000, 1), c)
			require.Error(t, err)
			assert.Equal(t, qerr.KindResourceLimitExceeded, qerr.KindOf(err))
			assert.Zero(t, rctx.Memory.Used())
		})
	}
}

func TestMemoryReleased(t *testing.T) {
	rctx := runtime.NewContext(context.Background(), runtime.Options{MemoryLimit: 1 << 20}, nil)
	_, err := run(t, rctx, docs(500, 50), config(t, Hash))
	require.NoError(t, err)
	assert.Zero(t, rctx.Memory.Used())
	assert.Positive(t, rctx.Memory.Peak())
}

func TestDonePropagates(t *testing.T) {
	parent := &trackingPuller{Puller: sbuf.NewSlicePuller(docs(10, 2), 2)}
	op, err := New(runtime.DefaultContext(), parent, config(t, Sorted))
	require.NoError(t, err)
	batch, err := op.Pull(true)
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.True(t, parent.done)
	batch, err = op.Pull(false)
	require.NoError(t, err)
	assert.Nil(t, batch)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("sorted")
	require.NoError(t, err)
	assert.Equal(t, Sorted, m)
	_, err = ParseMethod("auto")
	assert.Error(t, err)
}

type trackingPuller struct {
	sbuf.Puller
	done bool
}

func (t *trackingPuller) Pull(done bool) (sbuf.Batch, error) {
	if done {
		t.done = true
	}
	return t.Puller.Pull(done)
}

// teardownFails is a puller whose Pull(true) fails.
type teardownFails struct {
	sbuf.Puller
	done bool
}

func (p *teardownFails) Pull(done bool) (sbuf.Batch, error) {
	if done {
		p.done = true
		return nil, errors.New("teardown failed")
	}
	return p.Puller.Pull(false)
}

func TestTeardownErrorKept(t *testing.T) {
	rctx := runtime.NewContext(context.Background(), runtime.Options{MemoryLimit: 4096}, nil)
	c := config(t, Hash)
	c.Into = expr.NewVar(0)
	c.IntoSlot = 1
	c.Aggs, c.AggSlots = nil, nil
	parent := &teardownFails{Puller: sbuf.NewSlicePuller(docs(1000, 1), 100)}
	op, err := New(rctx, parent, c)
	require.NoError(t, err)
	_, err = sbuf.ReadAll(op)
	require.Error(t, err)
	assert.True(t, parent.done)
	assert.Equal(t, qerr.KindResourceLimitExceeded, qerr.KindOf(err))
	assert.Contains(t, fmt.Sprintf("%+v", err), "teardown failed")
	assert.Zero(t, rctx.Memory.Used())
	batch, err := op.Pull(false)
	assert.NoError(t, err)
	assert.Nil(t, batch)
}
