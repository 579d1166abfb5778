package limit

import (
	"testing"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/sbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(n int) []gather.Row {
	out := make([]gather.Row, n)
	for i := range out {
		out[i] = gather.Row{gather.NewInt(i)}
	}
	return out
}

// pullOnly hides the Skipper implementation of its puller.
type pullOnly struct {
	p    sbuf.Puller
	done bool
}

func (p *pullOnly) Pull(done bool) (sbuf.Batch, error) {
	if done {
		p.done = true
	}
	return p.p.Pull(done)
}

func run(t *testing.T, parent sbuf.Puller, offset, count int, fullCount bool) ([]gather.Row, *runtime.Context) {
	t.Helper()
	rctx := runtime.DefaultContext()
	out, err := sbuf.ReadAll(New(rctx, parent, offset, count, fullCount))
	require.NoError(t, err)
	return out, rctx
}

func TestLimit(t *testing.T) {
	cases := []struct {
		offset, count int
		first, n      int
	}{
		{0, 10, 0, 10},
		{5, 10, 5, 10},
		{95, 10, 95, 5},
		{150, 10, 0, 0},
		{7, 0, 0, 0},
		{3, Unbounded, 3, 97},
	}
	for _, c := range cases {
		for _, skipper := range []bool{true, false} {
			var parent sbuf.Puller = sbuf.NewSlicePuller(rows(100), 8)
			if !skipper {
				parent = &pullOnly{p: parent}
			}
			out, rctx := run(t, parent, c.offset, c.count, true)
			require.Len(t, out, c.n)
			if c.n > 0 {
				assert.Equal(t, float64(c.first), out[0][0].Number())
				assert.Equal(t, float64(c.first+c.n-1), out[c.n-1][0].Number())
			}
			assert.EqualValues(t, 100, rctx.Stats.FullCount)
		}
	}
}

func TestFullCountBeyondInput(t *testing.T) {
	for _, offset := range []int{2000, 3000} {
		out, rctx := run(t, sbuf.NewSlicePuller(rows(2000), 1000), offset, 100, true)
		assert.Empty(t, out)
		assert.EqualValues(t, 2000, rctx.Stats.FullCount)
	}
}

func TestStopsParent(t *testing.T) {
	parent := &pullOnly{p: sbuf.NewSlicePuller(rows(100), 10)}
	out, rctx := run(t, parent, 0, 15, false)
	assert.Len(t, out, 15)
	assert.True(t, parent.done)
	assert.Zero(t, rctx.Stats.FullCount)
}

func TestDoneBeforeStart(t *testing.T) {
	parent := &pullOnly{p: sbuf.NewSlicePuller(rows(10), 10)}
	op := New(runtime.DefaultContext(), parent, 0, 5, false)
	batch, err := op.Pull(true)
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.True(t, parent.done)
	batch, err = op.Pull(false)
	require.NoError(t, err)
	assert.Nil(t, batch)
}
