// Package sort implements SORT.  The operator buffers its whole input,
// charging every row to the query's memory account, and then produces the
// rows in order.
package sort

import (
	"github.com/brimdata/gather"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/runtime/sam/expr"
	"github.com/brimdata/gather/sbuf"
	"go.uber.org/zap"
)

type Op struct {
	rctx       *runtime.Context
	parent     sbuf.Puller
	comparator *expr.Comparator
	acct       *runtime.Account

	sorted bool
	rows   []gather.Row
	done   bool
}

var _ sbuf.Skipper = (*Op)(nil)

func New(rctx *runtime.Context, parent sbuf.Puller, exprs []expr.SortExpr) *Op {
	return &Op{
		rctx:       rctx,
		parent:     parent,
		comparator: expr.NewComparator(exprs...),
		acct:       rctx.Memory.NewAccount("SORT"),
	}
}

func (o *Op) Pull(done bool) (sbuf.Batch, error) {
	if o.done {
		return nil, nil
	}
	if done {
		return nil, o.stop()
	}
	if !o.sorted {
		if err := o.sort(); err != nil {
			return nil, err
		}
	}
	if len(o.rows) == 0 {
		o.release()
		return nil, nil
	}
	n := min(len(o.rows), o.batchSize())
	out := o.rows[:n:n]
	o.rows = o.rows[n:]
	return sbuf.NewArray(out), nil
}

// Skip discards up to n rows of the sorted output.
func (o *Op) Skip(n int) (int, error) {
	if o.done {
		return 0, nil
	}
	if !o.sorted {
		if err := o.sort(); err != nil {
			return 0, err
		}
	}
	n = min(n, len(o.rows))
	o.rows = o.rows[n:]
	return n, nil
}

func (o *Op) sort() error {
	var nbytes int
	for {
		batch, err := o.parent.Pull(false)
		if err != nil {
			o.release()
			return err
		}
		if batch == nil {
			break
		}
		rows := batch.Rows()
		var delta int
		for _, row := range rows {
			delta += row.Size()
		}
		if err := o.acct.Grow(delta); err != nil {
			o.rctx.Metrics.MemoryLimitExceeded()
			o.rctx.Logger.Warn("sort exceeded memory limit", zap.Int("rows", len(o.rows)), zap.Int("bytes", nbytes))
			o.parent.Pull(true)
			o.release()
			return err
		}
		nbytes += delta
		o.rows = append(o.rows, rows...)
	}
	o.comparator.SortStable(o.rows)
	o.sorted = true
	return nil
}

func (o *Op) batchSize() int {
	if n := o.rctx.Options.BatchSize; n > 0 {
		return n
	}
	return 1000
}

func (o *Op) stop() error {
	sorted := o.sorted
	o.release()
	if !sorted {
		_, err := o.parent.Pull(true)
		return err
	}
	return nil
}

func (o *Op) release() {
	o.done = true
	o.rows = nil
	o.acct.Clear()
}
