package exec

import (
	"time"

	"github.com/brimdata/gather/qerr"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/sbuf"
	"go.uber.org/zap"
)

// Query runs a puller graph as a sbuf.Puller.  When the graph reaches end
// of stream or fails, the query records its execution time and peak memory
// usage in its stats.  Close tears the graph down.
type Query struct {
	sbuf.Puller
	rctx  *runtime.Context
	start time.Time
	done  bool
}

func NewQuery(rctx *runtime.Context, puller sbuf.Puller) *Query {
	return &Query{
		Puller: puller,
		rctx:   rctx,
		start:  time.Now(),
	}
}

func (q *Query) Pull(done bool) (sbuf.Batch, error) {
	if q.done {
		return nil, nil
	}
	batch, err := q.Puller.Pull(done)
	if batch == nil || err != nil {
		q.finish(err)
	}
	return batch, err
}

func (q *Query) finish(err error) {
	q.done = true
	stats := &q.rctx.Stats
	stats.ExecutionTime = time.Since(q.start)
	stats.PeakMemoryUsage = q.rctx.Memory.Peak()
	q.rctx.Metrics.ObserveQuery(stats.ExecutionTime, stats.PeakMemoryUsage, err)
	if err != nil {
		q.rctx.Logger.Info("query failed",
			zap.Error(err),
			zap.Stringer("kind", qerr.KindOf(err)),
			zap.Duration("time", stats.ExecutionTime))
		return
	}
	q.rctx.Logger.Debug("query done",
		zap.Duration("time", stats.ExecutionTime),
		zap.Int64("peakMemory", stats.PeakMemoryUsage),
		zap.Int64("scannedFull", stats.ScannedFull),
		zap.Int64("scannedIndex", stats.ScannedIndex))
}

func (q *Query) Context() *runtime.Context {
	return q.rctx
}

func (q *Query) Stats() runtime.Stats {
	return q.rctx.Stats
}

func (q *Query) Warnings() qerr.Warnings {
	return q.rctx.Warnings
}

func (q *Query) Close() error {
	if !q.done {
		_, err := q.Pull(true)
		q.rctx.Cancel()
		return err
	}
	q.rctx.Cancel()
	return nil
}
