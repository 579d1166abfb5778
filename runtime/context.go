package runtime

import (
	"context"

	"github.com/brimdata/gather/metrics"
	"github.com/brimdata/gather/qerr"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// Context provides the state shared by all operators of one query: the
// cancelable context, the memory monitor enforcing the query's memory
// ceiling, execution stats and warnings.  A Context belongs to exactly one
// query and is not shared across queries.
type Context struct {
	context.Context
	ID       ksuid.KSUID
	Logger   *zap.Logger
	Options  Options
	Memory   *Monitor
	Metrics  *metrics.Metrics
	Stats    Stats
	Warnings qerr.Warnings
	cancel   context.CancelFunc
}

func NewContext(ctx context.Context, opts Options, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	id := ksuid.New()
	logger = logger.With(zap.Stringer("query", id))
	return &Context{
		Context: ctx,
		ID:      id,
		Logger:  logger,
		Options: opts,
		Memory:  NewMonitor(opts.MemoryLimit.Int64()),
		cancel:  cancel,
	}
}

func DefaultContext() *Context {
	return NewContext(context.Background(), Options{}, nil)
}

// Cancel cancels the context.  Operators observe cancellation at their next
// Pull.
func (c *Context) Cancel() {
	c.cancel()
}
