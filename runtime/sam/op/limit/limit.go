// Package limit implements LIMIT offset, count.  The operator moves through
// the states skipping, returning, counting (only when it maintains the full
// count) and done.  Once done it never pulls its parent again, and when it
// is done before its parent is exhausted it tells the parent so.
package limit

import (
	"math"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/sbuf"
)

type state int

const (
	skipping state = iota
	returning
	counting
	done
)

// Unbounded is the count of a LIMIT without an upper bound.
const Unbounded = math.MaxInt

// countChunk is the number of rows skipped per call while counting.
const countChunk = 1 << 16

type Op struct {
	rctx      *runtime.Context
	parent    sbuf.Puller
	offset    int
	count     int
	fullCount bool

	state    state
	skipped  int
	returned int
	// seen is the number of rows the parent produced so far.
	seen int64
	// pending holds the rows of a batch that straddled the offset.
	pending []gather.Row
}

// New returns a LIMIT operator.  If fullCount is set, the operator consumes
// its whole input and records the number of input rows in the query's
// stats when the input is exhausted.
func New(rctx *runtime.Context, parent sbuf.Puller, offset, count int, fullCount bool) *Op {
	return &Op{
		rctx:      rctx,
		parent:    parent,
		offset:    max(offset, 0),
		count:     max(count, 0),
		fullCount: fullCount,
	}
}

func (o *Op) Pull(stop bool) (sbuf.Batch, error) {
	if stop {
		return nil, o.stop()
	}
	for {
		switch o.state {
		case skipping:
			if err := o.skip(); err != nil {
				return nil, o.fail(err)
			}
		case returning:
			if o.returned >= o.count {
				if err := o.limitReached(); err != nil {
					return nil, o.fail(err)
				}
				continue
			}
			rows, err := o.next()
			if err != nil {
				return nil, o.fail(err)
			}
			if rows == nil {
				o.finish()
				return nil, nil
			}
			n := min(len(rows), o.count-o.returned)
			o.returned += n
			return sbuf.NewArray(rows[:n:n]), nil
		case counting:
			if err := o.countRest(); err != nil {
				return nil, o.fail(err)
			}
		case done:
			return nil, nil
		}
	}
}

// next returns the pending rows or the rows of the next batch, counting
// them as seen, or nil at end of input.
func (o *Op) next() ([]gather.Row, error) {
	if rows := o.pending; rows != nil {
		o.pending = nil
		return rows, nil
	}
	for {
		batch, err := o.parent.Pull(false)
		if err != nil || batch == nil {
			return nil, err
		}
		rows := batch.Rows()
		o.seen += int64(len(rows))
		if len(rows) > 0 {
			return rows, nil
		}
	}
}

// skip discards offset rows, using the parent's fast skip when it has one.
func (o *Op) skip() error {
	if skipper, ok := o.parent.(sbuf.Skipper); ok {
		for o.skipped < o.offset {
			want := o.offset - o.skipped
			n, err := skipper.Skip(want)
			if err != nil {
				return err
			}
			o.skipped += n
			o.seen += int64(n)
			if n < want {
				o.finish()
				return nil
			}
		}
		o.state = returning
		return nil
	}
	for o.skipped < o.offset {
		rows, err := o.next()
		if err != nil {
			return err
		}
		if rows == nil {
			o.finish()
			return nil
		}
		if remaining := o.offset - o.skipped; remaining < len(rows) {
			o.skipped = o.offset
			o.pending = rows[remaining:]
			break
		}
		o.skipped += len(rows)
	}
	o.state = returning
	return nil
}

// limitReached moves to counting if the full count is needed and to done
// otherwise, in which case the parent is told to stop.
func (o *Op) limitReached() error {
	if o.fullCount {
		o.state = counting
		return nil
	}
	return o.stop()
}

// countRest consumes the remaining input without producing it.
func (o *Op) countRest() error {
	o.pending = nil
	if skipper, ok := o.parent.(sbuf.Skipper); ok {
		for {
			n, err := skipper.Skip(countChunk)
			if err != nil {
				return err
			}
			o.seen += int64(n)
			if n < countChunk {
				break
			}
		}
	} else {
		for {
			rows, err := o.next()
			if err != nil {
				return err
			}
			if rows == nil {
				break
			}
		}
	}
	o.finish()
	return nil
}

// finish is reached when the input is exhausted.
func (o *Op) finish() {
	o.state = done
	o.pending = nil
	if o.fullCount {
		o.rctx.Stats.FullCount = o.seen
	}
}

func (o *Op) stop() error {
	if o.state == done {
		return nil
	}
	o.state = done
	o.pending = nil
	_, err := o.parent.Pull(true)
	return err
}

func (o *Op) fail(err error) error {
	o.state = done
	o.pending = nil
	return err
}
