// Package scan implements the row sources of a query: full collection
// scans, sorted index scans and scans over literal values.  Every scan
// supports fast skip.
package scan

import (
	"fmt"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/sbuf"
	"github.com/brimdata/gather/storage"
)

// DefaultBatchSize is the number of rows per batch when the query options
// do not say otherwise.
var DefaultBatchSize = 1000

type iterator interface {
	Next() (gather.Value, bool)
	Skip(int) int
}

type Kind string

const (
	Full   Kind = "full"
	Index  Kind = "index"
	Values Kind = "values"
)

// Op binds each document it produces to the variable in slot of rows of
// width slots.  The rows of the most recent batch are charged to the
// query's memory account until the next pull.
type Op struct {
	rctx  *runtime.Context
	kind  Kind
	it    iterator
	slot  int
	width int
	acct  *runtime.Account
	done  bool
}

var _ sbuf.Skipper = (*Op)(nil)

func NewCollectionScan(rctx *runtime.Context, coll *storage.Collection, slot, width int) *Op {
	return newOp(rctx, Full, coll.Scan(), slot, width)
}

func NewIndexScan(rctx *runtime.Context, coll *storage.Collection, index string, reverse bool, slot, width int) (*Op, error) {
	idx, ok := coll.Index(index)
	if !ok {
		return nil, fmt.Errorf("collection %s has no index %q", coll.Name(), index)
	}
	it, err := idx.Iterator(coll, reverse)
	if err != nil {
		return nil, err
	}
	return newOp(rctx, Index, it, slot, width), nil
}

func NewValuesScan(rctx *runtime.Context, vals []gather.Value, slot, width int) *Op {
	return newOp(rctx, Values, &valuesIterator{vals: vals}, slot, width)
}

func newOp(rctx *runtime.Context, kind Kind, it iterator, slot, width int) *Op {
	return &Op{
		rctx:  rctx,
		kind:  kind,
		it:    it,
		slot:  slot,
		width: width,
		acct:  rctx.Memory.NewAccount(fmt.Sprintf("scan (%s)", kind)),
	}
}

func (o *Op) Pull(done bool) (sbuf.Batch, error) {
	o.acct.Clear()
	if done || o.done {
		o.done = true
		return nil, nil
	}
	if err := o.rctx.Err(); err != nil {
		o.done = true
		return nil, err
	}
	batchSize := o.rctx.Options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var rows []gather.Row
	var size int
	for len(rows) < batchSize {
		doc, ok := o.it.Next()
		if !ok {
			o.done = true
			break
		}
		row := make(gather.Row, o.width)
		row[o.slot] = doc
		rows = append(rows, row)
		size += doc.Size()
	}
	o.count(len(rows))
	if len(rows) == 0 {
		return nil, nil
	}
	if err := o.acct.Grow(size + len(rows)*o.width*16); err != nil {
		o.rctx.Metrics.MemoryLimitExceeded()
		o.done = true
		return nil, err
	}
	return sbuf.NewArray(rows), nil
}

// Skip advances past up to n documents without materializing rows.
// Skipped documents count as scanned.
func (o *Op) Skip(n int) (int, error) {
	if o.done {
		return 0, nil
	}
	if err := o.rctx.Err(); err != nil {
		return 0, err
	}
	skipped := o.it.Skip(n)
	if skipped < n {
		o.done = true
	}
	o.count(skipped)
	return skipped, nil
}

func (o *Op) count(n int) {
	switch o.kind {
	case Full:
		o.rctx.Stats.ScannedFull += int64(n)
	case Index:
		o.rctx.Stats.ScannedIndex += int64(n)
	}
	o.rctx.Metrics.ObserveScan(string(o.kind), n)
}

type valuesIterator struct {
	vals []gather.Value
}

func (v *valuesIterator) Next() (gather.Value, bool) {
	if len(v.vals) == 0 {
		return gather.Null, false
	}
	val := v.vals[0]
	v.vals = v.vals[1:]
	return val, true
}

func (v *valuesIterator) Skip(n int) int {
	n = min(n, len(v.vals))
	v.vals = v.vals[n:]
	return n
}
