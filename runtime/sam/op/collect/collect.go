// Package collect implements the COLLECT operator: it groups its input by
// the values of the group key expressions and produces one row per group
// holding the group key, the results of the aggregate functions, the rows
// retained for INTO and the group's row count.
package collect

import (
	"fmt"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/runtime/sam/expr"
	"github.com/brimdata/gather/sbuf"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Method string

const (
	Hash   Method = "hash"
	Sorted Method = "sorted"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case Hash, Sorted:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown collect method %q", s)
}

// Slot is a slot of the output row.  A negative slot is not produced.
type Slot = int

// Config describes a collect operator.  Keys and KeySlots are parallel, as
// are Aggs and AggSlots.
type Config struct {
	Method   Method
	Keys     []expr.Evaluator
	KeySlots []Slot
	Aggs     []*expr.Aggregator
	AggSlots []Slot
	// Into, if not nil, is evaluated for each row of a group and the
	// results are produced as an array in IntoSlot.
	Into     expr.Evaluator
	IntoSlot Slot
	// CountSlot, if not negative, receives the number of rows of a group.
	CountSlot Slot
	// Width is the number of slots of the output rows.
	Width int
}

type Op struct {
	rctx   *runtime.Context
	parent sbuf.Puller
	config Config

	strategy strategy
	acct     *runtime.Account
	ngroups  int
	eos      bool
	done     bool
}

func New(rctx *runtime.Context, parent sbuf.Puller, config Config) (*Op, error) {
	if len(config.Keys) != len(config.KeySlots) || len(config.Aggs) != len(config.AggSlots) {
		return nil, fmt.Errorf("collect: mismatched slot assignments")
	}
	var s strategy
	switch config.Method {
	case Hash:
		s = newHashStrategy()
	case Sorted:
		s = newSortedStrategy()
	default:
		return nil, fmt.Errorf("collect: unknown method %q", config.Method)
	}
	return &Op{
		rctx:     rctx,
		parent:   parent,
		config:   config,
		strategy: s,
		acct:     rctx.Memory.NewAccount(fmt.Sprintf("COLLECT (%s)", config.Method)),
	}, nil
}

func (o *Op) Pull(done bool) (sbuf.Batch, error) {
	if o.done {
		return nil, nil
	}
	if done {
		return nil, o.finish(true)
	}
	var out []gather.Row
	batchSize := o.rctx.Options.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	for {
		for len(out) < batchSize {
			g := o.strategy.next()
			if g == nil {
				break
			}
			out = append(out, o.emit(g))
		}
		if len(out) >= batchSize {
			return sbuf.NewArray(out), nil
		}
		if o.eos {
			if len(out) > 0 {
				return sbuf.NewArray(out), nil
			}
			return nil, o.finish(false)
		}
		batch, err := o.parent.Pull(false)
		if err != nil {
			o.acct.Clear()
			return nil, err
		}
		if batch == nil {
			o.eos = true
			if len(o.config.Keys) == 0 && o.strategy.open() == 0 {
				// Without group keys there is exactly one group, even
				// for empty input.
				if _, err := o.lookup(nil); err != nil {
					return nil, err
				}
			}
			o.strategy.finish()
			continue
		}
		for _, row := range batch.Rows() {
			if err := o.consume(row); err != nil {
				o.done = true
				o.acct.Clear()
				if _, perr := o.parent.Pull(true); perr != nil {
					err = errors.CombineErrors(err, perr)
				}
				return nil, err
			}
			if g := o.strategy.next(); g != nil {
				out = append(out, o.emit(g))
			}
		}
	}
}

func (o *Op) lookup(key []gather.Value) (*group, error) {
	g, created := o.strategy.lookup(key)
	if created {
		o.ngroups++
		g.aggs = newValRow(o.config.Aggs)
		size := groupOverhead + g.aggs.size()
		for _, v := range key {
			size += v.Size()
		}
		if err := o.charge(g, size); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (o *Op) consume(row gather.Row) error {
	key := make([]gather.Value, len(o.config.Keys))
	for k, e := range o.config.Keys {
		key[k] = e.Eval(row)
	}
	g, err := o.lookup(key)
	if err != nil {
		return err
	}
	g.count++
	if len(o.config.Aggs) > 0 {
		before := g.aggs.size()
		g.aggs.apply(o.config.Aggs, row)
		if err := o.charge(g, g.aggs.size()-before); err != nil {
			return err
		}
	}
	if o.config.Into != nil {
		val := o.config.Into.Eval(row)
		g.into = append(g.into, val)
		if err := o.charge(g, val.Size()); err != nil {
			return err
		}
	}
	return nil
}

// charge accounts for n more bytes held by g.  It runs for every input row
// so that a single large group cannot grow past the memory limit.
func (o *Op) charge(g *group, n int) error {
	if n <= 0 {
		return nil
	}
	if err := o.acct.Grow(n); err != nil {
		o.rctx.Metrics.MemoryLimitExceeded()
		o.rctx.Logger.Warn("collect exceeded memory limit",
			zap.String("method", string(o.config.Method)),
			zap.Int("groups", o.strategy.open()),
			zap.Int64("limit", o.rctx.Memory.Limit()))
		return err
	}
	g.size += n
	return nil
}

func (o *Op) emit(g *group) gather.Row {
	row := make(gather.Row, o.config.Width)
	for k, slot := range o.config.KeySlots {
		if slot >= 0 {
			row[slot] = g.key[k]
		}
	}
	for k, slot := range o.config.AggSlots {
		if slot >= 0 {
			row[slot] = g.aggs[k].Result()
		}
	}
	if o.config.Into != nil && o.config.IntoSlot >= 0 {
		row[o.config.IntoSlot] = gather.NewArray(g.into)
	}
	if o.config.CountSlot >= 0 {
		row[o.config.CountSlot] = gather.NewInt(g.count)
	}
	o.acct.Shrink(g.size)
	return row
}

func (o *Op) finish(propagate bool) error {
	o.done = true
	o.acct.Clear()
	o.rctx.Metrics.ObserveCollect(string(o.config.Method), o.ngroups)
	o.rctx.Logger.Debug("collect done",
		zap.String("method", string(o.config.Method)),
		zap.Int("groups", o.ngroups))
	if propagate && !o.eos {
		_, err := o.parent.Pull(true)
		return err
	}
	return nil
}
