package op

import (
	"github.com/brimdata/gather"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/runtime/sam/expr"
	"github.com/brimdata/gather/sbuf"
)

// applier sets slot of every row to the value of expr.  Rows of width
// zero are replaced by a one-slot row holding the value.
type applier struct {
	rctx   *runtime.Context
	parent sbuf.Puller
	slot   int
	expr   expr.Evaluator
	// project replaces rows with the value alone.
	project bool
}

// NewCalc returns the operator for LET: it binds slot to the value of e.
// Since it maps rows one to one, it supports fast skip when its parent does
// and fastSkip is set.  fastSkip must be false if evaluating e can abort
// the query, so that skipped rows fail as they would when pulled.
func NewCalc(rctx *runtime.Context, parent sbuf.Puller, slot int, e expr.Evaluator, fastSkip bool) sbuf.Puller {
	return wrapSkipper(&applier{rctx: rctx, parent: parent, slot: slot, expr: e}, fastSkip)
}

// NewReturn returns the operator for RETURN: it replaces every row with a
// row holding just the value of e.  fastSkip is as for NewCalc.
func NewReturn(rctx *runtime.Context, parent sbuf.Puller, e expr.Evaluator, fastSkip bool) sbuf.Puller {
	return wrapSkipper(&applier{rctx: rctx, parent: parent, expr: e, project: true}, fastSkip)
}

func (a *applier) Pull(done bool) (sbuf.Batch, error) {
	batch, err := a.parent.Pull(done)
	if batch == nil || err != nil {
		return nil, err
	}
	rows := batch.Rows()
	out := make([]gather.Row, 0, len(rows))
	for _, row := range rows {
		val := a.expr.Eval(row)
		if a.project {
			out = append(out, gather.Row{val})
			continue
		}
		row = row.Copy()
		row[a.slot] = val
		out = append(out, row)
	}
	return sbuf.NewArray(out), nil
}

type skippingApplier struct {
	*applier
	skipper sbuf.Skipper
}

func wrapSkipper(a *applier, fastSkip bool) sbuf.Puller {
	if !fastSkip {
		return a
	}
	if skipper, ok := a.parent.(sbuf.Skipper); ok {
		return &skippingApplier{a, skipper}
	}
	return a
}

func (s *skippingApplier) Skip(n int) (int, error) {
	return s.skipper.Skip(n)
}

// Filter passes the rows for which its expression is truthy and counts the
// others in the query's stats.
type Filter struct {
	rctx   *runtime.Context
	parent sbuf.Puller
	expr   expr.Evaluator
}

func NewFilter(rctx *runtime.Context, parent sbuf.Puller, e expr.Evaluator) *Filter {
	return &Filter{rctx: rctx, parent: parent, expr: e}
}

func (f *Filter) Pull(done bool) (sbuf.Batch, error) {
	for {
		batch, err := f.parent.Pull(done)
		if batch == nil || err != nil {
			return nil, err
		}
		rows := batch.Rows()
		out := make([]gather.Row, 0, len(rows))
		for _, row := range rows {
			if f.expr.Eval(row).Truthy() {
				out = append(out, row)
			}
		}
		f.rctx.Stats.Filtered += int64(len(rows) - len(out))
		if len(out) > 0 {
			return sbuf.NewArray(out), nil
		}
	}
}
