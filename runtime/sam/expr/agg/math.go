package agg

import (
	"unsafe"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/pkg/anymath"
)

// extreme implements MIN and MAX in the total order of values.  Nulls are
// ignored; a group without non-null values yields null.
type extreme struct {
	val  gather.Value
	keep func(int) bool
}

var _ Function = (*extreme)(nil)

func (e *extreme) Consume(val gather.Value) {
	if val.IsNull() {
		return
	}
	if e.val.IsNull() || e.keep(gather.Compare(val, e.val)) {
		e.val = val
	}
}

func (e *extreme) Result() gather.Value {
	return e.val
}

func (e *extreme) Size() int {
	return int(unsafe.Sizeof(*e)) + e.val.Size()
}

// Sum adds numbers.  Nulls are ignored and other non-numbers add nothing.
type Sum struct {
	sum float64
}

var _ Function = (*Sum)(nil)

func (s *Sum) Consume(val gather.Value) {
	if val.IsNumber() {
		s.sum = anymath.Add.Float64(s.sum, val.Number())
	}
}

func (s *Sum) Result() gather.Value {
	return gather.NewNumber(s.sum)
}

func (s *Sum) Size() int {
	return int(unsafe.Sizeof(*s))
}

// bitReducer folds non-negative 32-bit integers with a bitwise function.
// Nulls are ignored; any other value that is not such an integer makes the
// result null.
type bitReducer struct {
	function *anymath.Function
	state    uint32
	hasval   bool
	invalid  bool
}

var _ Function = (*bitReducer)(nil)

func newBitReducer(f *anymath.Function) *bitReducer {
	return &bitReducer{function: f, state: f.Init.Uint32}
}

func (b *bitReducer) Consume(val gather.Value) {
	if val.IsNull() || b.invalid {
		return
	}
	if !val.IsNumber() {
		b.invalid = true
		return
	}
	u, ok := anymath.ToUint32(val.Number())
	if !ok {
		b.invalid = true
		return
	}
	b.state = b.function.Uint32(b.state, u)
	b.hasval = true
}

func (b *bitReducer) Result() gather.Value {
	if !b.hasval || b.invalid {
		return gather.Null
	}
	return gather.NewInt(b.state)
}

func (b *bitReducer) Size() int {
	return int(unsafe.Sizeof(*b))
}
