package agg

import (
	"slices"
	"unsafe"

	"github.com/brimdata/gather"
)

// Push collects every value of a group, nulls included, in input order.
type Push struct {
	values []gather.Value
	size   int
}

var _ Function = (*Push)(nil)

func (p *Push) Consume(val gather.Value) {
	p.values = append(p.values, val)
	p.size += val.Size()
}

func (p *Push) Result() gather.Value {
	return gather.NewArray(slices.Clone(p.values))
}

func (p *Push) Size() int {
	return int(unsafe.Sizeof(*p)) + p.size
}

// distinct keeps the set of distinct non-null values of a group in order
// of first occurrence.
type distinct struct {
	hasher *gather.Hasher
	table  map[uint64][]int
	values []gather.Value
	size   int
	result func([]gather.Value) gather.Value
}

var _ Function = (*distinct)(nil)

func newDistinct(result func([]gather.Value) gather.Value) *distinct {
	return &distinct{
		hasher: gather.NewHasher(),
		table:  make(map[uint64][]int),
		result: result,
	}
}

func (d *distinct) Consume(val gather.Value) {
	if val.IsNull() {
		return
	}
	h := d.hasher.Hash(val)
	for _, k := range d.table[h] {
		if gather.Equal(d.values[k], val) {
			return
		}
	}
	d.table[h] = append(d.table[h], len(d.values))
	d.values = append(d.values, val)
	d.size += val.Size() + 16
}

func (d *distinct) Result() gather.Value {
	return d.result(d.values)
}

func (d *distinct) Size() int {
	return int(unsafe.Sizeof(*d)) + d.size
}

func countDistinct(vals []gather.Value) gather.Value {
	return gather.NewInt(len(vals))
}

func uniqueValues(vals []gather.Value) gather.Value {
	return gather.NewArray(slices.Clone(vals))
}

func sortedValues(vals []gather.Value) gather.Value {
	sorted := slices.Clone(vals)
	slices.SortFunc(sorted, gather.Compare)
	return gather.NewArray(sorted)
}
