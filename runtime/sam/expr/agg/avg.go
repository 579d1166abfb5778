package agg

import (
	"math"
	"unsafe"

	"github.com/brimdata/gather"
)

// Avg averages numbers, ignoring nulls and non-numbers.
type Avg struct {
	sum   float64
	count uint64
}

var _ Function = (*Avg)(nil)

func (a *Avg) Consume(val gather.Value) {
	if val.IsNumber() {
		a.sum += val.Number()
		a.count++
	}
}

func (a *Avg) Result() gather.Value {
	if a.count > 0 {
		return gather.NewNumber(a.sum / float64(a.count))
	}
	return gather.Null
}

func (a *Avg) Size() int {
	return int(unsafe.Sizeof(*a))
}

// Variance computes variances and standard deviations of numbers with
// Welford's online algorithm, ignoring nulls and non-numbers.
type Variance struct {
	count  float64
	mean   float64
	m2     float64
	result func(count, m2 float64) gather.Value
}

var _ Function = (*Variance)(nil)

func (v *Variance) Consume(val gather.Value) {
	if !val.IsNumber() {
		return
	}
	x := val.Number()
	v.count++
	delta := x - v.mean
	v.mean += delta / v.count
	v.m2 += delta * (x - v.mean)
}

func (v *Variance) Result() gather.Value {
	return v.result(v.count, v.m2)
}

func (v *Variance) Size() int {
	return int(unsafe.Sizeof(*v))
}

func varPopulation(count, m2 float64) gather.Value {
	if count < 1 {
		return gather.Null
	}
	return gather.NewNumber(m2 / count)
}

func varSample(count, m2 float64) gather.Value {
	if count < 2 {
		return gather.Null
	}
	return gather.NewNumber(m2 / (count - 1))
}

func stddevPopulation(count, m2 float64) gather.Value {
	if count < 1 {
		return gather.Null
	}
	return gather.NewNumber(math.Sqrt(m2 / count))
}

func stddevSample(count, m2 float64) gather.Value {
	if count < 2 {
		return gather.Null
	}
	return gather.NewNumber(math.Sqrt(m2 / (count - 1)))
}
