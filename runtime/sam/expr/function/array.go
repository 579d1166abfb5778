package function

import (
	"math"
	"slices"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/runtime/sam/expr/agg"
)

// arrayReducer applies an aggregate function to the elements of an array.
type arrayReducer struct {
	pattern agg.Pattern
}

func newArrayReducer(name string) *arrayReducer {
	pattern, err := agg.NewPattern(name)
	if err != nil {
		panic(err)
	}
	return &arrayReducer{pattern}
}

func (a *arrayReducer) Call(args []gather.Value) gather.Value {
	if !args[0].IsArray() {
		return gather.Null
	}
	f := a.pattern()
	for _, v := range args[0].Array() {
		f.Consume(v)
	}
	return f.Result()
}

type First struct{}

func (*First) Call(args []gather.Value) gather.Value {
	return args[0].Index(0)
}

type Last struct{}

func (*Last) Call(args []gather.Value) gather.Value {
	return args[0].Index(-1)
}

// Push appends a value to an array.  If the third argument is truthy, the
// value is only appended when not already present.
type Push struct{}

func (*Push) Call(args []gather.Value) gather.Value {
	arr := args[0]
	if arr.IsNull() {
		arr = gather.NewArray(nil)
	}
	if !arr.IsArray() {
		return gather.Null
	}
	if len(args) == 3 && args[2].Truthy() {
		for _, v := range arr.Array() {
			if gather.Equal(v, args[1]) {
				return arr
			}
		}
	}
	return gather.NewArray(append(slices.Clone(arr.Array()), args[1]))
}

type Sorted struct{}

func (*Sorted) Call(args []gather.Value) gather.Value {
	if !args[0].IsArray() {
		return gather.Null
	}
	vals := slices.Clone(args[0].Array())
	slices.SortStableFunc(vals, gather.Compare)
	return gather.NewArray(vals)
}

const maxRange = 10_000_000

type Range struct{}

func (*Range) Call(args []gather.Value) gather.Value {
	from, _ := args[0].ToNumber()
	to, _ := args[1].ToNumber()
	step := 1.0
	if from > to {
		step = -1
	}
	if len(args) == 3 && !args[2].IsNull() {
		step, _ = args[2].ToNumber()
	}
	if step == 0 || (to-from)/step < 0 || math.Abs((to-from)/step) > maxRange {
		return gather.Null
	}
	var vals []gather.Value
	for x := from; (step > 0 && x <= to) || (step < 0 && x >= to); x += step {
		vals = append(vals, gather.NewNumber(x))
	}
	return gather.NewArray(vals)
}
