package function

import (
	"slices"

	"github.com/brimdata/gather"
)

type Has struct{}

func (*Has) Call(args []gather.Value) gather.Value {
	if !args[1].IsString() {
		return gather.False
	}
	_, ok := args[0].Get(args[1].Str())
	return gather.NewBool(ok)
}

// Attributes returns the attribute names of an object, sorted if the
// second argument is truthy.
type Attributes struct{}

func (*Attributes) Call(args []gather.Value) gather.Value {
	if !args[0].IsObject() {
		return gather.Null
	}
	var names []string
	for _, f := range args[0].Fields() {
		names = append(names, f.Name)
	}
	if len(args) == 2 && args[1].Truthy() {
		slices.Sort(names)
	}
	vals := make([]gather.Value, 0, len(names))
	for _, name := range names {
		vals = append(vals, gather.NewString(name))
	}
	return gather.NewArray(vals)
}
