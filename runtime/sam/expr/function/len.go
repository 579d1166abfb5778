package function

import "github.com/brimdata/gather"

// Length is the number of elements of an array, attributes of an object or
// characters of a string.  Null is 0, a bool is 0 or 1 and a number is the
// number of characters of its decimal representation.
type Length struct{}

func (*Length) Call(args []gather.Value) gather.Value {
	v := args[0]
	switch v.Kind() {
	case gather.KindBool:
		if v.Bool() {
			return gather.NewInt(1)
		}
		return gather.NewInt(0)
	case gather.KindNumber:
		return gather.NewInt(len(v.String()))
	}
	return gather.NewInt(v.Len())
}
