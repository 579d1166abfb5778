package function

import (
	"strconv"

	"github.com/brimdata/gather"
)

type isKind struct {
	is func(gather.Value) bool
}

func (i *isKind) Call(args []gather.Value) gather.Value {
	return gather.NewBool(i.is(args[0]))
}

func isArray(v gather.Value) bool  { return v.IsArray() }
func isBool(v gather.Value) bool   { return v.Kind() == gather.KindBool }
func isNull(v gather.Value) bool   { return v.IsNull() }
func isNumber(v gather.Value) bool { return v.IsNumber() }
func isObject(v gather.Value) bool { return v.IsObject() }
func isString(v gather.Value) bool { return v.IsString() }

type TypeName struct{}

func (*TypeName) Call(args []gather.Value) gather.Value {
	return gather.NewString(args[0].Kind().String())
}

type ToBool struct{}

func (*ToBool) Call(args []gather.Value) gather.Value {
	return gather.NewBool(args[0].Truthy())
}

// ToNumber converts its argument to a number.  Values without a numeric
// interpretation convert to 0.
type ToNumber struct{}

func (*ToNumber) Call(args []gather.Value) gather.Value {
	f, _ := args[0].ToNumber()
	return gather.NewNumber(f)
}

type ToString struct{}

func (*ToString) Call(args []gather.Value) gather.Value {
	return gather.NewString(toString(args[0]))
}

func toString(v gather.Value) string {
	switch v.Kind() {
	case gather.KindNull:
		return ""
	case gather.KindString:
		return v.Str()
	case gather.KindBool:
		return strconv.FormatBool(v.Bool())
	}
	return v.String()
}

type ToArray struct{}

func (*ToArray) Call(args []gather.Value) gather.Value {
	v := args[0]
	switch v.Kind() {
	case gather.KindNull:
		return gather.NewArray(nil)
	case gather.KindArray:
		return v
	case gather.KindObject:
		var vals []gather.Value
		for _, f := range v.Fields() {
			vals = append(vals, f.Value)
		}
		return gather.NewArray(vals)
	}
	return gather.NewArray([]gather.Value{v})
}

type NotNull struct{}

func (*NotNull) Call(args []gather.Value) gather.Value {
	for _, arg := range args {
		if !arg.IsNull() {
			return arg
		}
	}
	return gather.Null
}
