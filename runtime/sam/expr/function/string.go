package function

import (
	"strings"

	"github.com/brimdata/gather"
)

type Concat struct{}

func (*Concat) Call(args []gather.Value) gather.Value {
	var b strings.Builder
	for _, arg := range args {
		if arg.IsArray() {
			for _, elem := range arg.Array() {
				b.WriteString(toString(elem))
			}
			continue
		}
		b.WriteString(toString(arg))
	}
	return gather.NewString(b.String())
}

type Contains struct{}

func (*Contains) Call(args []gather.Value) gather.Value {
	return gather.NewBool(strings.Contains(toString(args[0]), toString(args[1])))
}

type ToLower struct{}

func (*ToLower) Call(args []gather.Value) gather.Value {
	return gather.NewString(strings.ToLower(toString(args[0])))
}

type ToUpper struct{}

func (*ToUpper) Call(args []gather.Value) gather.Value {
	return gather.NewString(strings.ToUpper(toString(args[0])))
}

// Substring counts characters, not bytes.  A negative offset counts from
// the end of the string.
type Substring struct{}

func (*Substring) Call(args []gather.Value) gather.Value {
	runes := []rune(toString(args[0]))
	f, _ := args[1].ToNumber()
	offset := int(f)
	if offset < 0 {
		offset = max(len(runes)+offset, 0)
	}
	offset = min(offset, len(runes))
	end := len(runes)
	if len(args) == 3 && !args[2].IsNull() {
		n, _ := args[2].ToNumber()
		end = min(offset+max(int(n), 0), len(runes))
	}
	return gather.NewString(string(runes[offset:end]))
}
