package agg

import (
	"unsafe"

	"github.com/brimdata/gather"
)

// Count counts the rows of a group whatever the value of its argument.
type Count int64

var _ Function = (*Count)(nil)

func (c *Count) Consume(gather.Value) {
	*c++
}

func (c Count) Result() gather.Value {
	return gather.NewInt(int64(c))
}

func (c Count) Size() int {
	return int(unsafe.Sizeof(c))
}
