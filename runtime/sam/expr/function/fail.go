package function

import (
	"strings"

	"github.com/brimdata/gather"
	"github.com/cockroachdb/errors"
)

// ErrFail is the mark of errors raised by FAIL.
var ErrFail = errors.New("query failed")

// CanFail reports whether a call of the function called name can abort
// the query.
func CanFail(name string) bool {
	return strings.EqualFold(name, "FAIL")
}

// Fail aborts the query.  The panic is turned into an error by the catcher
// at the top of the operator graph.
type Fail struct{}

func (*Fail) Call(args []gather.Value) gather.Value {
	msg := "FAIL(...) called"
	if len(args) > 0 && !args[0].IsNull() {
		msg = toString(args[0])
	}
	panic(errors.Mark(errors.New(msg), ErrFail))
}
