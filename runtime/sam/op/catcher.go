package op

import (
	"fmt"
	"runtime/debug"

	"github.com/brimdata/gather/sbuf"
	"github.com/cockroachdb/errors"
)

// Catcher wraps a Puller with a Pull method that recovers panics and turns
// them into errors.  It should be wrapped around the output puller of an
// operator graph.  A panic with an error value, such as the one raised by
// FAIL, becomes that error.
type Catcher struct {
	parent sbuf.Puller
}

func NewCatcher(parent sbuf.Puller) *Catcher {
	return &Catcher{parent}
}

func (c *Catcher) Pull(done bool) (b sbuf.Batch, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = errors.WithStack(rerr)
				return
			}
			err = fmt.Errorf("panic: %+v\n%s\n", r, debug.Stack())
		}
	}()
	return c.parent.Pull(done)
}
