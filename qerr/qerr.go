// Package qerr defines the classes of errors a query can fail with.  Every
// error created here is marked with the sentinel of its kind so callers can
// classify it with errors.Is or KindOf after any amount of wrapping.
package qerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindParseOrStructural
	KindInvalidAggregateExpression
	KindUnknownVariable
	KindResourceLimitExceeded
	KindInvalidOptionsAttribute
	KindBadParameter
)

var (
	ErrParseOrStructural          = errors.New("query structure error")
	ErrInvalidAggregateExpression = errors.New("invalid aggregate expression")
	ErrUnknownVariable            = errors.New("unknown variable")
	ErrResourceLimitExceeded      = errors.New("resource limit exceeded")
	ErrInvalidOptionsAttribute    = errors.New("invalid options attribute")
	ErrBadParameter               = errors.New("bad parameter")
)

var kinds = []struct {
	kind     Kind
	sentinel error
	code     int
	name     string
}{
	{KindParseOrStructural, ErrParseOrStructural, 1501, "ParseOrStructuralError"},
	{KindInvalidAggregateExpression, ErrInvalidAggregateExpression, 1574, "InvalidAggregateExpression"},
	{KindUnknownVariable, ErrUnknownVariable, 1512, "UnknownVariable"},
	{KindResourceLimitExceeded, ErrResourceLimitExceeded, 32, "ResourceLimitExceeded"},
	{KindInvalidOptionsAttribute, ErrInvalidOptionsAttribute, 1575, "InvalidOptionsAttribute"},
	{KindBadParameter, ErrBadParameter, 10, "BadParameter"},
}

func (k Kind) String() string {
	for _, e := range kinds {
		if e.kind == k {
			return e.name
		}
	}
	return "Unknown"
}

// Code returns the stable numeric error code of k.
func (k Kind) Code() int {
	for _, e := range kinds {
		if e.kind == k {
			return e.code
		}
	}
	return 1
}

func (k Kind) sentinel() error {
	for _, e := range kinds {
		if e.kind == k {
			return e.sentinel
		}
	}
	panic(fmt.Sprintf("qerr: no sentinel for kind %d", k))
}

// New returns a new error of the given kind.
func New(kind Kind, format string, args ...any) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), kind.sentinel())
}

// Wrap marks err with kind, adding msg as context.
func Wrap(kind Kind, err error, msg string) error {
	return errors.Mark(errors.WrapWithDepth(1, err, msg), kind.sentinel())
}

// KindOf returns the kind of err or KindUnknown if err was not created by
// this package.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, e := range kinds {
		if errors.Is(err, e.sentinel) {
			return e.kind
		}
	}
	return KindUnknown
}

func UnknownVariable(name string) error {
	return errors.Mark(errors.NewWithDepthf(1, "unknown variable '%s'", name), ErrUnknownVariable)
}

func InvalidAggregate(format string, args ...any) error {
	return errors.Mark(errors.NewWithDepthf(1, "invalid aggregate expression: "+format, args...), ErrInvalidAggregateExpression)
}

func Structural(format string, args ...any) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrParseOrStructural)
}

// ResourceLimit returns the error for exceeding a memory ceiling of limit
// bytes while trying to hold used bytes.
func ResourceLimit(what string, used, limit int64) error {
	return errors.Mark(errors.NewWithDepthf(1,
		"resource limit exceeded: %s: query would use more memory (%d bytes) than allowed (%d bytes)",
		what, used, limit), ErrResourceLimitExceeded)
}

func BadParameter(format string, args ...any) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrBadParameter)
}
