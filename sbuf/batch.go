package sbuf

import (
	"github.com/brimdata/gather"
)

// Batch is a slice of rows passed between operators.  A receiver may keep
// the rows of a batch but must not modify them in place.
type Batch interface {
	Rows() []gather.Row
}

// Array is a slice of rows that implements Batch.
type Array struct {
	rows []gather.Row
}

var _ Batch = (*Array)(nil)

func NewArray(rows []gather.Row) *Array {
	return &Array{rows: rows}
}

func (a *Array) Rows() []gather.Row {
	return a.rows
}
