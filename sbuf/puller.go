package sbuf

import (
	"github.com/brimdata/gather"
)

// A Puller produces a finite, non-restartable sequence of batches.  Pull
// returns a nil batch and nil error at end of stream.  Calling Pull with
// done set tells the puller that the caller wants no more data from the
// current stream: the puller stops any upstream work it has in flight,
// propagates done to its own parents and returns end of stream.
type Puller interface {
	Pull(done bool) (Batch, error)
}

// A Skipper is a Puller that can advance past rows without materializing
// them.  Skip discards up to n rows and returns how many it discarded; a
// result smaller than n means the stream is exhausted.
type Skipper interface {
	Puller
	Skip(n int) (int, error)
}

// ReadAll pulls every row from p.
func ReadAll(p Puller) ([]gather.Row, error) {
	var out []gather.Row
	for {
		batch, err := p.Pull(false)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			return out, nil
		}
		out = append(out, batch.Rows()...)
	}
}

// Writer consumes rows.
type Writer interface {
	Write(gather.Row) error
}

// CopyPuller writes every row from p to w.  If w returns an error, the
// puller is told it is done before the error is returned.
func CopyPuller(w Writer, p Puller) error {
	for {
		batch, err := p.Pull(false)
		if err != nil || batch == nil {
			return err
		}
		for _, row := range batch.Rows() {
			if err := w.Write(row); err != nil {
				p.Pull(true)
				return err
			}
		}
	}
}

// SlicePuller is a Puller over a fixed slice of rows, returned in batches
// of at most BatchSize rows.  It implements Skipper.
type SlicePuller struct {
	rows      []gather.Row
	BatchSize int
}

var _ Skipper = (*SlicePuller)(nil)

func NewSlicePuller(rows []gather.Row, batchSize int) *SlicePuller {
	return &SlicePuller{rows: rows, BatchSize: max(batchSize, 1)}
}

func (s *SlicePuller) Pull(done bool) (Batch, error) {
	if done || len(s.rows) == 0 {
		s.rows = nil
		return nil, nil
	}
	n := min(s.BatchSize, len(s.rows))
	batch := NewArray(s.rows[:n:n])
	s.rows = s.rows[n:]
	return batch, nil
}

func (s *SlicePuller) Skip(n int) (int, error) {
	n = min(n, len(s.rows))
	s.rows = s.rows[n:]
	return n, nil
}
