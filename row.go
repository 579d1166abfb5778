package gather

// A Row is the register vector flowing between plan nodes: slot i holds the
// value of the variable the compiler assigned to slot i.
type Row []Value

func (r Row) Copy() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Size returns an estimate of the memory held by r.
func (r Row) Size() int {
	var n int
	for _, v := range r {
		n += v.Size()
	}
	return n
}
