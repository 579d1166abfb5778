package collect

import (
	"github.com/brimdata/gather"
)

// A group is the state of one distinct group key.  The key never changes
// once the group exists.
type group struct {
	key   []gather.Value
	aggs  valRow
	into  []gather.Value
	count int64
	// size is the memory charged for the group.
	size int
}

const groupOverhead = 64

// A strategy maps the key of each input row to its group and hands out
// groups once they are complete.
type strategy interface {
	// lookup returns the group of key, creating it if needed, and whether
	// it was created.
	lookup(key []gather.Value) (*group, bool)
	// next returns the next complete group or nil if there is none yet.
	next() *group
	// finish marks the end of input, completing every open group.
	finish()
	// open returns the number of groups not yet handed out.
	open() int
}

// hashStrategy keeps every group open until the end of input and then hands
// them out in order of first occurrence.
type hashStrategy struct {
	hasher *gather.Hasher
	table  map[uint64][]*group
	order  []*group
	ready  []*group
}

func newHashStrategy() *hashStrategy {
	return &hashStrategy{
		hasher: gather.NewHasher(),
		table:  make(map[uint64][]*group),
	}
}

func (h *hashStrategy) lookup(key []gather.Value) (*group, bool) {
	hash := h.hasher.HashKey(key)
	for _, g := range h.table[hash] {
		if gather.CompareKeys(g.key, key) == 0 {
			return g, false
		}
	}
	g := &group{key: key}
	h.table[hash] = append(h.table[hash], g)
	h.order = append(h.order, g)
	return g, true
}

func (h *hashStrategy) next() *group {
	if len(h.ready) == 0 {
		return nil
	}
	g := h.ready[0]
	h.ready[0] = nil
	h.ready = h.ready[1:]
	return g
}

func (h *hashStrategy) finish() {
	h.ready = h.order
	h.order = nil
	h.table = nil
}

func (h *hashStrategy) open() int {
	return len(h.order) + len(h.ready)
}

// sortedStrategy relies on input ordered by group key so that a group is
// complete as soon as a row with a different key arrives.  At most one
// group is open at a time.
type sortedStrategy struct {
	current *group
	ready   *group
}

func newSortedStrategy() *sortedStrategy {
	return &sortedStrategy{}
}

func (s *sortedStrategy) lookup(key []gather.Value) (*group, bool) {
	if s.current != nil {
		if gather.CompareKeys(s.current.key, key) == 0 {
			return s.current, false
		}
		if s.ready != nil {
			panic("collect: sorted strategy has an unconsumed group")
		}
		s.ready = s.current
	}
	s.current = &group{key: key}
	return s.current, true
}

func (s *sortedStrategy) next() *group {
	g := s.ready
	s.ready = nil
	return g
}

func (s *sortedStrategy) finish() {
	if s.current != nil {
		if s.ready != nil {
			panic("collect: sorted strategy has an unconsumed group")
		}
		s.ready = s.current
		s.current = nil
	}
}

func (s *sortedStrategy) open() int {
	var n int
	if s.current != nil {
		n++
	}
	if s.ready != nil {
		n++
	}
	return n
}
