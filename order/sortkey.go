package order

import (
	"slices"
	"strings"

	"github.com/brimdata/gather/pkg/field"
)

// SortKey is one component of the order of a stream of rows: the rows are
// ordered by the value at Key (a variable or an attribute path rooted at a
// variable) in the direction Order.
type SortKey struct {
	Key   field.Path `json:"key"`
	Order Which      `json:"order"`
}

func NewSortKey(o Which, key field.Path) SortKey {
	return SortKey{Key: key, Order: o}
}

func (s SortKey) Equal(to SortKey) bool {
	return s.Order == to.Order && s.Key.Equal(to.Key)
}

func (s SortKey) String() string {
	return s.Key.String() + " " + s.Order.String()
}

// SortKeys is the lexicographic order of a stream.  A nil SortKeys means
// the order is unknown.
type SortKeys []SortKey

func (s SortKeys) Primary() SortKey {
	if len(s) == 0 {
		return SortKey{}
	}
	return s[0]
}

func (s SortKeys) Equal(to SortKeys) bool {
	return slices.EqualFunc(s, to, SortKey.Equal)
}

// HasPrefix reports whether a stream ordered by s is also ordered by
// prefix.
func (s SortKeys) HasPrefix(prefix SortKeys) bool {
	return len(prefix) <= len(s) && prefix.Equal(s[:len(prefix)])
}

// Groups reports whether rows that agree on every path in keys are adjacent
// in a stream ordered by s, i.e., whether the first len(keys) sort keys of s
// are keys in some order.  Direction does not matter for adjacency.
func (s SortKeys) Groups(keys field.List) bool {
	if len(keys) == 0 || len(keys) > len(s) {
		return len(keys) == 0
	}
	for _, k := range s[:len(keys)] {
		if !keys.Has(k.Key) {
			return false
		}
	}
	// Reject duplicates in keys so that the cover is exact.
	for i, k := range keys {
		if slices.ContainsFunc(keys[:i], k.Equal) {
			return false
		}
	}
	return true
}

// Rename returns s with every key rooted at a variable in m re-rooted at the
// mapped variable.  Keys that have no mapping truncate the result since the
// order of later keys is meaningless without them.
func (s SortKeys) Rename(m map[string]field.Path) SortKeys {
	var out SortKeys
	for _, k := range s {
		to, ok := m[k.Key.String()]
		if !ok {
			break
		}
		out = append(out, SortKey{Key: to, Order: k.Order})
	}
	return out
}

func (s SortKeys) String() string {
	var b strings.Builder
	for i, k := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.String())
	}
	return b.String()
}
