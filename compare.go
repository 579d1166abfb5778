package gather

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Compare returns an integer comparing a and b in the total order of
// values: -1 if a < b, 0 if a == b, and +1 if a > b.  Values of different
// kinds are ordered by kind.  Arrays compare element by element with the
// shorter array padded with nulls.  Objects compare the union of their
// attribute names in lexical order, with a missing attribute taken as null.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case KindNull:
		return 0
	case KindBool, KindNumber:
		return cmp.Compare(a.num, b.num)
	case KindString:
		return strings.Compare(a.str, b.str)
	case KindArray:
		return compareArrays(a.arr, b.arr)
	case KindObject:
		return compareObjects(a, b)
	}
	panic("gather: unknown value kind " + a.kind.String())
}

// Equal reports whether Compare(a, b) == 0.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func compareArrays(a, b []Value) int {
	n := max(len(a), len(b))
	for i := range n {
		var av, bv Value
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if c := Compare(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

func compareObjects(a, b Value) int {
	names := make([]string, 0, len(a.obj)+len(b.obj))
	for _, f := range a.obj {
		names = append(names, f.Name)
	}
	for _, f := range b.obj {
		names = append(names, f.Name)
	}
	slices.Sort(names)
	names = slices.Compact(names)
	for _, name := range names {
		if c := Compare(a.Attr(name), b.Attr(name)); c != 0 {
			return c
		}
	}
	return 0
}

// CompareKeys compares two tuples of values lexicographically.
func CompareKeys(a, b []Value) int {
	for i := range min(len(a), len(b)) {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
