package storage

import (
	"fmt"
	"slices"
	"strings"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/order"
	"github.com/brimdata/gather/pkg/field"
	"github.com/google/btree"
)

type IndexType string

const (
	Hash       IndexType = "hash"
	Skiplist   IndexType = "skiplist"
	Persistent IndexType = "persistent"
)

func ParseIndexType(s string) (IndexType, error) {
	switch t := IndexType(strings.ToLower(s)); t {
	case Hash, Skiplist, Persistent:
		return t, nil
	}
	return "", fmt.Errorf("unknown index type %q", s)
}

// Sorted reports whether an index of type t iterates in key order.
func (t IndexType) Sorted() bool {
	return t == Skiplist || t == Persistent
}

type IndexDef struct {
	Name   string    `json:"name" yaml:"name"`
	Type   IndexType `json:"type" yaml:"type"`
	Fields []string  `json:"fields" yaml:"fields"`
}

// SplitFields splits a comma-separated list of attribute names.
func SplitFields(s string) []string {
	var fields []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func (d IndexDef) Paths() field.List {
	var paths field.List
	for _, f := range d.Fields {
		paths = append(paths, field.Dotted(f))
	}
	return paths
}

// SortKeys returns the ascending order of a sorted index or nil for an
// unsorted index.
func (d IndexDef) SortKeys() order.SortKeys {
	if !d.Type.Sorted() {
		return nil
	}
	var keys order.SortKeys
	for _, path := range d.Paths() {
		keys = append(keys, order.NewSortKey(order.Asc, path))
	}
	return keys
}

type entry struct {
	keys []gather.Value
	pos  int
}

func lessEntry(a, b entry) bool {
	if c := gather.CompareKeys(a.keys, b.keys); c != 0 {
		return c < 0
	}
	return a.pos < b.pos
}

// Index is a secondary index over a collection.  A sorted index keeps its
// entries in a btree ordered by the indexed values, with ties broken by
// insertion order.  A hash index keeps no entries: it can not produce
// documents in order, so no plan reads it.
type Index struct {
	def   IndexDef
	paths field.List
	tree  *btree.BTreeG[entry]
}

func newIndex(def IndexDef) (*Index, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("index has no name")
	}
	if len(def.Fields) == 0 {
		return nil, fmt.Errorf("index %q has no fields", def.Name)
	}
	if _, err := ParseIndexType(string(def.Type)); err != nil {
		return nil, err
	}
	i := &Index{def: def, paths: def.Paths()}
	if def.Type.Sorted() {
		i.tree = btree.NewG(32, lessEntry)
	}
	return i, nil
}

func (i *Index) Def() IndexDef {
	return i.def
}

func (i *Index) keys(doc gather.Value) []gather.Value {
	keys := make([]gather.Value, len(i.paths))
	for k, path := range i.paths {
		keys[k] = Lookup(doc, path)
	}
	return keys
}

func (i *Index) insert(doc gather.Value, pos int) {
	if i.tree != nil {
		i.tree.ReplaceOrInsert(entry{i.keys(doc), pos})
	}
}

// Lookup returns the value at path in doc or null if there is none.
func Lookup(doc gather.Value, path field.Path) gather.Value {
	for _, name := range path {
		doc = doc.Attr(name)
	}
	return doc
}

const iteratorChunk = 256

// IndexIterator walks the documents of a collection in the order of a
// sorted index.  It holds at most one chunk of entries at a time and picks
// up after the last entry it returned, so the index is never copied.
type IndexIterator struct {
	coll    *Collection
	tree    *btree.BTreeG[entry]
	reverse bool
	chunk   []entry
	last    *entry
	done    bool
}

func (i *Index) Iterator(c *Collection, reverse bool) (*IndexIterator, error) {
	if i.tree == nil {
		return nil, fmt.Errorf("index %q of type %s is not sorted", i.def.Name, i.def.Type)
	}
	return &IndexIterator{coll: c, tree: i.tree, reverse: reverse}, nil
}

func (it *IndexIterator) fill() {
	it.chunk = it.chunk[:0]
	visit := func(e entry) bool {
		if it.last != nil && e.pos == it.last.pos && gather.CompareKeys(e.keys, it.last.keys) == 0 {
			return true
		}
		it.chunk = append(it.chunk, e)
		return len(it.chunk) < iteratorChunk
	}
	switch {
	case it.last == nil && !it.reverse:
		it.tree.Ascend(visit)
	case it.last == nil:
		it.tree.Descend(visit)
	case !it.reverse:
		it.tree.AscendGreaterOrEqual(*it.last, visit)
	default:
		it.tree.DescendLessOrEqual(*it.last, visit)
	}
	if len(it.chunk) == 0 {
		it.done = true
		return
	}
	last := it.chunk[len(it.chunk)-1]
	it.last = &last
	slices.Reverse(it.chunk)
}

func (it *IndexIterator) next() (entry, bool) {
	if len(it.chunk) == 0 {
		if it.done {
			return entry{}, false
		}
		it.fill()
		if it.done {
			return entry{}, false
		}
	}
	e := it.chunk[len(it.chunk)-1]
	it.chunk = it.chunk[:len(it.chunk)-1]
	return e, true
}

func (it *IndexIterator) Next() (gather.Value, bool) {
	e, ok := it.next()
	if !ok {
		return gather.Null, false
	}
	return it.coll.docs[e.pos], true
}

// Skip passes over up to n entries without looking up their documents and
// returns the number skipped.
func (it *IndexIterator) Skip(n int) int {
	var skipped int
	for skipped < n {
		if _, ok := it.next(); !ok {
			break
		}
		skipped++
	}
	return skipped
}
