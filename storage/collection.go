// Package storage holds document collections and their indexes in memory.
package storage

import (
	"fmt"
	"slices"
	"sync"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/order"
)

type Collection struct {
	name    string
	docs    []gather.Value
	indexes []*Index
}

func NewCollection(name string) *Collection {
	return &Collection{name: name}
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Len() int {
	return len(c.docs)
}

// Insert appends a document, which must be an object, and adds it to every
// index of the collection.
func (c *Collection) Insert(doc gather.Value) error {
	if !doc.IsObject() {
		return fmt.Errorf("collection %q: document is not an object: %s", c.name, doc)
	}
	pos := len(c.docs)
	c.docs = append(c.docs, doc)
	for _, i := range c.indexes {
		i.insert(doc, pos)
	}
	return nil
}

// EnsureIndex creates the index described by def unless an index with the
// same name exists, in which case the definitions must match.
func (c *Collection) EnsureIndex(def IndexDef) (*Index, error) {
	if i, ok := c.Index(def.Name); ok {
		if i.def.Type != def.Type || !slices.Equal(i.def.Fields, def.Fields) {
			return nil, fmt.Errorf("collection %q: index %q exists with a different definition", c.name, def.Name)
		}
		return i, nil
	}
	i, err := newIndex(def)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", c.name, err)
	}
	for pos, doc := range c.docs {
		i.insert(doc, pos)
	}
	c.indexes = append(c.indexes, i)
	return i, nil
}

func (c *Collection) Index(name string) (*Index, bool) {
	for _, i := range c.indexes {
		if i.def.Name == name {
			return i, true
		}
	}
	return nil, false
}

func (c *Collection) IndexDefs() []IndexDef {
	var defs []IndexDef
	for _, i := range c.indexes {
		defs = append(defs, i.def)
	}
	return defs
}

// Scan returns an iterator over the documents in insertion order.
func (c *Collection) Scan() *ScanIterator {
	return &ScanIterator{docs: c.docs}
}

type ScanIterator struct {
	docs []gather.Value
	off  int
}

func (s *ScanIterator) Next() (gather.Value, bool) {
	if s.off >= len(s.docs) {
		return gather.Null, false
	}
	doc := s.docs[s.off]
	s.off++
	return doc, true
}

func (s *ScanIterator) Skip(n int) int {
	n = min(n, len(s.docs)-s.off)
	s.off += n
	return n
}

// IndexProvider describes the indexes available to the optimizer.
type IndexProvider interface {
	Indexes(collection string) []IndexDef
}

// Catalog is the set of collections of a database.
type Catalog struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

var _ IndexProvider = (*Catalog)(nil)

func NewCatalog() *Catalog {
	return &Catalog{collections: make(map[string]*Collection)}
}

// Create returns the named collection, creating it if needed.
func (c *Catalog) Create(name string) *Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	coll, ok := c.collections[name]
	if !ok {
		coll = NewCollection(name)
		c.collections[name] = coll
	}
	return coll
}

func (c *Catalog) Lookup(name string) (*Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coll, ok := c.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection not found: %s", name)
	}
	return coll, nil
}

func (c *Catalog) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var names []string
	for name := range c.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *Catalog) Indexes(collection string) []IndexDef {
	coll, err := c.Lookup(collection)
	if err != nil {
		return nil
	}
	return coll.IndexDefs()
}

// SortedIndex returns the first sorted index of collection whose key order
// satisfies match.
func SortedIndex(p IndexProvider, collection string, match func(order.SortKeys) bool) (IndexDef, bool) {
	for _, def := range p.Indexes(collection) {
		if keys := def.SortKeys(); keys != nil && match(keys) {
			return def, true
		}
	}
	return IndexDef{}, false
}
