// Package boltstore persists collections and their index definitions in a
// bbolt database file.  Each collection is a bucket of documents keyed by
// sequence number, and the meta bucket maps collection names to their index
// definitions.
package boltstore

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/storage"
	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var metaBucketName = []byte("_meta")

type Store struct {
	db     *bbolt.DB
	logger *zap.Logger
}

func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := bbolt.Open(path, 0666, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append adds docs to the named collection.
func (s *Store) Append(collection string, docs []gather.Value) error {
	if collection == string(metaBucketName) {
		return fmt.Errorf("reserved collection name: %s", collection)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		for _, doc := range docs {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			if err := b.Put(key(seq), gather.AppendJSON(nil, doc)); err != nil {
				return err
			}
		}
		s.logger.Debug("appended documents", zap.String("collection", collection), zap.Int("count", len(docs)))
		return nil
	})
}

// EnsureIndex records an index definition for the named collection,
// replacing any definition with the same name.
func (s *Store) EnsureIndex(collection string, def storage.IndexDef) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(collection)); err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists(metaBucketName)
		if err != nil {
			return err
		}
		defs, err := readDefs(meta, collection)
		if err != nil {
			return err
		}
		var out []storage.IndexDef
		for _, d := range defs {
			if d.Name != def.Name {
				out = append(out, d)
			}
		}
		b, err := json.Marshal(append(out, def))
		if err != nil {
			return err
		}
		return meta.Put([]byte(collection), b)
	})
}

// Load reads every collection of the store into cat and builds their
// indexes.
func (s *Store) Load(cat *storage.Catalog) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(metaBucketName)
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			if string(name) == string(metaBucketName) {
				return nil
			}
			coll := cat.Create(string(name))
			err := b.ForEach(func(_, v []byte) error {
				doc, err := gather.Parse(v)
				if err != nil {
					return err
				}
				return coll.Insert(doc)
			})
			if err != nil {
				return fmt.Errorf("collection %s: %w", name, err)
			}
			if meta == nil {
				return nil
			}
			defs, err := readDefs(meta, string(name))
			if err != nil {
				return err
			}
			for _, def := range defs {
				if _, err := coll.EnsureIndex(def); err != nil {
					return err
				}
			}
			s.logger.Debug("loaded collection", zap.String("collection", coll.Name()), zap.Int("documents", coll.Len()), zap.Int("indexes", len(defs)))
			return nil
		})
	})
}

// Collections returns the names of the stored collections.
func (s *Store) Collections() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			if string(name) != string(metaBucketName) {
				names = append(names, string(name))
			}
			return nil
		})
	})
	return names, err
}

func readDefs(meta *bbolt.Bucket, collection string) ([]storage.IndexDef, error) {
	b := meta.Get([]byte(collection))
	if b == nil {
		return nil, nil
	}
	var defs []storage.IndexDef
	if err := json.Unmarshal(b, &defs); err != nil {
		return nil, fmt.Errorf("index definitions of %s: %w", collection, err)
	}
	return defs, nil
}

func key(seq uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return b[:]
}
