package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.bolt")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	docs := []gather.Value{
		gather.MustParse(`{"a":2,"b":"x"}`),
		gather.MustParse(`{"a":1,"b":"y"}`),
	}
	require.NoError(t, s.Append("c", docs))
	require.NoError(t, s.EnsureIndex("c", storage.IndexDef{Name: "a", Type: storage.Skiplist, Fields: []string{"a"}}))
	require.NoError(t, s.EnsureIndex("c", storage.IndexDef{Name: "a", Type: storage.Persistent, Fields: []string{"a"}}))
	require.NoError(t, s.Append("c", []gather.Value{gather.MustParse(`{"a":3}`)}))
	assert.Error(t, s.Append("_meta", docs))
	require.NoError(t, s.Close())

	s, err = Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	names, err := s.Collections()
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names)
	cat := storage.NewCatalog()
	require.NoError(t, s.Load(cat))
	c, err := cat.Lookup("c")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	doc, ok := c.Scan().Next()
	require.True(t, ok)
	assert.Equal(t, `{"a":2,"b":"x"}`, doc.String())
	defs := c.IndexDefs()
	require.Len(t, defs, 1)
	assert.Equal(t, storage.Persistent, defs[0].Type)
}
