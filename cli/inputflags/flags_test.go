package inputflags

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	lines := filepath.Join(dir, "users.jsonl")
	array := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(lines, []byte("{\"a\":1}\n{\"a\":2}\n"), 0644))
	require.NoError(t, os.WriteFile(array, []byte(`[{"b":1},{"b":2},{"b":3}]`), 0644))
	f := Flags{Files: []string{lines, array}, Threads: 2}
	docs, err := f.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Len(t, docs[0], 2)
	assert.Len(t, docs[1], 3)
	assert.Equal(t, "users", f.CollectionName(lines))
	f.Collection = "all"
	assert.Equal(t, "all", f.CollectionName(array))
}

func TestReadAllError(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a":`), 0644))
	f := Flags{Files: []string{bad}}
	_, err := f.ReadAll(context.Background())
	assert.ErrorContains(t, err, "bad.json")
}
