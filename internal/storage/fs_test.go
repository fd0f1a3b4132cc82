package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_DeleteRemovesBlob(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "files", "report.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	require.NoError(t, store.Delete(context.Background(), "files/report.pdf"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting again is success: purge retries must not fail on work
	// already done.
	assert.NoError(t, store.Delete(context.Background(), "files/report.pdf"))
}

func TestFSStore_RejectsTraversalKeys(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../outside", "..", "/etc/passwd", "files/../../outside", "."} {
		assert.Error(t, store.Delete(context.Background(), key), "key %q", key)
	}
}
