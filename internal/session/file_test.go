package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile", "session.yaml")
	store := NewFileStore(path)

	rec, err := store.Load(ctx)
	require.NoError(t, err, "missing file is an empty session")
	assert.Equal(t, Record{}, rec)

	want := Record{Access: "acc", Refresh: "ref", Email: "admin@test.com"}
	require.NoError(t, store.Save(ctx, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "access: acc")
	assert.Contains(t, string(content), "refresh: ref")

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// clearing twice is fine
	require.NoError(t, store.Clear(ctx))
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("access: [unterminated"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}
