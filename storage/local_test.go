package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return store
}

func TestNewLocalStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(store.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewLocalStore_EmptyDir(t *testing.T) {
	_, err := NewLocalStore("")
	assert.Error(t, err)
}

func TestLocalStore_PutOpenStat(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)

	path, err := store.Put(ctx, "abc.txt", strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), "abc.txt"), path)

	size, err := store.Stat(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)

	rc, err := store.Open(ctx, path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestLocalStore_PutRejectsExistingAndNestedNames(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)

	_, err := store.Put(ctx, "dup.txt", strings.NewReader("a"))
	require.NoError(t, err)

	_, err = store.Put(ctx, "dup.txt", strings.NewReader("b"))
	assert.Error(t, err, "existing blob must not be overwritten")

	_, err = store.Put(ctx, "../escape.txt", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = store.Put(ctx, "", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestLocalStore_MissingBlob(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)
	missing := filepath.Join(store.Dir(), "missing.txt")

	_, err := store.Open(ctx, missing)
	assert.ErrorIs(t, err, ErrBlobNotExist)

	_, err = store.Stat(ctx, missing)
	assert.ErrorIs(t, err, ErrBlobNotExist)

	assert.NoError(t, store.Remove(ctx, missing), "removing an absent blob is not an error")
}

func TestLocalStore_Remove(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)

	path, err := store.Put(ctx, "gone.json", strings.NewReader("{}"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, path))

	_, err = store.Stat(ctx, path)
	assert.ErrorIs(t, err, ErrBlobNotExist)
}

func TestLocalStore_List(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStore(t)

	blobs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, blobs)

	_, err = store.Put(ctx, "a.txt", strings.NewReader("aa"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "b.png", strings.NewReader("bbbb"))
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), "subdir"), 0o755))

	blobs, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, blobs, 2)

	sizes := map[string]int64{}
	for _, b := range blobs {
		sizes[filepath.Base(b.Path)] = b.Size
		assert.False(t, b.ModTime.IsZero())
	}
	assert.Equal(t, map[string]int64{"a.txt": 2, "b.png": 4}, sizes)
}
