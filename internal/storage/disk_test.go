package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	key := "2024/05/01/blob-1"
	require.NoError(t, store.Write(ctx, key, []byte("hello")))

	data, err := store.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDiskStoreCreatesHierarchy(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(filepath.Join(root, "nested", "deep"))

	require.NoError(t, store.Write(context.Background(), "a/b/c", []byte("x")))

	_, err := os.Stat(filepath.Join(root, "nested", "deep", "a", "b", "c"))
	assert.NoError(t, err)
}

func TestDiskStoreMissingBlob(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Read(ctx, "nope")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	exists, err := store.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDiskStoreOverwrite(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "k", []byte("v1")))
	require.NoError(t, store.Write(ctx, "k", []byte("v2")))

	data, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestDerivativeKey(t *testing.T) {
	assert.Equal(t, "2024/05/01/blob_500", DerivativeKey("2024/05/01/blob", 500))
	assert.Equal(t, "x_100", DerivativeKey("x", 100))
}

func TestNewKeyUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		key := NewKey()
		_, dup := seen[key]
		require.False(t, dup, "duplicate key %s", key)
		seen[key] = struct{}{}
	}
}
