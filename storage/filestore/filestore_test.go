package filestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrsphere/go-client/storage"
	"github.com/hrsphere/go-client/storage/filestore"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := filestore.New(path)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, storage.AccessTokenKey, "tok1"))

	value, err := store.Get(ctx, storage.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "tok1", value)

	require.NoError(t, store.Delete(ctx, storage.AccessTokenKey))
	_, err = store.Get(ctx, storage.AccessTokenKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := filestore.New(path)
	require.NoError(t, err)
	require.NoError(t, storage.SavePair(ctx, store, storage.Pair{AccessToken: "a", RefreshToken: "r"}))

	reopened, err := filestore.New(path)
	require.NoError(t, err)

	pair, err := storage.LoadPair(ctx, reopened)
	require.NoError(t, err)
	require.Equal(t, "a", pair.AccessToken)
	require.Equal(t, "r", pair.RefreshToken)
}

func TestFileStoreMissingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "credentials.json")

	store, err := filestore.New(path)
	require.NoError(t, err)

	_, err = store.Get(ctx, storage.AccessTokenKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFileStoreRequiresPath(t *testing.T) {
	_, err := filestore.New("")
	require.Error(t, err)
}
