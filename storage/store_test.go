package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrsphere/go-client/storage"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", "v1"))

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v1", value)

	require.NoError(t, store.Set(ctx, "k", "v2"))
	value, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", value)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	_, err := store.Get(ctx, "absent")
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = store.Delete(ctx, "absent")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStoreEmptyKey(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	_, err := store.Get(ctx, "")
	require.Error(t, err)
	require.Error(t, store.Set(ctx, "", "v"))
	require.Error(t, store.Delete(ctx, ""))
}

func TestSavePairReplacesFully(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	first := storage.Pair{AccessToken: "a1", RefreshToken: "r1"}
	require.NoError(t, storage.SavePair(ctx, store, first))

	second := storage.Pair{AccessToken: "a2", RefreshToken: "r2"}
	require.NoError(t, storage.SavePair(ctx, store, second))

	pair, err := storage.LoadPair(ctx, store)
	require.NoError(t, err)
	require.Equal(t, second, pair)
}

func TestLoadPairMissingKeysAreEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	pair, err := storage.LoadPair(ctx, store)
	require.NoError(t, err)
	require.Empty(t, pair.AccessToken)
	require.Empty(t, pair.RefreshToken)
}

func TestSetAccessTokenLeavesRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	require.NoError(t, storage.SavePair(ctx, store, storage.Pair{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, storage.SetAccessToken(ctx, store, "a2"))

	pair, err := storage.LoadPair(ctx, store)
	require.NoError(t, err)
	require.Equal(t, "a2", pair.AccessToken)
	require.Equal(t, "r1", pair.RefreshToken)
}

func TestClearPairTolerant(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	// Clearing an empty store must not error.
	require.NoError(t, storage.ClearPair(ctx, store))

	require.NoError(t, storage.SavePair(ctx, store, storage.Pair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, storage.ClearPair(ctx, store))

	_, err := store.Get(ctx, storage.AccessTokenKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, storage.RefreshTokenKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
