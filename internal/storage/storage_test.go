package storage_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-tui/internal/storage"
)

func TestKeyringStore_SetGet(t *testing.T) {
	store := storage.NewMemoryStore()

	require.NoError(t, store.Set(storage.KeyAccessToken, "abc"))

	value, err := store.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	// Whole-value replacement
	require.NoError(t, store.Set(storage.KeyAccessToken, "def"))
	value, err = store.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "def", value)
}

func TestKeyringStore_GetMissing(t *testing.T) {
	store := storage.NewMemoryStore()

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestKeyringStore_Remove(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: storage.KeyAccessToken, Data: []byte("a")},
		{Key: storage.KeyRefreshToken, Data: []byte("r")},
	})
	store := storage.NewKeyringStore(ring, "test")

	require.NoError(t, store.Remove(storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser))

	_, err := store.Get(storage.KeyAccessToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(storage.KeyRefreshToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
