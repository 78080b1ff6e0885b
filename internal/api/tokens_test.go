package api_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-tui/internal/api"
	"podcast-tui/internal/storage"
)

func TestTokenStore_LastWriteWins(t *testing.T) {
	type op struct {
		clear   bool
		access  string
		refresh string
	}

	tests := []struct {
		name        string
		ops         []op
		wantAccess  string
		wantRefresh string
	}{
		{"empty", nil, "", ""},
		{"single set", []op{{access: "a1", refresh: "r1"}}, "a1", "r1"},
		{"set then set", []op{{access: "a1", refresh: "r1"}, {access: "a2", refresh: "r2"}}, "a2", "r2"},
		{"set then clear", []op{{access: "a1", refresh: "r1"}, {clear: true}}, "", ""},
		{"clear then set", []op{{clear: true}, {access: "a3", refresh: "r3"}}, "a3", "r3"},
		{"set clear set", []op{{access: "a1", refresh: "r1"}, {clear: true}, {access: "a4", refresh: "r4"}}, "a4", "r4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			tokens := api.NewTokenStore(store, zerolog.Nop())

			for _, o := range tt.ops {
				if o.clear {
					require.NoError(t, tokens.ClearTokens())
				} else {
					require.NoError(t, tokens.SetTokens(o.access, o.refresh))
				}
			}

			assert.Equal(t, tt.wantAccess, tokens.AccessToken())
			assert.Equal(t, tt.wantRefresh, tokens.RefreshToken())

			stored, err := store.Get(storage.KeyAccessToken)
			if tt.wantAccess == "" {
				assert.ErrorIs(t, err, storage.ErrNotFound)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAccess, stored)
			}
		})
	}
}

func TestTokenStore_ClearRemovesCachedUser(t *testing.T) {
	store := seedSession(t, "a", "r")
	tokens := api.NewTokenStore(store, zerolog.Nop())

	require.NoError(t, tokens.ClearTokens())

	_, err := store.Get(storage.KeyUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_Initialization(t *testing.T) {
	t.Run("seeds from user and access token", func(t *testing.T) {
		tokens := api.NewTokenStore(seedSession(t, "a", "r"), zerolog.Nop())
		assert.Equal(t, "a", tokens.AccessToken())
		assert.Equal(t, "r", tokens.RefreshToken())
	})

	t.Run("starts empty without a user record", func(t *testing.T) {
		store := storage.NewMemoryStore()
		require.NoError(t, store.Set(storage.KeyAccessToken, "a"))
		require.NoError(t, store.Set(storage.KeyRefreshToken, "r"))

		tokens := api.NewTokenStore(store, zerolog.Nop())
		assert.Empty(t, tokens.AccessToken())
		assert.Empty(t, tokens.RefreshToken())
	})

	t.Run("starts empty without an access token", func(t *testing.T) {
		store := storage.NewMemoryStore()
		require.NoError(t, store.Set(storage.KeyUser, `{"id":1}`))

		tokens := api.NewTokenStore(store, zerolog.Nop())
		assert.Empty(t, tokens.AccessToken())
	})

	t.Run("corrupt user record clears storage", func(t *testing.T) {
		store := storage.NewMemoryStore()
		require.NoError(t, store.Set(storage.KeyUser, `{not json`))
		require.NoError(t, store.Set(storage.KeyAccessToken, "a"))
		require.NoError(t, store.Set(storage.KeyRefreshToken, "r"))

		tokens := api.NewTokenStore(store, zerolog.Nop())
		assert.Empty(t, tokens.AccessToken())

		for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
			_, err := store.Get(key)
			assert.ErrorIs(t, err, storage.ErrNotFound, key)
		}
	})
}

func TestTokenStore_ExpiresAt(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tokens := api.NewTokenStore(storage.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, tokens.SetTokens(access, "r"))
	assert.True(t, exp.Equal(tokens.ExpiresAt()))

	// Opaque tokens have no known expiry
	require.NoError(t, tokens.SetTokens("opaque", "r"))
	assert.True(t, tokens.ExpiresAt().IsZero())
}
