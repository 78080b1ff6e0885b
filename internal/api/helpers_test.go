package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"podcast-tui/internal/api"
	"podcast-tui/internal/storage"
)

// newTestClient starts router on a test server and returns a client pointed at it
func newTestClient(t *testing.T, router *mux.Router, store storage.Store) *api.Client {
	t.Helper()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	if store == nil {
		store = storage.NewMemoryStore()
	}
	tokens := api.NewTokenStore(store, zerolog.Nop())
	return api.NewClient(server.URL, tokens, api.WithTimeout(5*time.Second))
}

// seedSession stores a user record and a token pair the way a previous login would have
func seedSession(t *testing.T, access, refresh string) storage.Store {
	t.Helper()

	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyUser, `{"id":1,"username":"alice"}`))
	require.NoError(t, store.Set(storage.KeyAccessToken, access))
	if refresh != "" {
		require.NoError(t, store.Set(storage.KeyRefreshToken, refresh))
	}
	return store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func bearer(token string) string {
	return "Bearer " + token
}
