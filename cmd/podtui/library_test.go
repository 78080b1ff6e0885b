package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-tui/internal/api"
	"podcast-tui/internal/prefs"
	"podcast-tui/internal/session"
	"podcast-tui/internal/storage"
)

// newTestEnv wires the commands against router, optionally restoring a signed in session
func newTestEnv(t *testing.T, router *mux.Router, signedIn bool) *env {
	t.Helper()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	store := storage.NewMemoryStore()
	if signedIn {
		require.NoError(t, store.Set(storage.KeyUser, `{"id":1,"username":"alice","first_name":"Alice","last_name":"Smith","email":"alice@example.com"}`))
		require.NoError(t, store.Set(storage.KeyAccessToken, "access-1"))
		require.NoError(t, store.Set(storage.KeyRefreshToken, "refresh-1"))
	}

	logger := zerolog.Nop()
	tokens := api.NewTokenStore(store, logger)
	client := api.NewClient(server.URL, tokens, api.WithTimeout(5*time.Second))
	mgr := session.NewManager(client.Auth, tokens, store, logger)
	client.OnSessionExpired(mgr.Expire)
	mgr.InitializeAuth()

	return &env{
		log:     logger,
		store:   store,
		tokens:  tokens,
		client:  client,
		session: mgr,
		prefs:   prefs.New(store),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestCreatePlaylist(t *testing.T) {
	tests := []struct {
		name     string
		signedIn bool
		input    string
		wantErr  error
		wantName string
	}{
		{name: "trims the name", signedIn: true, input: "  Commute ", wantName: "Commute"},
		{name: "blank name", signedIn: true, input: "   ", wantErr: errPlaylistName},
		{name: "signed out", input: "Commute", wantErr: errNotSignedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created []string
			router := mux.NewRouter()
			router.HandleFunc("/playlists/", func(w http.ResponseWriter, r *http.Request) {
				name := decodeBody(t, r)["name"].(string)
				created = append(created, name)
				writeJSON(w, http.StatusCreated, map[string]any{"id": 3, "name": name})
			}).Methods(http.MethodPost)
			e := newTestEnv(t, router, tt.signedIn)

			err := e.createPlaylist(context.Background(), tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantName}, created)
		})
	}
}

func TestRenamePlaylist(t *testing.T) {
	var renamed string
	router := mux.NewRouter()
	router.HandleFunc("/playlists/3/", func(w http.ResponseWriter, r *http.Request) {
		renamed = decodeBody(t, r)["name"].(string)
		writeJSON(w, http.StatusOK, map[string]any{"id": 3, "name": renamed})
	}).Methods(http.MethodPut)
	e := newTestEnv(t, router, true)

	assert.ErrorIs(t, e.renamePlaylist(context.Background(), 3, ""), errPlaylistName)
	assert.Empty(t, renamed)

	require.NoError(t, e.renamePlaylist(context.Background(), 3, "Gym"))
	assert.Equal(t, "Gym", renamed)
}

func TestDeletePlaylist(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr string
	}{
		{name: "deleted", status: http.StatusNoContent},
		{name: "not found", status: http.StatusNotFound, wantErr: "Not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int
			router := mux.NewRouter()
			router.HandleFunc("/playlists/3/", func(w http.ResponseWriter, r *http.Request) {
				hits++
				if tt.status == http.StatusNoContent {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, map[string]string{"detail": "Not found."})
			}).Methods(http.MethodDelete)
			e := newTestEnv(t, router, true)

			err := e.deletePlaylist(context.Background(), 3)

			assert.Equal(t, 1, hits)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, api.UserMessage(err, "fallback"))
		})
	}
}

func TestAddAndRemovePlaylistEpisode(t *testing.T) {
	var calls []string
	router := mux.NewRouter()
	router.HandleFunc("/playlists/{id}/add_episode/", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "add "+mux.Vars(r)["id"])
		assert.Equal(t, float64(42), decodeBody(t, r)["episode_id"])
		writeJSON(w, http.StatusOK, map[string]string{"message": "Episode added to playlist"})
	}).Methods(http.MethodPost)
	router.HandleFunc("/playlists/{id}/remove_episode/", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "remove "+mux.Vars(r)["id"])
		assert.Equal(t, float64(42), decodeBody(t, r)["episode_id"])
		writeJSON(w, http.StatusOK, map[string]string{})
	}).Methods(http.MethodDelete)
	e := newTestEnv(t, router, true)
	ctx := context.Background()

	assert.ErrorIs(t, e.addToPlaylist(ctx, 3, 0), errEpisodeID)
	assert.ErrorIs(t, e.removeFromPlaylist(ctx, 3, 0), errEpisodeID)
	assert.Empty(t, calls)

	require.NoError(t, e.addToPlaylist(ctx, 3, 42))
	require.NoError(t, e.removeFromPlaylist(ctx, 3, 42))
	assert.Equal(t, []string{"add 3", "remove 3"}, calls)
}

func TestShowCategory(t *testing.T) {
	var gotCategory string
	router := mux.NewRouter()
	router.HandleFunc("/categories/5/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 5, "name": "Technology"})
	}).Methods(http.MethodGet)
	router.HandleFunc("/podcasts/", func(w http.ResponseWriter, r *http.Request) {
		gotCategory = r.URL.Query().Get("category")
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 3, "title": "Ship It"}})
	}).Methods(http.MethodGet)
	e := newTestEnv(t, router, false)

	require.NoError(t, e.showCategory(context.Background(), 5))
	assert.Equal(t, "5", gotCategory)
}

func TestMyPodcastsRequiresSession(t *testing.T) {
	e := newTestEnv(t, mux.NewRouter(), false)

	assert.ErrorIs(t, e.myPodcasts(context.Background()), errNotSignedIn)
}

func TestProfileRefreshesCachedUser(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/profile/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "alice", "first_name": "Alicia"})
	}).Methods(http.MethodGet)
	e := newTestEnv(t, router, true)

	require.NoError(t, e.profile(context.Background()))

	user := e.session.State().User
	require.NotNil(t, user)
	assert.Equal(t, "Alicia", user.FirstName)

	raw, err := e.store.Get(storage.KeyUser)
	require.NoError(t, err)
	assert.Contains(t, raw, "Alicia")
}

func TestUpdateProfile(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
		wantEmail string
	}{
		{
			name:      "blank answers keep values",
			input:     "Alicia\n\nnew@example.com\n",
			wantFirst: "Alicia",
			wantLast:  "Smith",
			wantEmail: "new@example.com",
		},
		{
			name:      "closed input keeps everything",
			input:     "",
			wantFirst: "Alice",
			wantLast:  "Smith",
			wantEmail: "alice@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent map[string]any
			router := mux.NewRouter()
			router.HandleFunc("/profile/", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{
					"id": 1, "username": "alice", "first_name": "Alice", "last_name": "Smith", "email": "alice@example.com",
				})
			}).Methods(http.MethodGet)
			router.HandleFunc("/profile/", func(w http.ResponseWriter, r *http.Request) {
				sent = decodeBody(t, r)
				writeJSON(w, http.StatusOK, sent)
			}).Methods(http.MethodPut)
			e := newTestEnv(t, router, true)

			require.NoError(t, e.updateProfile(context.Background(), strings.NewReader(tt.input)))

			require.NotNil(t, sent)
			assert.Equal(t, tt.wantFirst, sent["first_name"])
			assert.Equal(t, tt.wantLast, sent["last_name"])
			assert.Equal(t, tt.wantEmail, sent["email"])
			assert.Equal(t, tt.wantFirst, e.session.State().User.FirstName)
		})
	}
}
