package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"podcast-tui/internal/podcast"
	"podcast-tui/internal/storage"
)

// TokenStore is the single source of truth for the bearer credentials.
// Storage is consulted once, at construction; reads after that come from memory.
type TokenStore struct {
	mu    sync.RWMutex
	token *oauth2.Token
	store storage.Store
	log   zerolog.Logger
}

// NewTokenStore seeds the in-memory pair from storage when both a user record and an
// access token are present. A user record that does not parse is treated as absent
// and the stored session is wiped.
func NewTokenStore(store storage.Store, logger zerolog.Logger) *TokenStore {
	t := &TokenStore{
		store: store,
		log:   logger.With().Str("component", "tokens").Logger(),
	}
	t.load()
	return t
}

func (t *TokenStore) load() {
	rawUser, err := t.store.Get(storage.KeyUser)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.log.Warn().Err(err).Msg("could not read stored user")
		}
		return
	}
	access, err := t.store.Get(storage.KeyAccessToken)
	if err != nil || access == "" {
		return
	}

	var user podcast.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		t.log.Warn().Err(err).Msg("stored user is corrupt, clearing session")
		if err := t.store.Remove(storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser); err != nil {
			t.log.Error().Err(err).Msg("failed to clear corrupt session")
		}
		return
	}

	refresh, err := t.store.Get(storage.KeyRefreshToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		t.log.Warn().Err(err).Msg("could not read stored refresh token")
	}
	t.token = newToken(access, refresh)
}

// SetTokens replaces both tokens in memory and in storage
func (t *TokenStore) SetTokens(access, refresh string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.token = newToken(access, refresh)

	if err := t.store.Set(storage.KeyAccessToken, access); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if err := t.store.Set(storage.KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return nil
}

// ClearTokens removes both tokens and the cached user from memory and storage
func (t *TokenStore) ClearTokens() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.token = nil
	if err := t.store.Remove(storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// AccessToken returns the current access token, or "" when there is none
func (t *TokenStore) AccessToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.token == nil {
		return ""
	}
	return t.token.AccessToken
}

// RefreshToken returns the current refresh token, or "" when there is none
func (t *TokenStore) RefreshToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.token == nil {
		return ""
	}
	return t.token.RefreshToken
}

// ExpiresAt returns the access token's exp claim. The zero time means unknown.
func (t *TokenStore) ExpiresAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.token == nil {
		return time.Time{}
	}
	return t.token.Expiry
}

// authorize sets the bearer header when an access token is present and returns
// the token that was used.
func (t *TokenStore) authorize(req *http.Request) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.token == nil || t.token.AccessToken == "" {
		return ""
	}
	t.token.SetAuthHeader(req)
	return t.token.AccessToken
}

func newToken(access, refresh string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Expiry:       accessExpiry(access),
	}
}

// accessExpiry reads exp without verifying the signature; the backend owns verification
func accessExpiry(access string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
