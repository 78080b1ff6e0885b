package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"podcast-tui/internal/api"
	"podcast-tui/internal/podcast"
	"podcast-tui/internal/storage"
)

const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
	sessionExpired     = "Your session has expired. Please log in again."
)

// AuthAPI is the subset of the backend the session needs
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*podcast.LoginResponse, error)
	Register(ctx context.Context, req podcast.RegisterRequest) (*podcast.LoginResponse, error)
	Logout(ctx context.Context) error
}

// Credentials holds the token pair. *api.TokenStore satisfies it.
type Credentials interface {
	SetTokens(access, refresh string) error
	ClearTokens() error
	AccessToken() string
}

// Listener is called with the new state after every transition
type Listener func(State)

// Manager owns the session state and applies its persistence effects
type Manager struct {
	auth   AuthAPI
	tokens Credentials
	store  storage.Store
	log    zerolog.Logger

	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewManager creates a manager in the anonymous state. Call InitializeAuth to rehydrate.
func NewManager(auth AuthAPI, tokens Credentials, store storage.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		auth:      auth,
		tokens:    tokens,
		store:     store,
		log:       logger.With().Str("component", "session").Logger(),
		listeners: make(map[int]Listener),
	}
}

// State returns the current snapshot
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers l and returns a function that removes it
func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Login exchanges credentials for a session. On failure the state stays anonymous
// and carries the server message.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.dispatch(Started{})

	resp, err := m.auth.Login(ctx, username, password)
	if err != nil {
		m.dispatch(Failed{Message: loginMessage(err)})
		return fmt.Errorf("failed to login: %w", err)
	}
	return m.establish(resp, loginFailed)
}

// Register creates an account and signs into it
func (m *Manager) Register(ctx context.Context, req podcast.RegisterRequest) error {
	m.dispatch(Started{})

	resp, err := m.auth.Register(ctx, req)
	if err != nil {
		m.dispatch(Failed{Message: registerMessage(err)})
		return fmt.Errorf("failed to register: %w", err)
	}
	return m.establish(resp, registrationFailed)
}

// establish stores the token pair and the user together, or neither
func (m *Manager) establish(resp *podcast.LoginResponse, fallback string) error {
	if resp.Access == "" || resp.Refresh == "" {
		m.dispatch(Failed{Message: fallback})
		return fmt.Errorf("%w: login response without token pair", api.ErrMalformedResponse)
	}

	if err := m.tokens.SetTokens(resp.Access, resp.Refresh); err != nil {
		m.rollback()
		m.dispatch(Failed{Message: fallback})
		return fmt.Errorf("failed to store tokens: %w", err)
	}
	if err := m.dispatch(Authenticated{User: resp.User}); err != nil {
		m.rollback()
		m.dispatch(Failed{Message: fallback})
		return fmt.Errorf("failed to store user: %w", err)
	}

	m.log.Info().Str("username", resp.User.Username).Msg("signed in")
	return nil
}

func (m *Manager) rollback() {
	if err := m.tokens.ClearTokens(); err != nil {
		m.log.Error().Err(err).Msg("failed to roll back partial session")
	}
}

// Logout notifies the backend and then always ends anonymous. Backend failures
// are logged and never returned.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.auth.Logout(ctx); err != nil {
		m.log.Warn().Err(err).Msg("backend logout failed")
	}
	if err := m.tokens.ClearTokens(); err != nil {
		m.log.Error().Err(err).Msg("failed to clear tokens on logout")
	}
	if err := m.dispatch(LoggedOut{}); err != nil {
		m.log.Error().Err(err).Msg("failed to clear stored user on logout")
	}
	m.log.Info().Msg("signed out")
}

// InitializeAuth rehydrates the session from storage when both a user record and
// an access token are present. Calling it again is harmless.
func (m *Manager) InitializeAuth() {
	if m.State().IsAuthenticated {
		return
	}
	if m.tokens.AccessToken() == "" {
		return
	}

	raw, err := m.store.Get(storage.KeyUser)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.log.Warn().Err(err).Msg("could not read stored user")
		}
		return
	}

	var user podcast.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.log.Warn().Err(err).Msg("stored user is corrupt, clearing session")
		m.rollback()
		return
	}

	if err := m.dispatch(Authenticated{User: user}); err != nil {
		m.log.Error().Err(err).Msg("failed to persist restored user")
	}
}

// UpdateUser replaces the cached user, e.g. after a profile edit
func (m *Manager) UpdateUser(user podcast.User) error {
	if err := m.dispatch(UserUpdated{User: user}); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// ClearError dismisses the current error message
func (m *Manager) ClearError() {
	m.dispatch(ErrorCleared{})
}

// Expire moves to anonymous after the HTTP client tore the credentials down.
// It is registered as the client's session expiry hook.
func (m *Manager) Expire() {
	if err := m.dispatch(Expired{Message: sessionExpired}); err != nil {
		m.log.Error().Err(err).Msg("failed to clear stored user on expiry")
	}
}

// dispatch applies ev, persists the result and notifies listeners.
// Listeners run without the lock held.
func (m *Manager) dispatch(ev Event) error {
	m.mu.Lock()
	prev := m.state
	next := Reduce(prev, ev)
	m.state = next
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	err := m.persist(prev, next)

	for _, l := range listeners {
		l(next)
	}
	return err
}

func (m *Manager) persist(prev, next State) error {
	switch {
	case next.IsAuthenticated && next.User != nil:
		if prev.User != nil && *prev.User == *next.User {
			return nil
		}
		raw, err := json.Marshal(next.User)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		return m.store.Set(storage.KeyUser, string(raw))

	case prev.IsAuthenticated && !next.IsAuthenticated:
		return m.store.Remove(storage.KeyUser)
	}
	return nil
}

func loginMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message(loginFailed)
	}
	return api.UserMessage(err, loginFailed)
}

func registerMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.FirstFieldError("username", "email", "password"); msg != "" {
			return msg
		}
		return apiErr.Message(registrationFailed)
	}
	return api.UserMessage(err, registrationFailed)
}
