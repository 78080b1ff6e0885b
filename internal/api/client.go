package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const requestIDHeader = "X-Request-ID"

// Client performs authenticated requests against the podcast backend and recovers
// from access token expiry at most once per request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenStore
	refreshes  singleflight.Group
	log        zerolog.Logger

	hooksMu   sync.RWMutex
	onExpired []func()

	// Resource families
	Auth          *AuthService
	Categories    *CategoriesService
	Podcasts      *PodcastsService
	Episodes      *EpisodesService
	Playlists     *PlaylistsService
	Subscriptions *SubscriptionsService
	Search        *SearchService
	Stats         *StatsService
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of the default http.Client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, tokens *TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "api").Logger()

	c.Auth = &AuthService{client: c}
	c.Categories = &CategoriesService{client: c}
	c.Podcasts = &PodcastsService{client: c}
	c.Episodes = &EpisodesService{client: c}
	c.Playlists = &PlaylistsService{client: c}
	c.Subscriptions = &SubscriptionsService{client: c}
	c.Search = &SearchService{client: c}
	c.Stats = &StatsService{client: c}
	return c
}

// Tokens returns the store backing this client
func (c *Client) Tokens() *TokenStore {
	return c.tokens
}

// OnSessionExpired registers fn to run after a failed refresh has torn the session down
func (c *Client) OnSessionExpired(fn func()) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.onExpired = append(c.onExpired, fn)
}

// attempt is one logical request. It is rebuilt into a fresh *http.Request for
// every send so that retry bookkeeping never lives on the request itself.
type attempt struct {
	id      string
	method  string
	path    string
	query   url.Values
	body    []byte
	retried bool
	// noRefresh marks credential exchanges, where a 401 means bad credentials
	noRefresh bool
}

func newAttempt(method, path string, query url.Values, in any) (*attempt, error) {
	a := &attempt{
		id:     uuid.NewString(),
		method: method,
		path:   path,
		query:  query,
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		a.body = body
	}
	return a, nil
}

func (a *attempt) request(ctx context.Context, baseURL string) (*http.Request, error) {
	target := baseURL + a.path
	if len(a.query) > 0 {
		target += "?" + a.query.Encode()
	}

	var body io.Reader
	if a.body != nil {
		body = bytes.NewReader(a.body)
	}
	req, err := http.NewRequestWithContext(ctx, a.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, a.id)
	if a.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends in as the JSON body and decodes the response into out. Either may be nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	a, err := newAttempt(method, path, query, in)
	if err != nil {
		return err
	}
	return c.run(ctx, a, out)
}

// doCredentials is do for login and registration. An unauthorized response is
// returned as is and never touches the stored session.
func (c *Client) doCredentials(ctx context.Context, path string, in, out any) error {
	a, err := newAttempt(http.MethodPost, path, nil, in)
	if err != nil {
		return err
	}
	a.noRefresh = true
	return c.run(ctx, a, out)
}

func (c *Client) run(ctx context.Context, a *attempt, out any) error {
	method, path := a.method, a.path

	body, err := c.send(ctx, a)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.log.Warn().Err(err).Str("request_id", a.id).Str("path", path).Msg("unexpected response shape")
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, a *attempt) ([]byte, error) {
	for {
		req, err := a.request(ctx, c.baseURL)
		if err != nil {
			return nil, err
		}
		used := c.tokens.authorize(req)

		status, body, err := c.roundTrip(req)
		if err != nil {
			return nil, fmt.Errorf("failed to %s %s: %w", a.method, a.path, err)
		}

		if status == http.StatusUnauthorized && !a.retried && !a.noRefresh {
			a.retried = true

			// Another request already rotated the pair since this one was sent
			if current := c.tokens.AccessToken(); current != "" && current != used {
				c.log.Debug().Str("request_id", a.id).Msg("token rotated concurrently, resending")
				continue
			}

			if err := c.refresh(ctx); err != nil {
				c.log.Info().Err(err).Str("request_id", a.id).Msg("token refresh failed, ending session")
				c.teardown()
				return nil, fmt.Errorf("%w: %w", ErrSessionExpired, newAPIError(a.method, a.path, status, body))
			}
			c.log.Debug().Str("request_id", a.id).Msg("token refreshed, resending")
			continue
		}

		if status < 200 || status >= 300 {
			return nil, newAPIError(a.method, a.path, status, body)
		}
		return body, nil
	}
}

func (c *Client) roundTrip(req *http.Request) (int, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("request failed")
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")
	return resp.StatusCode, body, nil
}

// teardown clears every credential and notifies listeners. It is safe to run more than once.
func (c *Client) teardown() {
	if err := c.tokens.ClearTokens(); err != nil {
		c.log.Error().Err(err).Msg("failed to clear tokens")
	}

	c.hooksMu.RLock()
	hooks := make([]func(), len(c.onExpired))
	copy(hooks, c.onExpired)
	c.hooksMu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}
