package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const refreshPath = "/auth/refresh/"

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// refresh runs the refresh protocol. Concurrent callers share a single in-flight
// exchange so that one rotation does not invalidate another.
func (c *Client) refresh(ctx context.Context) error {
	_, err, shared := c.refreshes.Do("refresh", func() (any, error) {
		// The exchange outlives any single caller's cancellation
		return nil, c.exchangeRefreshToken(context.WithoutCancel(ctx))
	})
	if shared {
		c.log.Debug().Msg("joined in-flight token refresh")
	}
	return err
}

// exchangeRefreshToken trades the stored refresh token for a new pair. Nothing is
// written unless the response carries both tokens.
func (c *Client) exchangeRefreshToken(ctx context.Context) error {
	refresh := c.tokens.RefreshToken()
	if refresh == "" {
		return errNoRefreshToken
	}

	payload, err := json.Marshal(refreshRequest{Refresh: refresh})
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.roundTrip(req)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	if status < 200 || status >= 300 {
		return newAPIError(http.MethodPost, refreshPath, status, body)
	}

	var out refreshResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("%w: refresh: %v", ErrMalformedResponse, err)
	}
	if out.Access == "" || out.Refresh == "" {
		return fmt.Errorf("%w: refresh response is missing a token", ErrMalformedResponse)
	}

	return c.tokens.SetTokens(out.Access, out.Refresh)
}
