package api

import (
	"context"
	"net/http"

	"podcast-tui/internal/podcast"
)

// AuthService covers registration, login, logout and the profile endpoints
type AuthService struct {
	client *Client
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and returns the new user with a token pair
func (s *AuthService) Register(ctx context.Context, req podcast.RegisterRequest) (*podcast.LoginResponse, error) {
	var out podcast.LoginResponse
	if err := s.client.doCredentials(ctx, "/auth/register/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for the user record and a token pair
func (s *AuthService) Login(ctx context.Context, username, password string) (*podcast.LoginResponse, error) {
	var out podcast.LoginResponse
	body := loginRequest{Username: username, Password: password}
	if err := s.client.doCredentials(ctx, "/auth/login/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the backend to revoke the current refresh token. With no refresh
// token there is nothing to revoke and no request is sent.
func (s *AuthService) Logout(ctx context.Context) error {
	refresh := s.client.tokens.RefreshToken()
	if refresh == "" {
		return nil
	}
	return s.client.do(ctx, http.MethodPost, "/auth/logout/", nil, refreshRequest{Refresh: refresh}, nil)
}

// Profile returns the current user
func (s *AuthService) Profile(ctx context.Context) (*podcast.User, error) {
	var out podcast.User
	if err := s.client.do(ctx, http.MethodGet, "/profile/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the editable profile fields
func (s *AuthService) UpdateProfile(ctx context.Context, user podcast.User) (*podcast.User, error) {
	var out podcast.User
	if err := s.client.do(ctx, http.MethodPut, "/profile/", nil, user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
