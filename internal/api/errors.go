package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

var (
	// ErrSessionExpired is returned when a 401 could not be recovered by a token refresh.
	// The session has already been torn down when a caller sees it.
	ErrSessionExpired = errors.New("session expired")

	// ErrMalformedResponse is returned when a success body does not have the expected shape
	ErrMalformedResponse = errors.New("malformed response")

	errNoRefreshToken = errors.New("no refresh token")
)

// APIError is a non-2xx response from the backend
type APIError struct {
	Status int
	Method string
	Path   string

	Detail string
	Err    string
	Fields map[string][]string
	Body   []byte
}

func (e *APIError) Error() string {
	msg := e.Message("")
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Message returns the server supplied detail or error text, or fallback when neither is present
func (e *APIError) Message(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != "" {
		return e.Err
	}
	return fallback
}

// FirstFieldError returns the first message of the first listed field that has one
func (e *APIError) FirstFieldError(fields ...string) string {
	for _, field := range fields {
		if msgs := e.Fields[field]; len(msgs) > 0 && msgs[0] != "" {
			return msgs[0]
		}
	}
	return ""
}

// Unauthorized reports whether the backend rejected the credentials
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// newAPIError decodes an error body. Bodies that are not JSON objects are kept raw.
func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Status: status,
		Method: method,
		Path:   path,
		Body:   body,
		Fields: map[string][]string{},
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr
	}

	for key, value := range raw {
		switch key {
		case "detail":
			apiErr.Detail = decodeMessage(value)
		case "error":
			apiErr.Err = decodeMessage(value)
		default:
			if msgs := decodeMessages(value); len(msgs) > 0 {
				apiErr.Fields[key] = msgs
			}
		}
	}
	return apiErr
}

func decodeMessage(value json.RawMessage) string {
	msgs := decodeMessages(value)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

// decodeMessages accepts either "msg" or ["msg", ...]
func decodeMessages(value json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(value, &single); err == nil {
		return []string{single}
	}
	var many []string
	if err := json.Unmarshal(value, &many); err == nil {
		return many
	}
	return nil
}

// IsTransient reports whether err is a network failure or a server side error,
// i.e. something a user may reasonably retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

// UserMessage maps any error from this package to text suitable for display
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) {
		return "Your session has expired. Please log in again."
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(""); msg != "" {
			return msg
		}
		if apiErr.Status >= http.StatusInternalServerError {
			return "The server is having trouble. Please try again."
		}
		return fallback
	}
	if IsTransient(err) {
		return "Network error. Please check your connection and try again."
	}
	return fallback
}
