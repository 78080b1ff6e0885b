package storage

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/99designs/keyring"
)

// Keys shared by the session layer. Preference keys are owned by the prefs package.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// ErrNotFound is returned by Get when the key has no stored value
var ErrNotFound = errors.New("storage: key not found")

// Store is process-wide durable key/value storage. Every write replaces the whole value.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(keys ...string) error
}

// KeyringStore implements Store on top of an OS keyring
type KeyringStore struct {
	mu    sync.Mutex
	ring  keyring.Keyring
	label string
}

// NewKeyringStore wraps an opened keyring. Label prefixes item labels shown by the OS.
func NewKeyringStore(ring keyring.Keyring, label string) *KeyringStore {
	return &KeyringStore{ring: ring, label: label}
}

// NewMemoryStore returns a Store that lives only as long as the process
func NewMemoryStore() *KeyringStore {
	return NewKeyringStore(keyring.NewArrayKeyring(nil), "memory")
}

// Get returns the stored value for key
func (s *KeyringStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores value under key, replacing any previous value
func (s *KeyringStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: s.label + " " + key,
	})
	if err != nil {
		return fmt.Errorf("failed to store %q: %w", key, err)
	}
	return nil
}

// Remove deletes keys. Missing keys are not an error.
func (s *KeyringStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, key := range keys {
		err := s.ring.Remove(key)
		if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
