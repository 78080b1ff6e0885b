package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"podcast-tui/internal/storage"
)

// Theme is the user's colour preference
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Preference keys. They live next to the session keys but are owned here.
const (
	KeyTheme          = "theme"
	KeyRecentSearches = "recent_searches"
)

// Defaults
const (
	DefaultTheme      = ThemeDark
	MaxRecentSearches = 5
)

// ParseTheme validates a theme name
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light, dark or system)", s)
}

// Prefs manages user preferences in durable storage
type Prefs struct {
	mu    sync.Mutex
	store storage.Store

	// hasDark is swapped in tests
	hasDark func() bool
}

// New creates a preferences manager over store
func New(store storage.Store) *Prefs {
	return &Prefs{store: store, hasDark: lipgloss.HasDarkBackground}
}

// Theme returns the stored theme, or the default when unset or invalid
func (p *Prefs) Theme() Theme {
	raw, err := p.store.Get(KeyTheme)
	if err != nil {
		return DefaultTheme
	}
	theme, err := ParseTheme(raw)
	if err != nil {
		return DefaultTheme
	}
	return theme
}

// SetTheme stores the theme
func (p *Prefs) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := p.store.Set(KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// ToggleTheme flips between light and dark. System resolves first.
func (p *Prefs) ToggleTheme() (Theme, error) {
	next := ThemeDark
	if p.Resolve() == ThemeDark {
		next = ThemeLight
	}
	return next, p.SetTheme(next)
}

// Resolve returns the effective theme, asking the terminal when set to system
func (p *Prefs) Resolve() Theme {
	theme := p.Theme()
	if theme != ThemeSystem {
		return theme
	}
	if p.hasDark() {
		return ThemeDark
	}
	return ThemeLight
}

// RecentSearches returns the stored terms, most recent first
func (p *Prefs) RecentSearches() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recent()
}

func (p *Prefs) recent() []string {
	raw, err := p.store.Get(KeyRecentSearches)
	if err != nil {
		return nil
	}
	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		return nil
	}
	return terms
}

// AddRecentSearch moves query to the front of the list. Blank queries are ignored.
func (p *Prefs) AddRecentSearch(query string) ([]string, error) {
	query = strings.TrimSpace(query)

	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.recent()
	if query == "" {
		return current, nil
	}

	updated := make([]string, 0, MaxRecentSearches)
	updated = append(updated, query)
	for _, term := range current {
		if term != query {
			updated = append(updated, term)
		}
		if len(updated) == MaxRecentSearches {
			break
		}
	}

	raw, err := json.Marshal(updated)
	if err != nil {
		return current, fmt.Errorf("failed to encode recent searches: %w", err)
	}
	if err := p.store.Set(KeyRecentSearches, string(raw)); err != nil {
		return current, fmt.Errorf("failed to save recent searches: %w", err)
	}
	return updated, nil
}

// ClearRecentSearches forgets every stored term
func (p *Prefs) ClearRecentSearches() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Remove(KeyRecentSearches); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to clear recent searches: %w", err)
	}
	return nil
}
