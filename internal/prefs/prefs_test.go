package prefs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-tui/internal/prefs"
	"podcast-tui/internal/storage"
)

func TestPrefs_ThemeDefaultsToDark(t *testing.T) {
	store := storage.NewMemoryStore()
	p := prefs.New(store)
	assert.Equal(t, prefs.ThemeDark, p.Theme())

	require.NoError(t, store.Set(prefs.KeyTheme, "neon"))
	assert.Equal(t, prefs.ThemeDark, p.Theme())
}

func TestPrefs_SetTheme(t *testing.T) {
	p := prefs.New(storage.NewMemoryStore())

	require.NoError(t, p.SetTheme(prefs.ThemeLight))
	assert.Equal(t, prefs.ThemeLight, p.Theme())

	assert.Error(t, p.SetTheme("sepia"))
	assert.Equal(t, prefs.ThemeLight, p.Theme())
}

func TestPrefs_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		theme    prefs.Theme
		dark     bool
		expected prefs.Theme
	}{
		{"light stays light", prefs.ThemeLight, true, prefs.ThemeLight},
		{"dark stays dark", prefs.ThemeDark, false, prefs.ThemeDark},
		{"system on dark terminal", prefs.ThemeSystem, true, prefs.ThemeDark},
		{"system on light terminal", prefs.ThemeSystem, false, prefs.ThemeLight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := prefs.New(storage.NewMemoryStore())
			p.SetDarkDetector(func() bool { return tt.dark })
			require.NoError(t, p.SetTheme(tt.theme))

			assert.Equal(t, tt.expected, p.Resolve())
		})
	}
}

func TestPrefs_ToggleTheme(t *testing.T) {
	p := prefs.New(storage.NewMemoryStore())

	next, err := p.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeLight, next)

	next, err = p.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeDark, next)
}

func TestParseTheme(t *testing.T) {
	theme, err := prefs.ParseTheme(" System ")
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeSystem, theme)

	_, err = prefs.ParseTheme("blue")
	assert.Error(t, err)
}

func TestPrefs_RecentSearches(t *testing.T) {
	p := prefs.New(storage.NewMemoryStore())
	assert.Empty(t, p.RecentSearches())

	for _, q := range []string{"go", "rust", "  ", "zig", "go", "python", "java", "kotlin"} {
		_, err := p.AddRecentSearch(q)
		require.NoError(t, err)
	}

	// Most recent first, no duplicates, blank ignored, capped
	assert.Equal(t, []string{"kotlin", "java", "python", "go", "zig"}, p.RecentSearches())

	got, err := p.AddRecentSearch(" zig ")
	require.NoError(t, err)
	assert.Equal(t, []string{"zig", "kotlin", "java", "python", "go"}, got)

	require.NoError(t, p.ClearRecentSearches())
	assert.Empty(t, p.RecentSearches())
	require.NoError(t, p.ClearRecentSearches())
}

func TestPrefs_RecentSearchesSurviveReopen(t *testing.T) {
	store := storage.NewMemoryStore()
	_, err := prefs.New(store).AddRecentSearch("history")
	require.NoError(t, err)

	assert.Equal(t, []string{"history"}, prefs.New(store).RecentSearches())
}
