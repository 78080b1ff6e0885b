package library_test

import (
	"context"
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-tui/internal/podcast"
	"podcast-tui/internal/ui/components/browse"
	"podcast-tui/internal/ui/components/library"
	"podcast-tui/internal/ui/components/player"
)

// MockLibrary implements library.Library for testing
type MockLibrary struct {
	subscriptions []podcast.Subscription
	playlists     map[int64]*podcast.Playlist
	mine          []podcast.PodcastSummary
	stats         *podcast.Stats
	err           error
	removed       [][2]int64
	deleted       []int64
}

func (m *MockLibrary) Subscriptions(ctx context.Context) ([]podcast.Subscription, error) {
	return m.subscriptions, m.err
}

func (m *MockLibrary) Playlists(ctx context.Context) ([]podcast.Playlist, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]int64, 0, len(m.playlists))
	for id := range m.playlists {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := []podcast.Playlist{}
	for _, id := range ids {
		summary := *m.playlists[id]
		summary.Episodes = nil
		out = append(out, summary)
	}
	return out, nil
}

func (m *MockLibrary) CreatePlaylist(ctx context.Context, name string) (*podcast.Playlist, error) {
	if m.err != nil {
		return nil, m.err
	}
	id := int64(len(m.playlists) + 1)
	m.playlists[id] = &podcast.Playlist{ID: id, Name: name}
	pl := *m.playlists[id]
	return &pl, nil
}

func (m *MockLibrary) RenamePlaylist(ctx context.Context, id int64, name string) (*podcast.Playlist, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.playlists[id].Name = name
	pl := *m.playlists[id]
	return &pl, nil
}

func (m *MockLibrary) DeletePlaylist(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	delete(m.playlists, id)
	return nil
}

func (m *MockLibrary) MyPodcasts(ctx context.Context) ([]podcast.PodcastSummary, error) {
	return m.mine, m.err
}

func (m *MockLibrary) Playlist(ctx context.Context, id int64) (*podcast.Playlist, error) {
	if m.err != nil {
		return nil, m.err
	}
	pl := *m.playlists[id]
	return &pl, nil
}

func (m *MockLibrary) RemoveFromPlaylist(ctx context.Context, playlistID, episodeID int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.removed = append(m.removed, [2]int64{playlistID, episodeID})
	pl := m.playlists[playlistID]
	kept := []podcast.Episode{}
	for _, e := range pl.Episodes {
		if e.ID != episodeID {
			kept = append(kept, e)
		}
	}
	pl.Episodes = kept
	pl.EpisodeCount = len(kept)
	return "Episode removed from playlist", nil
}

func (m *MockLibrary) Stats(ctx context.Context) (*podcast.Stats, error) {
	return m.stats, m.err
}

func newLibrary() *MockLibrary {
	return &MockLibrary{
		subscriptions: []podcast.Subscription{
			{ID: 1, Podcast: 10, PodcastTitle: "Go Time"},
		},
		playlists: map[int64]*podcast.Playlist{
			1: {ID: 1, Name: "Commute", EpisodeCount: 2, Episodes: []podcast.Episode{
				{ID: 100, Title: "Generics", AudioFile: "https://example.com/100.mp3"},
				{ID: 101, Title: "Fuzzing", AudioFile: "https://example.com/101.mp3"},
			}},
		},
		mine: []podcast.PodcastSummary{
			{ID: 30, Title: "Weekend Builds"},
		},
		stats: &podcast.Stats{PodcastsCreated: 1, PlaylistsCreated: 1, Subscriptions: 1},
	}
}

func update(t *testing.T, c *library.LibraryComponent, msg tea.Msg) (*library.LibraryComponent, tea.Cmd) {
	t.Helper()
	updated, cmd := c.Update(msg)
	return updated.(*library.LibraryComponent), cmd
}

func loaded(t *testing.T, lib *MockLibrary) *library.LibraryComponent {
	t.Helper()
	component := library.NewLibraryComponent(lib)
	cmd := component.Load()
	require.NotNil(t, cmd)
	component, _ = update(t, component, cmd())
	return component
}

func TestLibraryComponent_SignedOutByDefault(t *testing.T) {
	component := library.NewLibraryComponent(newLibrary())

	assert.Equal(t, library.StateSignedOut, component.GetState())
	assert.Contains(t, component.View(), "Log in")

	_, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestLibraryComponent_Load(t *testing.T) {
	component := loaded(t, newLibrary())

	assert.Equal(t, library.StateReady, component.GetState())
	assert.Len(t, component.GetSubscriptions(), 1)
	assert.Len(t, component.GetPlaylists(), 1)
	require.NotNil(t, component.GetStats())
	assert.Equal(t, 1, component.GetStats().Subscriptions)
	assert.Contains(t, component.View(), "Commute (2)")
}

func TestLibraryComponent_LoadError(t *testing.T) {
	lib := newLibrary()
	lib.err = assert.AnError
	component := loaded(t, lib)

	assert.Equal(t, library.StateError, component.GetState())
	assert.ErrorIs(t, component.GetError(), assert.AnError)
}

func TestLibraryComponent_ResetDropsResultsInFlight(t *testing.T) {
	component := library.NewLibraryComponent(newLibrary())
	cmd := component.Load()

	component.Reset()
	component, _ = update(t, component, cmd())

	assert.Equal(t, library.StateSignedOut, component.GetState())
	assert.Empty(t, component.GetSubscriptions())
}

func TestLibraryComponent_SubscriptionOpensPodcast(t *testing.T) {
	component := loaded(t, newLibrary())

	_, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	show, ok := cmd().(browse.ShowPodcastMsg)
	require.True(t, ok)
	assert.Equal(t, int64(10), show.Podcast.ID)
	assert.Equal(t, "Go Time", show.Podcast.Title)
}

func TestLibraryComponent_Playlist(t *testing.T) {
	lib := newLibrary()
	component := loaded(t, lib)

	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, library.SectionPlaylists, component.GetSection())

	component, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, library.StatePlaylist, component.GetState())

	component, _ = update(t, component, cmd())
	require.NotNil(t, component.GetPlaylist())
	assert.Len(t, component.GetPlaylist().Episodes, 2)

	// Enter plays the detail episode, media URL included
	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	play, ok := cmd().(player.PlayEpisodeMsg)
	require.True(t, ok)
	assert.Equal(t, int64(101), play.Episode.ID)
	assert.Equal(t, "https://example.com/101.mp3", play.Episode.MediaURL())

	// d removes the selected episode and reloads the playlist
	component, cmd = update(t, component, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.NotNil(t, cmd)
	component, cmd = update(t, component, cmd())
	assert.Equal(t, "Episode removed from playlist", component.GetNotice())
	require.NotNil(t, cmd)
	component, _ = update(t, component, cmd())

	assert.Equal(t, [][2]int64{{1, 101}}, lib.removed)
	assert.Len(t, component.GetPlaylist().Episodes, 1)

	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, library.StateReady, component.GetState())
}

func TestLibraryComponent_RemoveFailure(t *testing.T) {
	lib := newLibrary()
	component := loaded(t, lib)
	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyRight})
	component, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	component, _ = update(t, component, cmd())

	lib.err = assert.AnError
	component, cmd = update(t, component, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	component, cmd = update(t, component, cmd())

	assert.Nil(t, cmd)
	assert.ErrorIs(t, component.GetError(), assert.AnError)
	assert.Len(t, component.GetPlaylist().Episodes, 2)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle runs a save command and the library reload it triggers
func settle(t *testing.T, c *library.LibraryComponent, cmd tea.Cmd) *library.LibraryComponent {
	t.Helper()
	require.NotNil(t, cmd)
	c, reload := update(t, c, cmd())
	if reload != nil {
		c, _ = update(t, c, reload())
	}
	return c
}

func TestLibraryComponent_MyPodcasts(t *testing.T) {
	component := loaded(t, newLibrary())
	require.Len(t, component.GetMyPodcasts(), 1)

	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyRight})
	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyRight})
	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, library.SectionMine, component.GetSection())
	assert.Contains(t, component.View(), "Weekend Builds")

	_, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	show, ok := cmd().(browse.ShowPodcastMsg)
	require.True(t, ok)
	assert.Equal(t, int64(30), show.Podcast.ID)
}

func TestLibraryComponent_CreatePlaylist(t *testing.T) {
	lib := newLibrary()
	component := loaded(t, lib)

	component, _ = update(t, component, runes("n"))
	assert.Equal(t, library.StateEditing, component.GetState())
	assert.Equal(t, library.SectionPlaylists, component.GetSection())
	assert.True(t, component.CapturesText())

	component, _ = update(t, component, runes("Deep"))
	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeySpace})
	component, _ = update(t, component, runes("dives"))
	component, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	component = settle(t, component, cmd)

	assert.Equal(t, library.StateReady, component.GetState())
	assert.Equal(t, `Created playlist "Deep dives"`, component.GetNotice())
	require.Len(t, component.GetPlaylists(), 2)
	assert.Equal(t, "Deep dives", component.GetPlaylists()[1].Name)
	assert.False(t, component.CapturesText())
}

func TestLibraryComponent_RenamePlaylist(t *testing.T) {
	lib := newLibrary()
	component := loaded(t, lib)

	// e only applies to the playlists list
	component, _ = update(t, component, runes("e"))
	assert.Equal(t, library.StateReady, component.GetState())

	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyRight})
	component, _ = update(t, component, runes("e"))
	require.Equal(t, library.StateEditing, component.GetState())
	assert.Equal(t, "Commute", component.GetName())

	for range "Commute" {
		component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	component, _ = update(t, component, runes("Gym"))
	component, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	component = settle(t, component, cmd)

	assert.Equal(t, `Renamed "Commute" to "Gym"`, component.GetNotice())
	assert.Equal(t, "Gym", component.GetPlaylists()[0].Name)
}

func TestLibraryComponent_PlaylistNameRequired(t *testing.T) {
	component := loaded(t, newLibrary())

	component, _ = update(t, component, runes("n"))
	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeySpace})
	component, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, component.GetError(), library.ErrNameRequired)
	assert.Equal(t, library.StateEditing, component.GetState())

	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, library.StateReady, component.GetState())
	assert.NoError(t, component.GetError())
}

func TestLibraryComponent_DeletePlaylist(t *testing.T) {
	tests := []struct {
		name        string
		answer      tea.KeyMsg
		wantDeleted []int64
		wantCount   int
	}{
		{name: "confirmed", answer: runes("y"), wantDeleted: []int64{1}, wantCount: 0},
		{name: "declined", answer: runes("n"), wantCount: 1},
		{name: "escaped", answer: tea.KeyMsg{Type: tea.KeyEsc}, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := newLibrary()
			component := loaded(t, lib)
			component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyRight})

			component, _ = update(t, component, runes("x"))
			require.Equal(t, library.StateConfirmDelete, component.GetState())
			assert.Contains(t, component.View(), `Delete playlist "Commute"?`)

			component, cmd := update(t, component, tt.answer)
			if cmd != nil {
				component = settle(t, component, cmd)
				assert.Equal(t, `Deleted playlist "Commute"`, component.GetNotice())
			}

			assert.Equal(t, library.StateReady, component.GetState())
			assert.Equal(t, tt.wantDeleted, lib.deleted)
			assert.Len(t, component.GetPlaylists(), tt.wantCount)
		})
	}
}

func TestLibraryComponent_PlaylistSaveFailure(t *testing.T) {
	lib := newLibrary()
	component := loaded(t, lib)
	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyRight})

	lib.err = assert.AnError
	component, _ = update(t, component, runes("x"))
	component, cmd := update(t, component, runes("y"))
	component = settle(t, component, cmd)

	assert.Equal(t, library.StateReady, component.GetState())
	assert.ErrorIs(t, component.GetError(), assert.AnError)
	assert.Empty(t, component.GetNotice())
	assert.Len(t, component.GetPlaylists(), 1)
}
