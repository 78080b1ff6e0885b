package playlist_test

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-tui/internal/podcast"
	"podcast-tui/internal/ui/components/playlist"
)

// MockStore implements playlist.Store for testing
type MockStore struct {
	playlists []podcast.Playlist
	listErr   error
	createErr error
	addErr    error

	created []string
	added   [][2]int64
}

func (m *MockStore) Playlists(ctx context.Context) ([]podcast.Playlist, error) {
	return m.playlists, m.listErr
}

func (m *MockStore) CreatePlaylist(ctx context.Context, name string) (*podcast.Playlist, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, name)
	return &podcast.Playlist{ID: 99, Name: name}, nil
}

func (m *MockStore) AddToPlaylist(ctx context.Context, playlistID, episodeID int64) (string, error) {
	if m.addErr != nil {
		return "", m.addErr
	}
	m.added = append(m.added, [2]int64{playlistID, episodeID})
	return "Episode added to playlist", nil
}

func newStore() *MockStore {
	return &MockStore{
		playlists: []podcast.Playlist{
			{ID: 1, Name: "Commute", EpisodeCount: 3},
			{ID: 2, Name: "Later", EpisodeCount: 0},
		},
	}
}

var episode = podcast.Episode{ID: 42, Title: "Pilot"}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// run feeds cmd's message back into the picker and returns the next command
func run(t *testing.T, p *playlist.PickerComponent, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := p.Update(cmd())
	return next
}

func openPicker(t *testing.T, store *MockStore) *playlist.PickerComponent {
	t.Helper()
	p := playlist.NewPickerComponent(store)
	assert.Nil(t, run(t, p, p.Open(episode)))
	require.Equal(t, playlist.StateChoosing, p.GetState())
	return p
}

func TestPickerComponent_Open(t *testing.T) {
	store := newStore()
	p := openPicker(t, store)

	assert.Equal(t, episode, p.GetEpisode())
	assert.Len(t, p.GetPlaylists(), 2)
	assert.Equal(t, 0, p.GetSelectedIndex())
	assert.NoError(t, p.GetError())
	assert.Contains(t, p.View(), "Commute")
	assert.Contains(t, p.View(), "+ New playlist")
}

func TestPickerComponent_OpenFailure(t *testing.T) {
	store := newStore()
	store.listErr = errors.New("Could not load playlists")
	p := openPicker(t, store)

	assert.EqualError(t, p.GetError(), "Could not load playlists")
	assert.Contains(t, p.View(), "+ New playlist")
}

func TestPickerComponent_IgnoresPlaylistsForAnotherEpisode(t *testing.T) {
	p := playlist.NewPickerComponent(newStore())
	p.Open(episode)

	p.Update(playlist.PlaylistsLoadedMsg{EpisodeID: 7, Playlists: []podcast.Playlist{{ID: 5}}})
	assert.Equal(t, playlist.StateLoading, p.GetState())
}

func TestPickerComponent_AddToExisting(t *testing.T) {
	store := newStore()
	p := openPicker(t, store)

	p.Update(key(tea.KeyDown))
	_, cmd := p.Update(key(tea.KeyEnter))
	assert.Equal(t, playlist.StateSaving, p.GetState())

	closeCmd := run(t, p, cmd)
	assert.Equal(t, [][2]int64{{2, 42}}, store.added)
	assert.Equal(t, playlist.StateClosed, p.GetState())

	require.NotNil(t, closeCmd)
	closed, ok := closeCmd().(playlist.ClosedMsg)
	require.True(t, ok)
	assert.Equal(t, "Episode added to playlist (Later)", closed.Notice)
}

func TestPickerComponent_AddFailureKeepsPickerOpen(t *testing.T) {
	store := newStore()
	store.addErr = errors.New("Episode already in playlist")
	p := openPicker(t, store)

	_, cmd := p.Update(key(tea.KeyEnter))
	assert.Nil(t, run(t, p, cmd))

	assert.Equal(t, playlist.StateChoosing, p.GetState())
	assert.EqualError(t, p.GetError(), "Episode already in playlist")
}

func TestPickerComponent_CreateAndAdd(t *testing.T) {
	tests := []struct {
		name  string
		enter func(p *playlist.PickerComponent)
	}{
		{
			name: "new playlist row",
			enter: func(p *playlist.PickerComponent) {
				p.Update(key(tea.KeyDown))
				p.Update(key(tea.KeyDown))
				p.Update(key(tea.KeyDown))
				p.Update(key(tea.KeyEnter))
			},
		},
		{
			name: "n shortcut",
			enter: func(p *playlist.PickerComponent) {
				p.Update(runes("n"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			p := openPicker(t, store)

			tt.enter(p)
			require.Equal(t, playlist.StateNaming, p.GetState())
			assert.True(t, p.CapturesText())

			p.Update(runes("Road"))
			p.Update(key(tea.KeySpace))
			p.Update(runes("tripx"))
			p.Update(key(tea.KeyBackspace))
			assert.Equal(t, "Road trip", p.GetName())

			_, cmd := p.Update(key(tea.KeyEnter))
			closeCmd := run(t, p, cmd)

			assert.Equal(t, []string{"Road trip"}, store.created)
			assert.Equal(t, [][2]int64{{99, 42}}, store.added)
			require.NotNil(t, closeCmd)
			assert.Equal(t, playlist.ClosedMsg{Notice: `Created "Road trip" and added the episode`}, closeCmd())
		})
	}
}

func TestPickerComponent_NameRequired(t *testing.T) {
	store := newStore()
	p := openPicker(t, store)

	p.Update(runes("n"))
	p.Update(key(tea.KeySpace))
	_, cmd := p.Update(key(tea.KeyEnter))

	assert.Nil(t, cmd)
	assert.ErrorIs(t, p.GetError(), playlist.ErrNameRequired)
	assert.Equal(t, playlist.StateNaming, p.GetState())
	assert.Empty(t, store.created)
}

func TestPickerComponent_CreateFailure(t *testing.T) {
	store := newStore()
	store.createErr = errors.New("Could not create playlist")
	p := openPicker(t, store)

	p.Update(runes("n"))
	p.Update(runes("Mix"))
	_, cmd := p.Update(key(tea.KeyEnter))
	assert.Nil(t, run(t, p, cmd))

	assert.EqualError(t, p.GetError(), "Could not create playlist")
	assert.Equal(t, playlist.StateChoosing, p.GetState())
	assert.Empty(t, store.added)
}

func TestPickerComponent_Cancel(t *testing.T) {
	p := openPicker(t, newStore())

	p.Update(runes("n"))
	p.Update(runes("abc"))
	p.Update(key(tea.KeyEsc))
	assert.Equal(t, playlist.StateChoosing, p.GetState())
	assert.False(t, p.CapturesText())

	_, cmd := p.Update(key(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.Equal(t, playlist.ClosedMsg{}, cmd())
	assert.Equal(t, playlist.StateClosed, p.GetState())
}

func TestPickerComponent_NoStore(t *testing.T) {
	p := playlist.NewPickerComponent(nil)

	assert.Nil(t, p.Open(episode))
	assert.Equal(t, playlist.StateChoosing, p.GetState())
	assert.Error(t, p.GetError())
}
