package browse_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-tui/internal/podcast"
	"podcast-tui/internal/ui/components/browse"
	"podcast-tui/internal/ui/components/player"
	"podcast-tui/internal/ui/components/playlist"
)

// MockCatalog implements browse.Catalog for testing
type MockCatalog struct {
	trending    []podcast.PodcastSummary
	recent      []podcast.EpisodeSummary
	episodes    map[int64][]podcast.EpisodeSummary
	categories  []podcast.Category
	byCategory  map[int64][]podcast.PodcastSummary
	categoryErr error
	err         error
	subscribed  []int64
	unsubscribe []int64
}

func (m *MockCatalog) Trending(ctx context.Context) ([]podcast.PodcastSummary, error) {
	return m.trending, m.err
}

func (m *MockCatalog) RecentEpisodes(ctx context.Context) ([]podcast.EpisodeSummary, error) {
	return m.recent, m.err
}

func (m *MockCatalog) Categories(ctx context.Context) ([]podcast.Category, error) {
	return m.categories, m.err
}

func (m *MockCatalog) PodcastsInCategory(ctx context.Context, categoryID int64) ([]podcast.PodcastSummary, error) {
	if m.categoryErr != nil {
		return nil, m.categoryErr
	}
	return m.byCategory[categoryID], m.err
}

func (m *MockCatalog) PodcastEpisodes(ctx context.Context, podcastID int64) ([]podcast.EpisodeSummary, error) {
	return m.episodes[podcastID], m.err
}

func (m *MockCatalog) Subscribe(ctx context.Context, podcastID int64) (string, error) {
	m.subscribed = append(m.subscribed, podcastID)
	return "Subscribed", m.err
}

func (m *MockCatalog) Unsubscribe(ctx context.Context, podcastID int64) (string, error) {
	m.unsubscribe = append(m.unsubscribe, podcastID)
	return "Unsubscribed", m.err
}

func newCatalog() *MockCatalog {
	return &MockCatalog{
		trending: []podcast.PodcastSummary{
			{ID: 1, Title: "Go Time", CreatorName: "changelog"},
			{ID: 2, Title: "Cup o' Go"},
		},
		recent: []podcast.EpisodeSummary{
			{ID: 11, Title: "Generics", PodcastTitle: "Go Time", Duration: 3600},
		},
		categories: []podcast.Category{
			{ID: 5, Name: "Technology"},
			{ID: 6, Name: "Comedy"},
		},
		byCategory: map[int64][]podcast.PodcastSummary{
			5: {{ID: 3, Title: "Ship It", CategoryName: "Technology"}},
		},
		episodes: map[int64][]podcast.EpisodeSummary{
			1: {
				{ID: 11, Title: "Generics", PodcastTitle: "Go Time"},
				{ID: 12, Title: "Fuzzing", PodcastTitle: "Go Time"},
			},
		},
	}
}

func update(t *testing.T, c *browse.BrowseComponent, msg tea.Msg) (*browse.BrowseComponent, tea.Cmd) {
	t.Helper()
	updated, cmd := c.Update(msg)
	return updated.(*browse.BrowseComponent), cmd
}

func loaded(t *testing.T, catalog *MockCatalog) *browse.BrowseComponent {
	t.Helper()
	component := browse.NewBrowseComponent(catalog)
	cmd := component.Init()
	require.NotNil(t, cmd)
	component, _ = update(t, component, cmd())
	return component
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestBrowseComponent_Load(t *testing.T) {
	component := loaded(t, newCatalog())

	assert.Equal(t, browse.StateDiscover, component.GetState())
	assert.Len(t, component.GetTrending(), 2)
	assert.Len(t, component.GetRecent(), 1)
	assert.Contains(t, component.View(), "Trending podcasts")
	assert.Contains(t, component.View(), "Go Time")
}

func TestBrowseComponent_LoadError(t *testing.T) {
	catalog := newCatalog()
	catalog.err = assert.AnError
	component := loaded(t, catalog)

	assert.Equal(t, browse.StateError, component.GetState())
	assert.ErrorIs(t, component.GetError(), assert.AnError)

	// r retries
	catalog.err = nil
	component, cmd := update(t, component, key('r'))
	assert.Equal(t, browse.StateLoading, component.GetState())
	require.NotNil(t, cmd)
	component, _ = update(t, component, cmd())
	assert.Equal(t, browse.StateDiscover, component.GetState())
}

func TestBrowseComponent_NoClient(t *testing.T) {
	component := browse.NewBrowseComponent(nil)

	component, _ = update(t, component, component.Init()())

	assert.Equal(t, browse.StateError, component.GetState())
}

func TestBrowseComponent_RecentEpisodePlays(t *testing.T) {
	component := loaded(t, newCatalog())

	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, browse.SectionRecent, component.GetSection())

	_, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	play, ok := cmd().(player.PlayEpisodeMsg)
	require.True(t, ok)
	assert.Equal(t, int64(11), play.Episode.ID)
	assert.Equal(t, "Go Time", play.Episode.PodcastTitle)
}

func TestBrowseComponent_OpenPodcast(t *testing.T) {
	component := loaded(t, newCatalog())

	component, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, browse.StatePodcast, component.GetState())
	require.NotNil(t, component.GetPodcast())
	assert.Equal(t, int64(1), component.GetPodcast().ID)
	assert.Contains(t, component.View(), "Loading episodes")

	component, _ = update(t, component, cmd())
	assert.Len(t, component.GetEpisodes(), 2)

	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	play, ok := cmd().(player.PlayEpisodeMsg)
	require.True(t, ok)
	assert.Equal(t, int64(12), play.Episode.ID)

	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, browse.StateDiscover, component.GetState())
	assert.Nil(t, component.GetPodcast())
}

func TestBrowseComponent_ShowPodcastMsg(t *testing.T) {
	component := loaded(t, newCatalog())

	component, cmd := update(t, component, browse.ShowPodcastMsg{Podcast: podcast.PodcastSummary{ID: 1, Title: "Go Time"}})
	require.NotNil(t, cmd)
	assert.Equal(t, browse.StatePodcast, component.GetState())

	// Episodes for a podcast that is no longer shown are dropped
	component, _ = update(t, component, browse.PodcastEpisodesMsg{PodcastID: 2, Episodes: []podcast.EpisodeSummary{{ID: 99}}})
	assert.Empty(t, component.GetEpisodes())

	component, _ = update(t, component, cmd())
	assert.Len(t, component.GetEpisodes(), 2)
}

func TestBrowseComponent_Subscription(t *testing.T) {
	tests := []struct {
		name       string
		key        rune
		err        error
		wantNotice string
	}{
		{name: "subscribe", key: 's', wantNotice: "Subscribed"},
		{name: "unsubscribe", key: 'u', wantNotice: "Unsubscribed"},
		{name: "failure", key: 's', err: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newCatalog()
			component := loaded(t, catalog)
			component, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
			component, _ = update(t, component, cmd())

			catalog.err = tt.err
			component, cmd = update(t, component, key(tt.key))
			require.NotNil(t, cmd)
			component, _ = update(t, component, cmd())

			if tt.err != nil {
				assert.ErrorIs(t, component.GetError(), tt.err)
				assert.Empty(t, component.GetNotice())
				return
			}
			assert.NoError(t, component.GetError())
			assert.Equal(t, tt.wantNotice, component.GetNotice())
			assert.Equal(t, []int64{1}, append(catalog.subscribed, catalog.unsubscribe...))
		})
	}
}

func TestBrowseComponent_Navigation(t *testing.T) {
	component := loaded(t, newCatalog())

	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyDown})
	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(browse.PodcastEpisodesMsg)
	require.True(t, ok)
	assert.Equal(t, int64(2), msg.PodcastID)
}

func TestBrowseComponent_CategoryFilter(t *testing.T) {
	component := loaded(t, newCatalog())
	require.Len(t, component.GetCategories(), 2)
	assert.Nil(t, component.GetCategory())

	// c selects the first category and loads its podcasts
	component, cmd := update(t, component, key('c'))
	require.NotNil(t, cmd)
	require.NotNil(t, component.GetCategory())
	assert.Equal(t, "Technology", component.GetCategory().Name)
	assert.Equal(t, browse.SectionTrending, component.GetSection())

	component, _ = update(t, component, cmd())
	require.Len(t, component.GetFiltered(), 1)
	assert.Contains(t, component.View(), "Podcasts in Technology")
	assert.Contains(t, component.View(), "Ship It")

	// Enter opens a podcast from the filtered list
	component, cmd = update(t, component, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, browse.StatePodcast, component.GetState())
	assert.Equal(t, int64(3), component.GetPodcast().ID)
	component, _ = update(t, component, tea.KeyMsg{Type: tea.KeyEsc})

	// An empty category renders no podcasts
	component, cmd = update(t, component, key('c'))
	assert.Equal(t, "Comedy", component.GetCategory().Name)
	component, _ = update(t, component, cmd())
	assert.Empty(t, component.GetFiltered())
	assert.Contains(t, component.View(), "Nothing here yet")

	// and the cycle wraps back to trending
	component, cmd = update(t, component, key('c'))
	assert.Nil(t, cmd)
	assert.Nil(t, component.GetCategory())
	assert.Contains(t, component.View(), "Trending podcasts")
	assert.Contains(t, component.View(), "Go Time")
}

func TestBrowseComponent_CategoryResultsForStaleFilterIgnored(t *testing.T) {
	component := loaded(t, newCatalog())

	component, first := update(t, component, key('c'))
	require.NotNil(t, first)
	component, _ = update(t, component, key('c'))
	require.Equal(t, "Comedy", component.GetCategory().Name)

	// Technology's results arrive after the filter moved on
	component, _ = update(t, component, first())
	assert.Empty(t, component.GetFiltered())
}

func TestBrowseComponent_CategoryError(t *testing.T) {
	catalog := newCatalog()
	catalog.categoryErr = assert.AnError
	component := loaded(t, catalog)

	component, cmd := update(t, component, key('c'))
	require.NotNil(t, cmd)
	component, _ = update(t, component, cmd())

	assert.Equal(t, browse.StateDiscover, component.GetState())
	assert.ErrorIs(t, component.GetError(), assert.AnError)
}

func TestBrowseComponent_AddToPlaylist(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, c *browse.BrowseComponent) *browse.BrowseComponent
		wantID int64
	}{
		{
			name: "recent episode",
			setup: func(t *testing.T, c *browse.BrowseComponent) *browse.BrowseComponent {
				c, _ = update(t, c, tea.KeyMsg{Type: tea.KeyRight})
				return c
			},
			wantID: 11,
		},
		{
			name: "podcast episode",
			setup: func(t *testing.T, c *browse.BrowseComponent) *browse.BrowseComponent {
				c, cmd := update(t, c, tea.KeyMsg{Type: tea.KeyEnter})
				require.NotNil(t, cmd)
				c, _ = update(t, c, cmd())
				c, _ = update(t, c, tea.KeyMsg{Type: tea.KeyDown})
				return c
			},
			wantID: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			component := tt.setup(t, loaded(t, newCatalog()))

			_, cmd := update(t, component, key('a'))
			require.NotNil(t, cmd)
			msg, ok := cmd().(playlist.AddEpisodeMsg)
			require.True(t, ok)
			assert.Equal(t, tt.wantID, msg.Episode.ID)
		})
	}
}

func TestBrowseComponent_AddIgnoredOnPodcastList(t *testing.T) {
	component := loaded(t, newCatalog())

	_, cmd := update(t, component, key('a'))
	assert.Nil(t, cmd)
}
