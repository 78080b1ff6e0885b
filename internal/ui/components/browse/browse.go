package browse

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"podcast-tui/internal/podcast"
	"podcast-tui/internal/ui/components/player"
	"podcast-tui/internal/ui/components/playlist"
	"podcast-tui/internal/ui/styles"
)

// State represents the current state of the browse component
type State int

const (
	StateLoading State = iota
	StateDiscover
	StatePodcast
	StateError
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateDiscover:
		return "discover"
	case StatePodcast:
		return "podcast"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Section is one of the two discover lists
type Section int

const (
	SectionTrending Section = iota
	SectionRecent
)

// Catalog is the read side of the backend the discover view needs
type Catalog interface {
	Trending(ctx context.Context) ([]podcast.PodcastSummary, error)
	RecentEpisodes(ctx context.Context) ([]podcast.EpisodeSummary, error)
	Categories(ctx context.Context) ([]podcast.Category, error)
	PodcastsInCategory(ctx context.Context, categoryID int64) ([]podcast.PodcastSummary, error)
	PodcastEpisodes(ctx context.Context, podcastID int64) ([]podcast.EpisodeSummary, error)
	Subscribe(ctx context.Context, podcastID int64) (string, error)
	Unsubscribe(ctx context.Context, podcastID int64) (string, error)
}

// ShowPodcastMsg opens a podcast's episode list
type ShowPodcastMsg struct {
	Podcast podcast.PodcastSummary
}

// DiscoverLoadedMsg carries the trending podcasts, recent episodes and categories
type DiscoverLoadedMsg struct {
	Trending   []podcast.PodcastSummary
	Recent     []podcast.EpisodeSummary
	Categories []podcast.Category
	Error      error
}

// CategoryPodcastsMsg carries the podcasts of one category
type CategoryPodcastsMsg struct {
	CategoryID int64
	Podcasts   []podcast.PodcastSummary
	Error      error
}

// PodcastEpisodesMsg carries the episodes of one podcast
type PodcastEpisodesMsg struct {
	PodcastID int64
	Episodes  []podcast.EpisodeSummary
	Error     error
}

// SubscriptionChangedMsg reports a subscribe or unsubscribe result
type SubscriptionChangedMsg struct {
	PodcastID int64
	Message   string
	Error     error
}

// BrowseComponent renders the Discover tab
type BrowseComponent struct {
	width  int
	height int

	state    State
	section  Section
	trending []podcast.PodcastSummary
	recent   []podcast.EpisodeSummary
	selected [2]int

	// category indexes categories; zero means no filter
	categories      []podcast.Category
	category        int
	filtered        []podcast.PodcastSummary
	loadingCategory bool

	podcast         *podcast.PodcastSummary
	episodes        []podcast.EpisodeSummary
	episodeIndex    int
	loadingEpisodes bool

	notice string
	error  error

	catalog Catalog
}

// NewBrowseComponent creates a new browse component
func NewBrowseComponent(catalog Catalog) *BrowseComponent {
	return &BrowseComponent{
		width:   80,
		height:  20,
		state:   StateLoading,
		catalog: catalog,
	}
}

// Init loads the discover lists
func (b *BrowseComponent) Init() tea.Cmd {
	return b.loadDiscover()
}

// Update handles messages and updates the browse component
func (b *BrowseComponent) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch b.state {
		case StateDiscover:
			return b.handleDiscoverKeys(msg)
		case StatePodcast:
			return b.handlePodcastKeys(msg)
		case StateError:
			if msg.String() == "r" {
				b.state = StateLoading
				return b, b.loadDiscover()
			}
		}
		return b, nil

	case DiscoverLoadedMsg:
		if msg.Error != nil {
			b.state = StateError
			b.error = msg.Error
			return b, nil
		}
		b.trending = msg.Trending
		b.recent = msg.Recent
		b.categories = msg.Categories
		b.category = 0
		b.filtered = nil
		b.loadingCategory = false
		b.selected = [2]int{}
		b.error = nil
		if b.state != StatePodcast {
			b.state = StateDiscover
		}
		return b, nil

	case CategoryPodcastsMsg:
		current := b.currentCategory()
		if current == nil || current.ID != msg.CategoryID {
			return b, nil
		}
		b.loadingCategory = false
		if msg.Error != nil {
			b.error = msg.Error
			return b, nil
		}
		b.filtered = msg.Podcasts
		b.selected[SectionTrending] = 0
		return b, nil

	case ShowPodcastMsg:
		return b, b.openPodcast(msg.Podcast)

	case PodcastEpisodesMsg:
		if b.podcast == nil || b.podcast.ID != msg.PodcastID {
			return b, nil
		}
		b.loadingEpisodes = false
		if msg.Error != nil {
			b.error = msg.Error
			return b, nil
		}
		b.episodes = msg.Episodes
		b.episodeIndex = 0
		return b, nil

	case SubscriptionChangedMsg:
		if msg.Error != nil {
			b.notice = ""
			b.error = msg.Error
		} else {
			b.error = nil
			b.notice = msg.Message
		}
		return b, nil

	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
	}

	return b, nil
}

func (b *BrowseComponent) handleDiscoverKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyLeft:
		b.section = SectionTrending
	case tea.KeyRight:
		b.section = SectionRecent
	case tea.KeyUp:
		if b.selected[b.section] > 0 {
			b.selected[b.section]--
		}
	case tea.KeyDown:
		if b.selected[b.section] < b.sectionLen()-1 {
			b.selected[b.section]++
		}
	case tea.KeyEnter:
		return b, b.chooseDiscover()
	case tea.KeyRunes:
		switch msg.String() {
		case "r":
			b.state = StateLoading
			return b, b.loadDiscover()
		case "c":
			return b, b.nextCategory()
		case "a":
			i := b.selected[SectionRecent]
			if b.section == SectionRecent && i < len(b.recent) {
				return b, addToPlaylistCmd(b.recent[i])
			}
		}
	}
	return b, nil
}

// podcasts is the left column: trending, or the selected category
func (b *BrowseComponent) podcasts() []podcast.PodcastSummary {
	if b.category > 0 {
		return b.filtered
	}
	return b.trending
}

func (b *BrowseComponent) currentCategory() *podcast.Category {
	if b.category == 0 || b.category > len(b.categories) {
		return nil
	}
	return &b.categories[b.category-1]
}

// nextCategory cycles the filter through every category and back to none
func (b *BrowseComponent) nextCategory() tea.Cmd {
	if len(b.categories) == 0 {
		return nil
	}
	b.category = (b.category + 1) % (len(b.categories) + 1)
	b.section = SectionTrending
	b.selected[SectionTrending] = 0
	b.filtered = nil
	b.error = nil

	current := b.currentCategory()
	if current == nil || b.catalog == nil {
		b.loadingCategory = false
		return nil
	}
	b.loadingCategory = true
	catalog, id := b.catalog, current.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		podcasts, err := catalog.PodcastsInCategory(ctx, id)
		return CategoryPodcastsMsg{CategoryID: id, Podcasts: podcasts, Error: err}
	}
}

func (b *BrowseComponent) sectionLen() int {
	if b.section == SectionTrending {
		return len(b.podcasts())
	}
	return len(b.recent)
}

func (b *BrowseComponent) chooseDiscover() tea.Cmd {
	i := b.selected[b.section]
	if b.section == SectionTrending {
		podcasts := b.podcasts()
		if i >= len(podcasts) {
			return nil
		}
		return b.openPodcast(podcasts[i])
	}
	if i >= len(b.recent) {
		return nil
	}
	return playCmd(b.recent[i])
}

func (b *BrowseComponent) handlePodcastKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		b.closePodcast()
	case tea.KeyUp:
		if b.episodeIndex > 0 {
			b.episodeIndex--
		}
	case tea.KeyDown:
		if b.episodeIndex < len(b.episodes)-1 {
			b.episodeIndex++
		}
	case tea.KeyEnter:
		if b.episodeIndex < len(b.episodes) {
			return b, playCmd(b.episodes[b.episodeIndex])
		}
	case tea.KeyRunes:
		switch msg.String() {
		case "s":
			return b, b.changeSubscription(true)
		case "u":
			return b, b.changeSubscription(false)
		case "a":
			if b.episodeIndex < len(b.episodes) {
				return b, addToPlaylistCmd(b.episodes[b.episodeIndex])
			}
		}
	}
	return b, nil
}

func playCmd(summary podcast.EpisodeSummary) tea.Cmd {
	ep := summary.Episode()
	return func() tea.Msg { return player.PlayEpisodeMsg{Episode: ep} }
}

func addToPlaylistCmd(summary podcast.EpisodeSummary) tea.Cmd {
	ep := summary.Episode()
	return func() tea.Msg { return playlist.AddEpisodeMsg{Episode: ep} }
}

func (b *BrowseComponent) openPodcast(p podcast.PodcastSummary) tea.Cmd {
	b.podcast = &p
	b.episodes = nil
	b.episodeIndex = 0
	b.loadingEpisodes = true
	b.notice = ""
	b.error = nil
	b.state = StatePodcast

	if b.catalog == nil {
		return nil
	}
	catalog, id := b.catalog, p.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		episodes, err := catalog.PodcastEpisodes(ctx, id)
		return PodcastEpisodesMsg{PodcastID: id, Episodes: episodes, Error: err}
	}
}

func (b *BrowseComponent) closePodcast() {
	b.podcast = nil
	b.episodes = nil
	b.notice = ""
	b.error = nil
	b.state = StateDiscover
}

func (b *BrowseComponent) changeSubscription(subscribe bool) tea.Cmd {
	if b.catalog == nil || b.podcast == nil {
		return nil
	}
	catalog, id := b.catalog, b.podcast.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			message string
			err     error
		)
		if subscribe {
			message, err = catalog.Subscribe(ctx, id)
		} else {
			message, err = catalog.Unsubscribe(ctx, id)
		}
		return SubscriptionChangedMsg{PodcastID: id, Message: message, Error: err}
	}
}

func (b *BrowseComponent) loadDiscover() tea.Cmd {
	if b.catalog == nil {
		return func() tea.Msg {
			return DiscoverLoadedMsg{Error: fmt.Errorf("no API client available")}
		}
	}
	catalog := b.catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		trending, err := catalog.Trending(ctx)
		if err != nil {
			return DiscoverLoadedMsg{Error: err}
		}
		recent, err := catalog.RecentEpisodes(ctx)
		if err != nil {
			return DiscoverLoadedMsg{Error: err}
		}
		categories, err := catalog.Categories(ctx)
		if err != nil {
			return DiscoverLoadedMsg{Error: err}
		}
		return DiscoverLoadedMsg{Trending: trending, Recent: recent, Categories: categories}
	}
}

// View renders the browse component
func (b *BrowseComponent) View() string {
	switch b.state {
	case StateLoading:
		return styles.LoadingStatusStyle.Render("Loading podcasts...")
	case StateDiscover:
		return b.renderDiscover()
	case StatePodcast:
		return b.renderPodcast()
	case StateError:
		return lipgloss.JoinVertical(
			lipgloss.Left,
			styles.ErrorStatusStyle.Render("Could not load podcasts"),
			styles.ErrorStatusStyle.Render(b.error.Error()),
			styles.HelpStyle.Render("r: Retry"),
		)
	default:
		return "Unknown state"
	}
}

func (b *BrowseComponent) renderDiscover() string {
	half := b.width/2 - 2
	rows := b.height - 10

	podcasts := b.podcasts()
	trending := make([]string, len(podcasts))
	for i, p := range podcasts {
		trending[i] = styles.TruncateText(p.Title, half-6)
	}
	title := "Trending podcasts"
	if c := b.currentCategory(); c != nil {
		title = "Podcasts in " + c.Name
	}
	recent := make([]string, len(b.recent))
	for i, e := range b.recent {
		recent[i] = styles.TruncateText(fmt.Sprintf("%s (%s)", e.Title, e.DurationString()), half-6)
	}

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		b.renderColumn(title, trending, SectionTrending, half, rows),
		b.renderColumn("Recent episodes", recent, SectionRecent, half, rows),
	)

	parts := []string{columns}
	if b.loadingCategory {
		parts = append(parts, styles.LoadingStatusStyle.Render("Loading podcasts..."))
	}
	if b.error != nil {
		parts = append(parts, styles.ErrorStatusStyle.Render(b.error.Error()))
	}
	help := "←→: Switch list • ↑↓: Navigate • Enter: Open podcast / play episode • a: Add to playlist • r: Refresh"
	if len(b.categories) > 0 {
		help += " • c: Next category"
	}
	parts = append(parts, styles.HelpStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *BrowseComponent) renderColumn(title string, items []string, section Section, width, rows int) string {
	heading := styles.SectionTitleStyle.Render(title)
	if section != b.section {
		heading = styles.StatusStyle.Render(title)
	}

	body := styles.StatusStyle.Render("Nothing here yet")
	if len(items) > 0 {
		selected := b.selected[section]
		if section != b.section {
			selected = -1
		}
		body = styles.RenderList(items, selected, rows)
	}

	return styles.ListStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, heading, "", body))
}

func (b *BrowseComponent) renderPodcast() string {
	lines := []string{
		styles.EpisodeTitleStyle.Render(b.podcast.Title),
		styles.PodcastNameStyle.Render(b.podcast.CreatorName),
	}

	switch {
	case b.loadingEpisodes:
		lines = append(lines, styles.LoadingStatusStyle.Render("Loading episodes..."))
	case len(b.episodes) == 0:
		lines = append(lines, styles.StatusStyle.Render("No episodes"))
	default:
		items := make([]string, len(b.episodes))
		for i, e := range b.episodes {
			items[i] = fmt.Sprintf("%-50s %s", styles.TruncateText(e.Title, 50), e.DurationString())
		}
		lines = append(lines, styles.RenderList(items, b.episodeIndex, b.height-10))
	}

	if b.notice != "" {
		lines = append(lines, styles.SuccessStatusStyle.Render(b.notice))
	}
	if b.error != nil {
		lines = append(lines, styles.ErrorStatusStyle.Render(b.error.Error()))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ListStyle.Width(b.width-4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
		styles.HelpStyle.Render("↑↓: Navigate • Enter: Play • a: Add to playlist • s: Subscribe • u: Unsubscribe • Esc: Back"),
	)
}

// Getter methods for testing and integration
func (b *BrowseComponent) GetState() State {
	return b.state
}

func (b *BrowseComponent) GetSection() Section {
	return b.section
}

func (b *BrowseComponent) GetPodcast() *podcast.PodcastSummary {
	return b.podcast
}

func (b *BrowseComponent) GetEpisodes() []podcast.EpisodeSummary {
	return b.episodes
}

func (b *BrowseComponent) GetTrending() []podcast.PodcastSummary {
	return b.trending
}

func (b *BrowseComponent) GetRecent() []podcast.EpisodeSummary {
	return b.recent
}

func (b *BrowseComponent) GetCategories() []podcast.Category {
	return b.categories
}

// GetCategory returns the active category filter, or nil
func (b *BrowseComponent) GetCategory() *podcast.Category {
	return b.currentCategory()
}

func (b *BrowseComponent) GetFiltered() []podcast.PodcastSummary {
	return b.filtered
}

func (b *BrowseComponent) GetNotice() string {
	return b.notice
}

func (b *BrowseComponent) GetError() error {
	return b.error
}

func (b *BrowseComponent) SetSize(width, height int) {
	b.width = width
	b.height = height
}
