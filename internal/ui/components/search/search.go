package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"podcast-tui/internal/podcast"
	"podcast-tui/internal/ui/components/browse"
	"podcast-tui/internal/ui/components/player"
	"podcast-tui/internal/ui/components/playlist"
	"podcast-tui/internal/ui/styles"
)

// State represents the current state of the search component
type State int

const (
	StateInput State = iota
	StateSearching
	StateResults
	StateError
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateInput:
		return "input"
	case StateSearching:
		return "searching"
	case StateResults:
		return "results"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Searcher runs a combined podcast and episode search
type Searcher interface {
	Search(ctx context.Context, query string) (*podcast.SearchResult, error)
}

// History stores recent search terms. *prefs.Prefs satisfies it.
type History interface {
	RecentSearches() []string
	AddRecentSearch(query string) ([]string, error)
	ClearRecentSearches() error
}

// SearchResultsMsg represents search results message
type SearchResultsMsg struct {
	Query   string
	Results *podcast.SearchResult
	Error   error
}

// result is one selectable row: an episode or a podcast
type result struct {
	episode *podcast.EpisodeSummary
	podcast *podcast.PodcastSummary
}

func (r result) String() string {
	if r.episode != nil {
		return fmt.Sprintf("%-45s %-25s %s",
			styles.TruncateText(r.episode.Title, 45),
			styles.TruncateText(r.episode.PodcastTitle, 25),
			r.episode.DurationString(),
		)
	}
	return fmt.Sprintf("[podcast] %-35s %s",
		styles.TruncateText(r.podcast.Title, 35),
		styles.TruncateText(r.podcast.CreatorName, 25),
	)
}

// SearchComponent represents the search view component
type SearchComponent struct {
	width  int
	height int

	state         State
	query         string
	lastQuery     string
	results       []result
	selectedIndex int
	recent        []string
	error         error

	searcher Searcher
	history  History
}

// NewSearchComponent creates a new search component
func NewSearchComponent(searcher Searcher, history History) *SearchComponent {
	s := &SearchComponent{
		width:    80,
		height:   20,
		state:    StateInput,
		searcher: searcher,
		history:  history,
	}
	if history != nil {
		s.recent = history.RecentSearches()
	}
	return s
}

// Init initializes the search component
func (s *SearchComponent) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the search component
func (s *SearchComponent) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch s.state {
		case StateInput:
			return s.handleInputState(msg)
		case StateResults:
			return s.handleResultsState(msg)
		case StateSearching:
			// Ignore input while searching
			return s, nil
		case StateError:
			if msg.Type == tea.KeyEsc {
				s.state = StateInput
				s.error = nil
			}
			return s, nil
		}

	case SearchResultsMsg:
		return s.handleSearchResults(msg)

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	return s, nil
}

// handleInputState handles key messages in input state
func (s *SearchComponent) handleInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return s, s.submit(s.query)

	case tea.KeyBackspace:
		if r := []rune(s.query); len(r) > 0 {
			s.query = string(r[:len(r)-1])
		}
		return s, nil

	case tea.KeyEsc:
		s.query = ""
		s.results = nil
		s.selectedIndex = 0
		s.error = nil
		return s, nil

	case tea.KeyCtrlL:
		s.clearHistory()
		return s, nil

	case tea.KeySpace:
		s.query += " "
		return s, nil

	case tea.KeyRunes:
		// Digits on an empty prompt re-run a recent search
		if s.query == "" && len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9' {
			if i := int(msg.Runes[0] - '1'); i < len(s.recent) {
				s.query = s.recent[i]
				return s, s.submit(s.query)
			}
		}
		s.query += string(msg.Runes)
		return s, nil
	}

	return s, nil
}

func (s *SearchComponent) submit(query string) tea.Cmd {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	s.state = StateSearching
	return s.performSearch(strings.TrimSpace(query))
}

// handleResultsState handles key messages in results state
func (s *SearchComponent) handleResultsState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if s.selectedIndex > 0 {
			s.selectedIndex--
		}
		return s, nil

	case tea.KeyDown:
		if s.selectedIndex < len(s.results)-1 {
			s.selectedIndex++
		}
		return s, nil

	case tea.KeyEnter:
		if s.selectedIndex < len(s.results) {
			return s, s.choose(s.results[s.selectedIndex])
		}
		return s, nil

	case tea.KeyEsc:
		s.state = StateInput
		s.selectedIndex = 0
		s.results = nil
		return s, nil

	case tea.KeyRunes:
		if msg.String() == "a" && s.selectedIndex < len(s.results) {
			if r := s.results[s.selectedIndex]; r.episode != nil {
				ep := r.episode.Episode()
				return s, func() tea.Msg { return playlist.AddEpisodeMsg{Episode: ep} }
			}
		}
	}

	return s, nil
}

// choose emits the message for the selected row
func (s *SearchComponent) choose(r result) tea.Cmd {
	if r.episode != nil {
		ep := r.episode.Episode()
		return func() tea.Msg { return player.PlayEpisodeMsg{Episode: ep} }
	}
	pod := *r.podcast
	return func() tea.Msg { return browse.ShowPodcastMsg{Podcast: pod} }
}

// handleSearchResults handles search results message
func (s *SearchComponent) handleSearchResults(msg SearchResultsMsg) (tea.Model, tea.Cmd) {
	s.lastQuery = msg.Query
	if msg.Error != nil {
		s.state = StateError
		s.error = msg.Error
		s.results = nil
		return s, nil
	}

	s.state = StateResults
	s.results = flatten(msg.Results)
	s.selectedIndex = 0
	s.error = nil
	s.remember(msg.Query)
	return s, nil
}

// flatten lists episodes first, since they are directly playable
func flatten(res *podcast.SearchResult) []result {
	if res == nil {
		return nil
	}
	out := make([]result, 0, len(res.Episodes)+len(res.Podcasts))
	for i := range res.Episodes {
		out = append(out, result{episode: &res.Episodes[i]})
	}
	for i := range res.Podcasts {
		out = append(out, result{podcast: &res.Podcasts[i]})
	}
	return out
}

func (s *SearchComponent) remember(query string) {
	if s.history == nil {
		return
	}
	recent, err := s.history.AddRecentSearch(query)
	if err != nil {
		s.error = err
	}
	s.recent = recent
}

func (s *SearchComponent) clearHistory() {
	if s.history == nil {
		return
	}
	if err := s.history.ClearRecentSearches(); err != nil {
		s.error = err
		return
	}
	s.recent = nil
}

// performSearch performs the actual search
func (s *SearchComponent) performSearch(query string) tea.Cmd {
	if s.searcher == nil {
		return func() tea.Msg {
			return SearchResultsMsg{Query: query, Error: fmt.Errorf("no API client available")}
		}
	}

	searcher := s.searcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		results, err := searcher.Search(ctx, query)
		return SearchResultsMsg{Query: query, Results: results, Error: err}
	}
}

// View renders the search component
func (s *SearchComponent) View() string {
	switch s.state {
	case StateInput:
		return s.renderInputView()
	case StateSearching:
		return s.renderSearchingView()
	case StateResults:
		return s.renderResultsView()
	case StateError:
		return s.renderErrorView()
	default:
		return "Unknown state"
	}
}

func (s *SearchComponent) renderInputView() string {
	searchBox := styles.SearchBoxStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			"Search podcasts and episodes:",
			styles.InputFocusedStyle.Width(s.width-6).Render(s.query+"█"),
		),
	)

	parts := []string{searchBox}
	if len(s.recent) > 0 {
		rows := []string{styles.SectionTitleStyle.Render("Recent searches")}
		for i, term := range s.recent {
			rows = append(rows, styles.ListItemStyle.Render(fmt.Sprintf("%d  %s", i+1, term)))
		}
		parts = append(parts, lipgloss.JoinVertical(lipgloss.Left, rows...))
	}
	if s.error != nil {
		parts = append(parts, styles.ErrorStatusStyle.Render(s.error.Error()))
	}
	parts = append(parts, styles.HelpStyle.Render("Type to search • Enter: Search • 1-5: Recent search • Ctrl+L: Clear history • Esc: Clear"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *SearchComponent) renderSearchingView() string {
	return styles.SearchBoxStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			"Searching: "+s.query,
			styles.LoadingStatusStyle.Render("Searching..."),
		),
	)
}

func (s *SearchComponent) renderResultsView() string {
	if len(s.results) == 0 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			styles.SearchResultsStyle.Render(styles.StatusStyle.Render("No results found for: "+s.lastQuery)),
			styles.HelpStyle.Render("Esc: Back to search"),
		)
	}

	items := make([]string, len(s.results))
	for i, r := range s.results {
		items[i] = r.String()
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.EpisodeTitleStyle.Render(fmt.Sprintf("Results for %q (%d found):", s.lastQuery, len(s.results))),
		"",
		styles.RenderList(items, s.selectedIndex, s.height-8),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.SearchResultsStyle.Render(content),
		styles.HelpStyle.Render("↑↓: Navigate • Enter: Play episode / open podcast • a: Add episode to playlist • Esc: Back to search"),
	)
}

func (s *SearchComponent) renderErrorView() string {
	errorBox := styles.SearchBoxStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			styles.ErrorStatusStyle.Render("Search Error"),
			"",
			styles.ErrorStatusStyle.Render(s.error.Error()),
		),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		errorBox,
		styles.HelpStyle.Render("Esc: Back to search"),
	)
}

// Getter methods for testing and integration
func (s *SearchComponent) GetQuery() string {
	return s.query
}

func (s *SearchComponent) GetResultCount() int {
	return len(s.results)
}

func (s *SearchComponent) GetRecentSearches() []string {
	return s.recent
}

func (s *SearchComponent) IsSearching() bool {
	return s.state == StateSearching
}

func (s *SearchComponent) GetState() State {
	return s.state
}

func (s *SearchComponent) GetSelectedIndex() int {
	return s.selectedIndex
}

func (s *SearchComponent) GetError() error {
	return s.error
}

// CapturesText reports whether key presses are being typed into the query
func (s *SearchComponent) CapturesText() bool {
	return s.state == StateInput
}

func (s *SearchComponent) SetSize(width, height int) {
	s.width = width
	s.height = height
}
