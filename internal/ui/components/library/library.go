package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"podcast-tui/internal/podcast"
	"podcast-tui/internal/ui/components/browse"
	"podcast-tui/internal/ui/components/player"
	"podcast-tui/internal/ui/styles"
)

// State represents the current state of the library component
type State int

const (
	StateSignedOut State = iota
	StateLoading
	StateReady
	StatePlaylist
	StateEditing
	StateConfirmDelete
	StateError
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateSignedOut:
		return "signed-out"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaylist:
		return "playlist"
	case StateEditing:
		return "editing"
	case StateConfirmDelete:
		return "confirm-delete"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Section is one of the library lists
type Section int

const (
	SectionSubscriptions Section = iota
	SectionPlaylists
	SectionMine

	sectionCount = 3
)

// ErrNameRequired is shown when a playlist name is left blank
var ErrNameRequired = errors.New("playlist name is required")

// Library is the per-user side of the backend
type Library interface {
	Subscriptions(ctx context.Context) ([]podcast.Subscription, error)
	Playlists(ctx context.Context) ([]podcast.Playlist, error)
	Playlist(ctx context.Context, id int64) (*podcast.Playlist, error)
	CreatePlaylist(ctx context.Context, name string) (*podcast.Playlist, error)
	RenamePlaylist(ctx context.Context, id int64, name string) (*podcast.Playlist, error)
	DeletePlaylist(ctx context.Context, id int64) error
	RemoveFromPlaylist(ctx context.Context, playlistID, episodeID int64) (string, error)
	MyPodcasts(ctx context.Context) ([]podcast.PodcastSummary, error)
	Stats(ctx context.Context) (*podcast.Stats, error)
}

// LibraryLoadedMsg carries everything the library tab shows
type LibraryLoadedMsg struct {
	Subscriptions []podcast.Subscription
	Playlists     []podcast.Playlist
	MyPodcasts    []podcast.PodcastSummary
	Stats         *podcast.Stats
	Error         error
}

// PlaylistSavedMsg reports a playlist being created, renamed or deleted
type PlaylistSavedMsg struct {
	Message string
	Error   error
}

// PlaylistLoadedMsg carries one playlist with its episodes
type PlaylistLoadedMsg struct {
	Playlist *podcast.Playlist
	Error    error
}

// PlaylistChangedMsg reports the result of editing a playlist
type PlaylistChangedMsg struct {
	PlaylistID int64
	Message    string
	Error      error
}

// LibraryComponent renders the Library tab
type LibraryComponent struct {
	width  int
	height int

	state         State
	section       Section
	subscriptions []podcast.Subscription
	playlists     []podcast.Playlist
	mine          []podcast.PodcastSummary
	stats         *podcast.Stats
	selected      [sectionCount]int

	// editing is the playlist being renamed; nil while naming a new one
	editing  *podcast.Playlist
	name     string
	deleting *podcast.Playlist

	playlist     *podcast.Playlist
	episodeIndex int

	notice string
	error  error

	library Library
}

// NewLibraryComponent creates a new library component. It stays signed out until Load.
func NewLibraryComponent(library Library) *LibraryComponent {
	return &LibraryComponent{
		width:   80,
		height:  20,
		state:   StateSignedOut,
		library: library,
	}
}

// Init initializes the library component
func (l *LibraryComponent) Init() tea.Cmd {
	return nil
}

// Load fetches the library for the signed in user
func (l *LibraryComponent) Load() tea.Cmd {
	if l.library == nil {
		return nil
	}
	l.state = StateLoading
	l.error = nil
	library := l.library
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		subs, err := library.Subscriptions(ctx)
		if err != nil {
			return LibraryLoadedMsg{Error: err}
		}
		playlists, err := library.Playlists(ctx)
		if err != nil {
			return LibraryLoadedMsg{Error: err}
		}
		mine, err := library.MyPodcasts(ctx)
		if err != nil {
			return LibraryLoadedMsg{Error: err}
		}
		stats, err := library.Stats(ctx)
		if err != nil {
			return LibraryLoadedMsg{Error: err}
		}
		return LibraryLoadedMsg{Subscriptions: subs, Playlists: playlists, MyPodcasts: mine, Stats: stats}
	}
}

// Reset drops everything belonging to the previous user
func (l *LibraryComponent) Reset() {
	*l = LibraryComponent{
		width:   l.width,
		height:  l.height,
		state:   StateSignedOut,
		library: l.library,
	}
}

// Update handles messages and updates the library component
func (l *LibraryComponent) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch l.state {
		case StateReady:
			return l.handleListKeys(msg)
		case StatePlaylist:
			return l.handlePlaylistKeys(msg)
		case StateEditing:
			return l.handleEditingKeys(msg)
		case StateConfirmDelete:
			return l.handleConfirmKeys(msg)
		case StateError:
			if msg.String() == "r" {
				return l, l.Load()
			}
		}
		return l, nil

	case LibraryLoadedMsg:
		if l.state == StateSignedOut {
			return l, nil
		}
		if msg.Error != nil {
			l.state = StateError
			l.error = msg.Error
			return l, nil
		}
		l.subscriptions = msg.Subscriptions
		l.playlists = msg.Playlists
		l.mine = msg.MyPodcasts
		l.stats = msg.Stats
		l.selected = [sectionCount]int{}
		l.state = StateReady
		return l, nil

	case PlaylistSavedMsg:
		if l.state == StateSignedOut {
			return l, nil
		}
		if msg.Error != nil {
			l.state = StateReady
			l.notice = ""
			l.error = msg.Error
			return l, nil
		}
		l.notice = msg.Message
		return l, l.Load()

	case PlaylistLoadedMsg:
		if l.state != StatePlaylist || (msg.Error == nil && msg.Playlist == nil) {
			return l, nil
		}
		if msg.Error != nil {
			l.error = msg.Error
			return l, nil
		}
		if l.playlist != nil && l.playlist.ID != msg.Playlist.ID {
			return l, nil
		}
		l.playlist = msg.Playlist
		if l.episodeIndex >= len(msg.Playlist.Episodes) {
			l.episodeIndex = 0
		}
		return l, nil

	case PlaylistChangedMsg:
		if msg.Error != nil {
			l.notice = ""
			l.error = msg.Error
			return l, nil
		}
		l.error = nil
		l.notice = msg.Message
		return l, l.loadPlaylist(msg.PlaylistID)

	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.height = msg.Height
	}

	return l, nil
}

func (l *LibraryComponent) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyLeft:
		if l.section > SectionSubscriptions {
			l.section--
		}
	case tea.KeyRight:
		if l.section < SectionMine {
			l.section++
		}
	case tea.KeyUp:
		if l.selected[l.section] > 0 {
			l.selected[l.section]--
		}
	case tea.KeyDown:
		if l.selected[l.section] < l.sectionLen()-1 {
			l.selected[l.section]++
		}
	case tea.KeyEnter:
		return l, l.choose()
	case tea.KeyRunes:
		switch msg.String() {
		case "r":
			return l, l.Load()
		case "n":
			l.section = SectionPlaylists
			l.startEditing(nil)
		case "e":
			if pl := l.selectedPlaylist(); pl != nil {
				l.startEditing(pl)
			}
		case "x":
			if pl := l.selectedPlaylist(); pl != nil {
				l.deleting = pl
				l.notice = ""
				l.error = nil
				l.state = StateConfirmDelete
			}
		}
	}
	return l, nil
}

func (l *LibraryComponent) sectionLen() int {
	switch l.section {
	case SectionSubscriptions:
		return len(l.subscriptions)
	case SectionPlaylists:
		return len(l.playlists)
	default:
		return len(l.mine)
	}
}

// selectedPlaylist returns a copy of the highlighted playlist, if the playlists list is focused
func (l *LibraryComponent) selectedPlaylist() *podcast.Playlist {
	i := l.selected[SectionPlaylists]
	if l.section != SectionPlaylists || i >= len(l.playlists) {
		return nil
	}
	pl := l.playlists[i]
	return &pl
}

func (l *LibraryComponent) choose() tea.Cmd {
	i := l.selected[l.section]
	switch l.section {
	case SectionSubscriptions:
		if i >= len(l.subscriptions) {
			return nil
		}
		sub := l.subscriptions[i]
		show := podcast.PodcastSummary{ID: sub.Podcast, Title: sub.PodcastTitle}
		return func() tea.Msg { return browse.ShowPodcastMsg{Podcast: show} }
	case SectionMine:
		if i >= len(l.mine) {
			return nil
		}
		show := l.mine[i]
		return func() tea.Msg { return browse.ShowPodcastMsg{Podcast: show} }
	}
	if i >= len(l.playlists) {
		return nil
	}
	pl := l.playlists[i]
	l.playlist = &pl
	l.episodeIndex = 0
	l.notice = ""
	l.state = StatePlaylist
	return l.loadPlaylist(pl.ID)
}

func (l *LibraryComponent) handlePlaylistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	episodes := l.playlist.Episodes
	switch msg.Type {
	case tea.KeyEsc:
		l.playlist = nil
		l.notice = ""
		l.error = nil
		l.state = StateReady
	case tea.KeyUp:
		if l.episodeIndex > 0 {
			l.episodeIndex--
		}
	case tea.KeyDown:
		if l.episodeIndex < len(episodes)-1 {
			l.episodeIndex++
		}
	case tea.KeyEnter:
		if l.episodeIndex < len(episodes) {
			ep := episodes[l.episodeIndex]
			return l, func() tea.Msg { return player.PlayEpisodeMsg{Episode: ep} }
		}
	case tea.KeyRunes:
		if msg.String() == "d" && l.episodeIndex < len(episodes) {
			return l, l.removeEpisode(l.playlist.ID, episodes[l.episodeIndex].ID)
		}
	}
	return l, nil
}

func (l *LibraryComponent) startEditing(pl *podcast.Playlist) {
	l.editing = pl
	l.name = ""
	if pl != nil {
		l.name = pl.Name
	}
	l.notice = ""
	l.error = nil
	l.state = StateEditing
}

func (l *LibraryComponent) handleEditingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		l.editing = nil
		l.name = ""
		l.error = nil
		l.state = StateReady
	case tea.KeyEnter:
		name := strings.TrimSpace(l.name)
		if name == "" {
			l.error = ErrNameRequired
			return l, nil
		}
		return l, l.savePlaylist(l.editing, name)
	case tea.KeyBackspace:
		if r := []rune(l.name); len(r) > 0 {
			l.name = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		l.name += " "
	case tea.KeyRunes:
		l.name += string(msg.Runes)
	}
	return l, nil
}

func (l *LibraryComponent) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "y":
		return l, l.deletePlaylist(*l.deleting)
	case msg.String() == "n" || msg.Type == tea.KeyEsc:
		l.deleting = nil
		l.state = StateReady
	}
	return l, nil
}

// savePlaylist creates a playlist, or renames existing when it is set
func (l *LibraryComponent) savePlaylist(existing *podcast.Playlist, name string) tea.Cmd {
	if l.library == nil {
		return nil
	}
	l.state = StateLoading
	library := l.library
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if existing == nil {
			pl, err := library.CreatePlaylist(ctx, name)
			if err != nil {
				return PlaylistSavedMsg{Error: err}
			}
			return PlaylistSavedMsg{Message: fmt.Sprintf("Created playlist %q", pl.Name)}
		}
		pl, err := library.RenamePlaylist(ctx, existing.ID, name)
		if err != nil {
			return PlaylistSavedMsg{Error: err}
		}
		return PlaylistSavedMsg{Message: fmt.Sprintf("Renamed %q to %q", existing.Name, pl.Name)}
	}
}

func (l *LibraryComponent) deletePlaylist(pl podcast.Playlist) tea.Cmd {
	l.deleting = nil
	if l.library == nil {
		l.state = StateReady
		return nil
	}
	l.state = StateLoading
	library := l.library
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := library.DeletePlaylist(ctx, pl.ID); err != nil {
			return PlaylistSavedMsg{Error: err}
		}
		return PlaylistSavedMsg{Message: fmt.Sprintf("Deleted playlist %q", pl.Name)}
	}
}

// CapturesText reports whether typed keys belong to the playlist name field
func (l *LibraryComponent) CapturesText() bool {
	return l.state == StateEditing
}

func (l *LibraryComponent) loadPlaylist(id int64) tea.Cmd {
	if l.library == nil {
		return nil
	}
	library := l.library
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pl, err := library.Playlist(ctx, id)
		return PlaylistLoadedMsg{Playlist: pl, Error: err}
	}
}

func (l *LibraryComponent) removeEpisode(playlistID, episodeID int64) tea.Cmd {
	if l.library == nil {
		return nil
	}
	library := l.library
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		message, err := library.RemoveFromPlaylist(ctx, playlistID, episodeID)
		return PlaylistChangedMsg{PlaylistID: playlistID, Message: message, Error: err}
	}
}

// View renders the library component
func (l *LibraryComponent) View() string {
	switch l.state {
	case StateSignedOut:
		return lipgloss.JoinVertical(
			lipgloss.Left,
			styles.StatusStyle.Render("Log in to see your subscriptions and playlists"),
			styles.HelpStyle.Render("Ctrl+O: Log in"),
		)
	case StateLoading:
		return styles.LoadingStatusStyle.Render("Loading your library...")
	case StateReady, StateEditing, StateConfirmDelete:
		return l.renderLists()
	case StatePlaylist:
		return l.renderPlaylist()
	case StateError:
		return lipgloss.JoinVertical(
			lipgloss.Left,
			styles.ErrorStatusStyle.Render("Could not load your library"),
			styles.ErrorStatusStyle.Render(l.error.Error()),
			styles.HelpStyle.Render("r: Retry"),
		)
	default:
		return "Unknown state"
	}
}

func (l *LibraryComponent) renderLists() string {
	half := l.width/2 - 2
	rows := l.height - 12

	subs := make([]string, len(l.subscriptions))
	for i, s := range l.subscriptions {
		subs[i] = styles.TruncateText(s.PodcastTitle, half-6)
	}
	playlists := make([]string, len(l.playlists))
	for i, p := range l.playlists {
		playlists[i] = styles.TruncateText(fmt.Sprintf("%s (%d)", p.Name, p.EpisodeCount), half-6)
	}
	mine := make([]string, len(l.mine))
	for i, p := range l.mine {
		mine[i] = styles.TruncateText(p.Title, half-6)
	}

	// The third list takes the place of whichever column is not focused
	left, right := l.renderColumn("Subscriptions", subs, SectionSubscriptions, half, rows),
		l.renderColumn("Playlists", playlists, SectionPlaylists, half, rows)
	if l.section == SectionMine {
		left = right
		right = l.renderColumn("My podcasts", mine, SectionMine, half, rows)
	}
	columns := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	parts := []string{}
	if l.stats != nil {
		parts = append(parts, styles.StatusStyle.Render(fmt.Sprintf(
			"%d podcasts created • %d playlists • %d subscriptions",
			l.stats.PodcastsCreated, l.stats.PlaylistsCreated, l.stats.Subscriptions,
		)))
	}
	parts = append(parts, columns)

	switch l.state {
	case StateEditing:
		label := "New playlist name:"
		if l.editing != nil {
			label = fmt.Sprintf("Rename %q to:", l.editing.Name)
		}
		parts = append(parts, label, styles.InputFocusedStyle.Width(l.width-6).Render(l.name+"█"))
	case StateConfirmDelete:
		parts = append(parts, styles.ErrorStatusStyle.Render(fmt.Sprintf("Delete playlist %q? y: Yes • n: No", l.deleting.Name)))
	}
	if l.notice != "" {
		parts = append(parts, styles.SuccessStatusStyle.Render(l.notice))
	}
	if l.error != nil {
		parts = append(parts, styles.ErrorStatusStyle.Render(l.error.Error()))
	}

	help := "←→: Switch list • ↑↓: Navigate • Enter: Open • n: New playlist • e: Rename • x: Delete • r: Refresh"
	if l.state == StateEditing {
		help = "Enter: Save • Esc: Cancel"
	}
	parts = append(parts, styles.HelpStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (l *LibraryComponent) renderColumn(title string, items []string, section Section, width, rows int) string {
	heading := styles.SectionTitleStyle.Render(title)
	selected := l.selected[section]
	if section != l.section {
		heading = styles.StatusStyle.Render(title)
		selected = -1
	}

	body := styles.StatusStyle.Render("Nothing here yet")
	if len(items) > 0 {
		body = styles.RenderList(items, selected, rows)
	}
	return styles.ListStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, heading, "", body))
}

func (l *LibraryComponent) renderPlaylist() string {
	lines := []string{styles.EpisodeTitleStyle.Render(l.playlist.Name), ""}
	if len(l.playlist.Episodes) == 0 {
		lines = append(lines, styles.StatusStyle.Render("This playlist is empty"))
	} else {
		items := make([]string, len(l.playlist.Episodes))
		for i, e := range l.playlist.Episodes {
			items[i] = fmt.Sprintf("%-40s %-25s %s",
				styles.TruncateText(e.Title, 40),
				styles.TruncateText(e.PodcastTitle, 25),
				e.DurationString(),
			)
		}
		lines = append(lines, styles.RenderList(items, l.episodeIndex, l.height-10))
	}
	if l.notice != "" {
		lines = append(lines, styles.SuccessStatusStyle.Render(l.notice))
	}
	if l.error != nil {
		lines = append(lines, styles.ErrorStatusStyle.Render(l.error.Error()))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ListStyle.Width(l.width-4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
		styles.HelpStyle.Render("↑↓: Navigate • Enter: Play • d: Remove from playlist • Esc: Back"),
	)
}

// Getter methods for testing and integration
func (l *LibraryComponent) GetState() State {
	return l.state
}

func (l *LibraryComponent) GetSection() Section {
	return l.section
}

func (l *LibraryComponent) GetSubscriptions() []podcast.Subscription {
	return l.subscriptions
}

func (l *LibraryComponent) GetPlaylists() []podcast.Playlist {
	return l.playlists
}

func (l *LibraryComponent) GetMyPodcasts() []podcast.PodcastSummary {
	return l.mine
}

func (l *LibraryComponent) GetName() string {
	return l.name
}

func (l *LibraryComponent) GetPlaylist() *podcast.Playlist {
	return l.playlist
}

func (l *LibraryComponent) GetStats() *podcast.Stats {
	return l.stats
}

func (l *LibraryComponent) GetNotice() string {
	return l.notice
}

func (l *LibraryComponent) GetError() error {
	return l.error
}

func (l *LibraryComponent) SetSize(width, height int) {
	l.width = width
	l.height = height
}
