package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"podcast-tui/internal/podcast"
	"podcast-tui/internal/ui/styles"
)

// State represents the current state of the playlist picker
type State int

const (
	StateClosed State = iota
	StateLoading
	StateChoosing
	StateNaming
	StateSaving
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoading:
		return "loading"
	case StateChoosing:
		return "choosing"
	case StateNaming:
		return "naming"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// ErrNameRequired is shown when a new playlist is submitted without a name
var ErrNameRequired = errors.New("playlist name is required")

// Store is the playlist side of the backend the picker drives
type Store interface {
	Playlists(ctx context.Context) ([]podcast.Playlist, error)
	CreatePlaylist(ctx context.Context, name string) (*podcast.Playlist, error)
	AddToPlaylist(ctx context.Context, playlistID, episodeID int64) (string, error)
}

// AddEpisodeMsg asks for an episode to be added to one of the user's playlists
type AddEpisodeMsg struct {
	Episode podcast.Episode
}

// PlaylistsLoadedMsg carries the playlists offered by the picker
type PlaylistsLoadedMsg struct {
	EpisodeID int64
	Playlists []podcast.Playlist
	Error     error
}

// AddedMsg reports the outcome of adding the episode
type AddedMsg struct {
	EpisodeID int64
	Message   string
	Error     error
}

// ClosedMsg is emitted when the picker is dismissed. Notice is empty on cancel.
type ClosedMsg struct {
	Notice string
}

// PickerComponent chooses a playlist, or names a new one, for an episode
type PickerComponent struct {
	width  int
	height int

	state     State
	episode   podcast.Episode
	playlists []podcast.Playlist
	selected  int
	name      string
	error     error

	store Store
}

// NewPickerComponent creates a closed picker
func NewPickerComponent(store Store) *PickerComponent {
	return &PickerComponent{
		width:  80,
		height: 20,
		state:  StateClosed,
		store:  store,
	}
}

// Init initializes the picker
func (p *PickerComponent) Init() tea.Cmd {
	return nil
}

// Open starts choosing a playlist for episode
func (p *PickerComponent) Open(episode podcast.Episode) tea.Cmd {
	p.state = StateLoading
	p.episode = episode
	p.playlists = nil
	p.selected = 0
	p.name = ""
	p.error = nil

	if p.store == nil {
		p.state = StateChoosing
		p.error = fmt.Errorf("no API client available")
		return nil
	}
	store := p.store
	id := episode.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		playlists, err := store.Playlists(ctx)
		return PlaylistsLoadedMsg{EpisodeID: id, Playlists: playlists, Error: err}
	}
}

// Update handles messages and updates the picker
func (p *PickerComponent) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch p.state {
		case StateChoosing:
			return p.handleChoosingKeys(msg)
		case StateNaming:
			return p.handleNamingKeys(msg)
		case StateLoading, StateSaving:
			if msg.Type == tea.KeyEsc {
				return p, p.close("")
			}
		}
		return p, nil

	case PlaylistsLoadedMsg:
		if p.state != StateLoading || msg.EpisodeID != p.episode.ID {
			return p, nil
		}
		p.state = StateChoosing
		p.playlists = msg.Playlists
		p.error = msg.Error
		return p, nil

	case AddedMsg:
		if p.state != StateSaving || msg.EpisodeID != p.episode.ID {
			return p, nil
		}
		if msg.Error != nil {
			p.state = StateChoosing
			p.error = msg.Error
			return p, nil
		}
		return p, p.close(msg.Message)

	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
	}

	return p, nil
}

// The last row is always "New playlist"
func (p *PickerComponent) handleChoosingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return p, p.close("")
	case tea.KeyUp:
		if p.selected > 0 {
			p.selected--
		}
	case tea.KeyDown:
		if p.selected < len(p.playlists) {
			p.selected++
		}
	case tea.KeyEnter:
		if p.selected == len(p.playlists) {
			p.state = StateNaming
			p.error = nil
			return p, nil
		}
		return p, p.addTo(p.playlists[p.selected])
	case tea.KeyRunes:
		if msg.String() == "n" {
			p.state = StateNaming
			p.error = nil
		}
	}
	return p, nil
}

func (p *PickerComponent) handleNamingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		p.state = StateChoosing
		p.name = ""
		p.error = nil
	case tea.KeyEnter:
		name := strings.TrimSpace(p.name)
		if name == "" {
			p.error = ErrNameRequired
			return p, nil
		}
		return p, p.createAndAdd(name)
	case tea.KeyBackspace:
		if r := []rune(p.name); len(r) > 0 {
			p.name = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		p.name += " "
	case tea.KeyRunes:
		p.name += string(msg.Runes)
	}
	return p, nil
}

func (p *PickerComponent) addTo(pl podcast.Playlist) tea.Cmd {
	if p.store == nil {
		return nil
	}
	p.state = StateSaving
	p.error = nil
	store := p.store
	episodeID := p.episode.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		message, err := store.AddToPlaylist(ctx, pl.ID, episodeID)
		if err == nil {
			message = fmt.Sprintf("%s (%s)", message, pl.Name)
		}
		return AddedMsg{EpisodeID: episodeID, Message: message, Error: err}
	}
}

func (p *PickerComponent) createAndAdd(name string) tea.Cmd {
	if p.store == nil {
		return nil
	}
	p.state = StateSaving
	p.error = nil
	store := p.store
	episodeID := p.episode.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pl, err := store.CreatePlaylist(ctx, name)
		if err != nil {
			return AddedMsg{EpisodeID: episodeID, Error: err}
		}
		if _, err := store.AddToPlaylist(ctx, pl.ID, episodeID); err != nil {
			return AddedMsg{EpisodeID: episodeID, Error: err}
		}
		return AddedMsg{EpisodeID: episodeID, Message: fmt.Sprintf("Created %q and added the episode", pl.Name)}
	}
}

func (p *PickerComponent) close(notice string) tea.Cmd {
	p.state = StateClosed
	p.name = ""
	p.error = nil
	return func() tea.Msg { return ClosedMsg{Notice: notice} }
}

// CapturesText reports whether typed keys belong to the name field
func (p *PickerComponent) CapturesText() bool {
	return p.state == StateNaming
}

// View renders the picker
func (p *PickerComponent) View() string {
	lines := []string{
		styles.SectionTitleStyle.Render("Add to playlist"),
		styles.EpisodeTitleStyle.Render(styles.TruncateText(p.episode.Title, p.width-8)),
		"",
	}

	switch p.state {
	case StateLoading:
		lines = append(lines, styles.LoadingStatusStyle.Render("Loading your playlists..."))
	case StateSaving:
		lines = append(lines, styles.LoadingStatusStyle.Render("Saving..."))
	case StateNaming:
		lines = append(lines,
			"New playlist name:",
			styles.InputFocusedStyle.Width(p.width-10).Render(p.name+"█"),
		)
	default:
		items := make([]string, 0, len(p.playlists)+1)
		for _, pl := range p.playlists {
			items = append(items, fmt.Sprintf("%s (%d)", styles.TruncateText(pl.Name, p.width-16), pl.EpisodeCount))
		}
		items = append(items, "+ New playlist")
		lines = append(lines, styles.RenderList(items, p.selected, p.height-10))
	}

	if p.error != nil {
		lines = append(lines, styles.ErrorStatusStyle.Render(p.error.Error()))
	}

	help := "↑↓: Navigate • Enter: Add • n: New playlist • Esc: Cancel"
	if p.state == StateNaming {
		help = "Enter: Create and add • Esc: Back"
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.FormStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
		styles.HelpStyle.Render(help),
	)
}

// Getter methods for testing and integration
func (p *PickerComponent) GetState() State {
	return p.state
}

func (p *PickerComponent) GetEpisode() podcast.Episode {
	return p.episode
}

func (p *PickerComponent) GetPlaylists() []podcast.Playlist {
	return p.playlists
}

func (p *PickerComponent) GetSelectedIndex() int {
	return p.selected
}

func (p *PickerComponent) GetName() string {
	return p.name
}

func (p *PickerComponent) GetError() error {
	return p.error
}

func (p *PickerComponent) SetSize(width, height int) {
	p.width = width
	p.height = height
}
