package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"podcast-tui/internal/audio"
	"podcast-tui/internal/playback"
	"podcast-tui/internal/podcast"
	"podcast-tui/internal/ui/styles"
)

// State represents the current state of the player component
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateError
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// PlayEpisodeMsg asks the player to switch to an episode immediately
type PlayEpisodeMsg struct {
	Episode podcast.Episode
}

// StreamInfoMsg carries the resolved stream for an episode
type StreamInfoMsg struct {
	EpisodeID  int64
	StreamInfo *audio.StreamInfo
	Error      error
}

// PlaybackStartedMsg is sent once audio is flowing
type PlaybackStartedMsg struct {
	EpisodeID int64
}

// PlaybackFailedMsg is sent when an episode could not be started
type PlaybackFailedMsg struct {
	EpisodeID int64
	Error     error
}

// PlaybackFinishedMsg is the terminal event of the audio engine for one stream
type PlaybackFinishedMsg struct {
	StreamURL string
	Error     error
}

// ProgressUpdateMsg represents progress update message
type ProgressUpdateMsg struct {
	Position time.Duration
}

// BrowserOpenedMsg reports the result of handing a stream to the browser
type BrowserOpenedMsg struct {
	Error error
}

// Selection is the playback state the component is bound to. *playback.Store satisfies it.
type Selection interface {
	SetCurrentEpisode(ep podcast.Episode)
	Stop()
	State() playback.State
}

// Opener hands a stream URL to an external application
type Opener interface {
	Open(ctx context.Context, streamURL string) error
}

// PlayerComponent represents the player view component
type PlayerComponent struct {
	width  int
	height int

	state    State
	stream   *audio.StreamInfo
	position time.Duration
	volume   float64
	error    error
	notice   string

	selection    Selection
	audioPlayer  audio.Player
	resolver     audio.StreamResolver
	opener       Opener
	finished     chan PlaybackFinishedMsg
	cancelStream context.CancelFunc
}

// NewPlayerComponent creates a new player component
func NewPlayerComponent(selection Selection, audioPlayer audio.Player, resolver audio.StreamResolver, opener Opener) *PlayerComponent {
	p := &PlayerComponent{
		width:       80,
		height:      20,
		state:       StateIdle,
		volume:      1.0,
		selection:   selection,
		audioPlayer: audioPlayer,
		resolver:    resolver,
		opener:      opener,
		finished:    make(chan PlaybackFinishedMsg, 1),
	}
	if audioPlayer != nil {
		audioPlayer.OnFinished(func(streamURL string, err error) {
			select {
			case p.finished <- PlaybackFinishedMsg{StreamURL: streamURL, Error: err}:
			default:
			}
		})
	}
	return p
}

// Init initializes the player component
func (p *PlayerComponent) Init() tea.Cmd {
	return tea.Batch(p.tickProgress(), p.waitForFinish())
}

// Update handles messages and updates the player component
func (p *PlayerComponent) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p.handleKeyMsg(msg)

	case PlayEpisodeMsg:
		return p.handlePlayEpisode(msg)

	case StreamInfoMsg:
		return p.handleStreamInfo(msg)

	case PlaybackStartedMsg:
		if p.isCurrent(msg.EpisodeID) {
			p.state = StatePlaying
		}
		return p, nil

	case PlaybackFailedMsg:
		if !p.isCurrent(msg.EpisodeID) || errors.Is(msg.Error, context.Canceled) {
			return p, nil
		}
		p.fail(msg.Error)
		return p, nil

	case PlaybackFinishedMsg:
		// A stream replaced since it ended must not clear the new selection
		if !p.isCurrentStream(msg.StreamURL) {
			return p, p.waitForFinish()
		}
		p.endStream()
		if msg.Error != nil {
			p.state = StateError
			p.error = msg.Error
		} else {
			p.state = StateIdle
		}
		return p, p.waitForFinish()

	case BrowserOpenedMsg:
		if msg.Error != nil {
			p.notice = ""
			p.error = msg.Error
		} else {
			p.notice = "Opened in browser"
		}
		return p, nil

	case ProgressUpdateMsg:
		p.position = msg.Position
		return p, p.tickProgress()

	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil
	}

	return p, nil
}

// handleKeyMsg handles key messages
func (p *PlayerComponent) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if p.audioPlayer == nil {
		return p, nil
	}

	switch msg.Type {
	case tea.KeySpace:
		p.togglePlayPause()
		return p, nil

	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "+", "=":
			p.changeVolume(0.1)
		case "-":
			p.changeVolume(-0.1)
		case "x":
			p.stop()
		case "o":
			return p, p.openInBrowser()
		}
	}

	return p, nil
}

// handlePlayEpisode replaces the selection unconditionally and starts resolving its stream
func (p *PlayerComponent) handlePlayEpisode(msg PlayEpisodeMsg) (tea.Model, tea.Cmd) {
	p.cancel()
	if p.selection != nil {
		p.selection.SetCurrentEpisode(msg.Episode)
	}
	p.state = StateLoading
	p.stream = nil
	p.position = 0
	p.error = nil
	p.notice = ""

	if p.resolver == nil {
		p.fail(fmt.Errorf("no stream resolver available"))
		return p, nil
	}
	return p, p.resolveStream(msg.Episode)
}

// handleStreamInfo handles stream info message
func (p *PlayerComponent) handleStreamInfo(msg StreamInfoMsg) (tea.Model, tea.Cmd) {
	if !p.isCurrent(msg.EpisodeID) {
		return p, nil
	}
	if msg.Error != nil {
		p.fail(msg.Error)
		return p, nil
	}

	p.stream = msg.StreamInfo
	if p.selection != nil {
		p.selection.SetCurrentEpisode(msg.StreamInfo.Episode)
	}
	return p, p.playStream(msg.EpisodeID, msg.StreamInfo.URL)
}

func (p *PlayerComponent) isCurrent(episodeID int64) bool {
	if p.selection == nil {
		return true
	}
	current := p.selection.State().Current
	return current != nil && current.ID == episodeID
}

func (p *PlayerComponent) isCurrentStream(streamURL string) bool {
	return p.stream != nil && p.stream.URL == streamURL && p.isCurrent(p.stream.Episode.ID)
}

func (p *PlayerComponent) fail(err error) {
	p.endStream()
	p.state = StateError
	p.error = err
}

// endStream clears the shared selection once the audio side is done
func (p *PlayerComponent) endStream() {
	p.cancel()
	if p.selection != nil {
		p.selection.Stop()
	}
	p.stream = nil
	p.position = 0
}

func (p *PlayerComponent) cancel() {
	if p.cancelStream != nil {
		p.cancelStream()
		p.cancelStream = nil
	}
}

// togglePlayPause toggles between play and pause
func (p *PlayerComponent) togglePlayPause() {
	switch p.audioPlayer.GetState() {
	case audio.StatePlaying:
		if err := p.audioPlayer.Pause(); err != nil {
			p.error = fmt.Errorf("failed to pause: %w", err)
			return
		}
		p.state = StatePaused
	case audio.StatePaused:
		if err := p.audioPlayer.Resume(); err != nil {
			p.error = fmt.Errorf("failed to resume: %w", err)
			return
		}
		p.state = StatePlaying
	}
}

func (p *PlayerComponent) stop() {
	if err := p.audioPlayer.Stop(); err != nil {
		p.error = fmt.Errorf("failed to stop: %w", err)
	}
	p.endStream()
	p.state = StateIdle
}

// changeVolume moves the volume by delta, clamped to [0, 1]
func (p *PlayerComponent) changeVolume(delta float64) {
	volume := p.audioPlayer.GetVolume() + delta
	if volume > 1.0 {
		volume = 1.0
	}
	if volume < 0.0 {
		volume = 0.0
	}
	if err := p.audioPlayer.SetVolume(volume); err != nil {
		p.error = fmt.Errorf("failed to set volume: %w", err)
		return
	}
	p.volume = volume
}

// resolveStream looks up the media URL for an episode
func (p *PlayerComponent) resolveStream(ep podcast.Episode) tea.Cmd {
	resolver := p.resolver
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		info, err := resolver.ResolveEpisode(ctx, ep)
		return StreamInfoMsg{EpisodeID: ep.ID, StreamInfo: info, Error: err}
	}
}

// playStream starts playing a stream. The stream lives until the next
// episode is picked or playback is stopped.
func (p *PlayerComponent) playStream(episodeID int64, streamURL string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancelStream = cancel

	audioPlayer := p.audioPlayer
	return func() tea.Msg {
		if err := audioPlayer.Play(ctx, streamURL); err != nil {
			return PlaybackFailedMsg{EpisodeID: episodeID, Error: fmt.Errorf("failed to play stream: %w", err)}
		}
		return PlaybackStartedMsg{EpisodeID: episodeID}
	}
}

func (p *PlayerComponent) openInBrowser() tea.Cmd {
	if p.opener == nil || p.stream == nil {
		return nil
	}
	opener, streamURL := p.opener, p.stream.URL
	return func() tea.Msg {
		return BrowserOpenedMsg{Error: opener.Open(context.Background(), streamURL)}
	}
}

// waitForFinish blocks until the audio engine reports a terminal event
func (p *PlayerComponent) waitForFinish() tea.Cmd {
	finished := p.finished
	return func() tea.Msg {
		return <-finished
	}
}

// tickProgress returns a command that sends progress updates
func (p *PlayerComponent) tickProgress() tea.Cmd {
	audioPlayer := p.audioPlayer
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		if audioPlayer == nil {
			return ProgressUpdateMsg{}
		}
		return ProgressUpdateMsg{Position: audioPlayer.GetPosition()}
	})
}

// View renders the player component
func (p *PlayerComponent) View() string {
	switch p.state {
	case StateIdle:
		return p.renderIdleView()
	case StateLoading:
		return p.renderLoadingView()
	case StatePlaying, StatePaused:
		return p.renderPlayingView()
	case StateError:
		return p.renderErrorView()
	default:
		return "Unknown player state"
	}
}

func (p *PlayerComponent) current() *podcast.Episode {
	if p.selection == nil {
		return nil
	}
	return p.selection.State().Current
}

func (p *PlayerComponent) boxed(content string) string {
	return styles.PlayerStyle.Width(p.width-4).Height(p.height-4).Render(
		lipgloss.Place(p.width-8, p.height-8, lipgloss.Center, lipgloss.Center, content),
	)
}

func (p *PlayerComponent) renderIdleView() string {
	return p.boxed(lipgloss.JoinVertical(
		lipgloss.Center,
		styles.StatusStyle.Render("No episode playing"),
		"",
		styles.HelpStyle.Render("Pick an episode from Discover, Search or Library"),
	))
}

func (p *PlayerComponent) renderLoadingView() string {
	ep := p.current()
	if ep == nil {
		return p.renderIdleView()
	}
	return p.boxed(lipgloss.JoinVertical(
		lipgloss.Center,
		styles.RenderEpisodeHeading(ep.Title, ep.PodcastTitle, p.width),
		styles.LoadingStatusStyle.Render("Loading..."),
	))
}

func (p *PlayerComponent) renderPlayingView() string {
	ep := p.current()
	if ep == nil {
		return p.renderIdleView()
	}

	status := styles.PlayingStatusStyle.Render("▶ Playing")
	if p.state == StatePaused {
		status = styles.PausedStatusStyle.Render("⏸ Paused")
	}

	duration := time.Duration(ep.Duration) * time.Second
	var progress float64
	if duration > 0 {
		progress = float64(p.position) / float64(duration)
	}
	timeInfo := fmt.Sprintf("%s / %s", styles.FormatClock(p.position), styles.FormatClock(duration))

	lines := []string{
		styles.RenderEpisodeHeading(ep.Title, ep.PodcastTitle, p.width),
		status,
		"",
		styles.RenderProgressBar(p.width-12, progress),
		styles.StatusStyle.Render(timeInfo),
		"",
		styles.StatusStyle.Render(fmt.Sprintf("Volume %d%%", int(p.volume*100+0.5))),
	}
	if p.notice != "" {
		lines = append(lines, styles.SuccessStatusStyle.Render(p.notice))
	}
	if p.error != nil {
		lines = append(lines, styles.ErrorStatusStyle.Render(p.error.Error()))
	}
	lines = append(lines, styles.HelpStyle.Render("Space: Play/Pause • +/-: Volume • x: Stop • o: Open in browser"))

	return styles.PlayerStyle.Width(p.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (p *PlayerComponent) renderErrorView() string {
	msg := "Unknown error"
	if p.error != nil {
		msg = p.error.Error()
	}
	return p.boxed(lipgloss.JoinVertical(
		lipgloss.Center,
		styles.ErrorStatusStyle.Render("Playback Error"),
		"",
		styles.ErrorStatusStyle.Render(msg),
		"",
		styles.HelpStyle.Render("Try selecting another episode"),
	))
}

// Getter methods for testing and integration
func (p *PlayerComponent) GetState() State {
	return p.state
}

func (p *PlayerComponent) GetCurrentEpisode() *podcast.Episode {
	return p.current()
}

func (p *PlayerComponent) GetStream() *audio.StreamInfo {
	return p.stream
}

func (p *PlayerComponent) GetVolume() float64 {
	return p.volume
}

func (p *PlayerComponent) GetPosition() time.Duration {
	return p.position
}

func (p *PlayerComponent) GetError() error {
	return p.error
}

func (p *PlayerComponent) IsActive() bool {
	return p.state == StatePlaying || p.state == StatePaused || p.state == StateLoading
}

func (p *PlayerComponent) SetSize(width, height int) {
	p.width = width
	p.height = height
}
