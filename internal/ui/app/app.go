package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"podcast-tui/internal/audio"
	"podcast-tui/internal/podcast"
	"podcast-tui/internal/prefs"
	"podcast-tui/internal/session"
	"podcast-tui/internal/ui/components/browse"
	"podcast-tui/internal/ui/components/library"
	"podcast-tui/internal/ui/components/login"
	"podcast-tui/internal/ui/components/player"
	"podcast-tui/internal/ui/components/playlist"
	"podcast-tui/internal/ui/components/search"
	"podcast-tui/internal/ui/styles"
)

// ViewType represents the different views in the application
type ViewType int

const (
	ViewDiscover ViewType = iota
	ViewSearch
	ViewLibrary
	ViewPlayer
	ViewLogin
	ViewAddToPlaylist
)

// String returns the string representation of ViewType
func (v ViewType) String() string {
	switch v {
	case ViewDiscover:
		return "discover"
	case ViewSearch:
		return "search"
	case ViewLibrary:
		return "library"
	case ViewPlayer:
		return "player"
	case ViewLogin:
		return "login"
	case ViewAddToPlaylist:
		return "add-to-playlist"
	default:
		return "unknown"
	}
}

var tabs = []struct {
	view ViewType
	name string
}{
	{ViewDiscover, "Discover"},
	{ViewSearch, "Search"},
	{ViewLibrary, "Library"},
	{ViewPlayer, "Player"},
}

// Session is the part of the session manager the shell uses. *session.Manager satisfies it.
type Session interface {
	login.Authenticator
	Subscribe(l session.Listener) func()
	Logout(ctx context.Context)
	UpdateUser(user podcast.User) error
}

// Preferences is the theme and search history store. *prefs.Prefs satisfies it.
type Preferences interface {
	search.History
	ToggleTheme() (prefs.Theme, error)
	Resolve() prefs.Theme
}

// Deps are the collaborators of the application shell
type Deps struct {
	Session  Session
	Backend  *Backend
	Playback player.Selection
	Player   audio.Player
	Resolver audio.StreamResolver
	Opener   player.Opener
	Prefs    Preferences
	Logger   zerolog.Logger
}

// SessionChangedMsg is delivered whenever the session state changes
type SessionChangedMsg struct {
	State session.State
}

// loggedOutMsg is sent once a logout initiated from the TUI has completed
type loggedOutMsg struct{}

// ProfileMsg carries the user record fetched from the server
type ProfileMsg struct {
	User  *podcast.User
	Error error
}

// App represents the main application model
type App struct {
	// Window size
	width  int
	height int

	// Current view
	currentView   ViewType
	previousView  ViewType
	pickerReturn  ViewType
	quitting      bool
	authenticated bool
	status        string

	// Components
	browseComponent  *browse.BrowseComponent
	searchComponent  *search.SearchComponent
	libraryComponent *library.LibraryComponent
	playerComponent  *player.PlayerComponent
	loginComponent   *login.LoginComponent
	pickerComponent  *playlist.PickerComponent

	// Dependencies
	backend     *Backend
	session     Session
	prefs       Preferences
	log         zerolog.Logger
	sessionCh   chan session.State
	unsubscribe func()
}

// NewApp creates a new application instance
func NewApp(deps Deps) *App {
	var (
		catalog  browse.Catalog
		searcher search.Searcher
		lib      library.Library
		store    playlist.Store
	)
	if deps.Backend != nil {
		catalog, searcher, lib, store = deps.Backend, deps.Backend, deps.Backend, deps.Backend
	}
	var history search.History
	if deps.Prefs != nil {
		history = deps.Prefs
	}
	var auth login.Authenticator
	if deps.Session != nil {
		auth = deps.Session
	}

	a := &App{
		width:            80,
		height:           24,
		currentView:      ViewDiscover,
		browseComponent:  browse.NewBrowseComponent(catalog),
		searchComponent:  search.NewSearchComponent(searcher, history),
		libraryComponent: library.NewLibraryComponent(lib),
		playerComponent:  player.NewPlayerComponent(deps.Playback, deps.Player, deps.Resolver, deps.Opener),
		loginComponent:   login.NewLoginComponent(auth),
		pickerComponent:  playlist.NewPickerComponent(store),
		backend:          deps.Backend,
		session:          deps.Session,
		prefs:            deps.Prefs,
		log:              deps.Logger.With().Str("component", "app").Logger(),
		sessionCh:        make(chan session.State, 16),
	}

	if a.prefs != nil {
		styles.Apply(styles.PaletteFor(string(a.prefs.Resolve())))
	}
	if a.session != nil {
		a.authenticated = a.session.State().IsAuthenticated
		// Listeners may run on a request goroutine; hand the state to the event loop.
		a.unsubscribe = a.session.Subscribe(func(s session.State) {
			select {
			case a.sessionCh <- s:
			default:
			}
		})
	}
	return a
}

// Close detaches the application from the session
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// ShowLogin opens the login form, optionally with a username filled in
func (a *App) ShowLogin(username string) {
	a.loginComponent.Reset()
	a.loginComponent.Prefill(username)
	a.openLogin()
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.browseComponent.Init(),
		a.searchComponent.Init(),
		a.playerComponent.Init(),
		a.waitForSession(),
	}
	if a.authenticated {
		cmds = append(cmds, a.libraryComponent.Load(), a.RefreshProfile())
	}
	return tea.Batch(cmds...)
}

// RefreshProfile fetches the signed in user so a stale cached record is replaced
func (a *App) RefreshProfile() tea.Cmd {
	if a.backend == nil || a.session == nil {
		return nil
	}
	backend := a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := backend.Profile(ctx)
		return ProfileMsg{User: user, Error: err}
	}
}

// waitForSession blocks until the session reports a transition
func (a *App) waitForSession() tea.Cmd {
	ch := a.sessionCh
	return func() tea.Msg {
		return SessionChangedMsg{State: <-ch}
	}
}

// Update handles messages and updates the application state
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for header/footer
		h := msg.Height - 6
		a.browseComponent.SetSize(msg.Width, h)
		a.searchComponent.SetSize(msg.Width, h)
		a.libraryComponent.SetSize(msg.Width, h)
		a.playerComponent.SetSize(msg.Width, h)
		a.loginComponent.SetSize(msg.Width, h)
		a.pickerComponent.SetSize(msg.Width, h)
		return a, nil

	case SessionChangedMsg:
		return a, tea.Batch(a.handleSession(msg.State), a.waitForSession())

	case loggedOutMsg:
		a.status = "Logged out"
		return a, nil

	case ProfileMsg:
		a.applyProfile(msg)
		return a, nil

	case playlist.AddEpisodeMsg:
		if !a.authenticated {
			a.status = "Log in to add episodes to playlists"
			a.loginComponent.Reset()
			a.openLogin()
			return a, nil
		}
		if a.currentView != ViewAddToPlaylist {
			a.pickerReturn = a.currentView
		}
		a.currentView = ViewAddToPlaylist
		return a, a.pickerComponent.Open(msg.Episode)

	case playlist.ClosedMsg:
		if a.currentView == ViewAddToPlaylist {
			a.currentView = a.pickerReturn
		}
		if msg.Notice == "" {
			return a, nil
		}
		a.status = msg.Notice
		// Episode counts changed
		return a, a.libraryComponent.Load()

	case player.PlayEpisodeMsg:
		// Picking an episode anywhere switches to the player
		a.currentView = ViewPlayer
		return a, a.updatePlayer(msg)

	case browse.ShowPodcastMsg:
		a.currentView = ViewDiscover
		return a, a.updateBrowse(msg)

	case login.SubmittedMsg:
		return a, a.updateLogin(msg)

	default:
		// Pass other messages to components
		cmds = append(cmds,
			a.updateBrowse(msg),
			a.updateSearch(msg),
			a.updateLibrary(msg),
			a.updatePlayer(msg),
			a.updatePicker(msg),
		)
	}

	return a, tea.Batch(cmds...)
}

// handleSession reacts to login, logout and expiry
func (a *App) handleSession(state session.State) tea.Cmd {
	// The snapshot may be stale if several transitions were queued
	if a.session != nil {
		state = a.session.State()
	}

	switch {
	case state.IsAuthenticated && !a.authenticated:
		a.authenticated = true
		a.status = ""
		if a.currentView == ViewLogin {
			a.currentView = a.previousView
		}
		return a.libraryComponent.Load()

	case !state.IsAuthenticated && a.authenticated:
		a.authenticated = false
		a.libraryComponent.Reset()
		if a.currentView == ViewAddToPlaylist {
			a.currentView = a.pickerReturn
		}
		if state.Err != "" {
			// Expired: the refresh failed, send the user back to log in
			a.log.Info().Msg("session expired, showing login")
			a.status = state.Err
			a.openLogin()
		}
	}
	return nil
}

func (a *App) applyProfile(msg ProfileMsg) {
	if msg.Error != nil {
		a.log.Warn().Err(msg.Error).Msg("failed to refresh profile")
		return
	}
	// The user may have logged out while the request was in flight
	if msg.User == nil || !a.authenticated {
		return
	}
	if err := a.session.UpdateUser(*msg.User); err != nil {
		a.log.Warn().Err(err).Msg("failed to store profile")
	}
}

func (a *App) openLogin() {
	if a.currentView != ViewLogin {
		a.previousView = a.currentView
	}
	a.currentView = ViewLogin
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		a.quitting = true
		return a, tea.Quit
	case tea.KeyCtrlT:
		a.toggleTheme()
		return a, nil
	}

	// The login form owns the keyboard until it is dismissed
	if a.currentView == ViewLogin {
		if msg.Type == tea.KeyEsc {
			a.currentView = a.previousView
			return a, nil
		}
		return a, a.updateLogin(msg)
	}

	// So does the playlist picker
	if a.currentView == ViewAddToPlaylist {
		return a, a.updatePicker(msg)
	}

	switch msg.Type {
	case tea.KeyTab:
		a.nextView()
		return a, nil

	case tea.KeyShiftTab:
		a.prevView()
		return a, nil

	case tea.KeyCtrlO:
		return a, a.toggleAccount()
	}

	if !a.capturesText() {
		switch msg.Type {
		case tea.KeySpace:
			// Play/pause works from every view
			return a, a.updatePlayer(msg)
		case tea.KeyRunes:
			switch string(msg.Runes) {
			case "+", "=", "-":
				return a, a.updatePlayer(msg)
			case "1", "2", "3", "4":
				a.currentView = tabs[msg.Runes[0]-'1'].view
				return a, nil
			case "q":
				a.quitting = true
				return a, tea.Quit
			}
		}
	}

	// Pass key messages to current view
	switch a.currentView {
	case ViewDiscover:
		return a, a.updateBrowse(msg)
	case ViewSearch:
		return a, a.updateSearch(msg)
	case ViewLibrary:
		return a, a.updateLibrary(msg)
	case ViewPlayer:
		return a, a.updatePlayer(msg)
	}
	return a, nil
}

// capturesText reports whether the current view is taking typed text
func (a *App) capturesText() bool {
	switch a.currentView {
	case ViewSearch:
		return a.searchComponent.CapturesText()
	case ViewLibrary:
		return a.libraryComponent.CapturesText()
	}
	return false
}

// toggleAccount opens the login form, or logs out when signed in
func (a *App) toggleAccount() tea.Cmd {
	if a.session == nil {
		return nil
	}
	if !a.authenticated {
		a.status = ""
		a.loginComponent.Reset()
		a.openLogin()
		return nil
	}

	sess := a.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sess.Logout(ctx)
		return loggedOutMsg{}
	}
}

func (a *App) toggleTheme() {
	if a.prefs == nil {
		return
	}
	theme, err := a.prefs.ToggleTheme()
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to save theme")
		a.status = fmt.Sprintf("Could not save theme: %v", err)
	} else {
		a.status = fmt.Sprintf("Theme: %s", theme)
	}
	styles.Apply(styles.PaletteFor(string(a.prefs.Resolve())))
}

func (a *App) updateBrowse(msg tea.Msg) tea.Cmd {
	updated, cmd := a.browseComponent.Update(msg)
	a.browseComponent = updated.(*browse.BrowseComponent)
	return cmd
}

func (a *App) updateSearch(msg tea.Msg) tea.Cmd {
	updated, cmd := a.searchComponent.Update(msg)
	a.searchComponent = updated.(*search.SearchComponent)
	return cmd
}

func (a *App) updateLibrary(msg tea.Msg) tea.Cmd {
	updated, cmd := a.libraryComponent.Update(msg)
	a.libraryComponent = updated.(*library.LibraryComponent)
	return cmd
}

func (a *App) updatePlayer(msg tea.Msg) tea.Cmd {
	updated, cmd := a.playerComponent.Update(msg)
	a.playerComponent = updated.(*player.PlayerComponent)
	return cmd
}

func (a *App) updatePicker(msg tea.Msg) tea.Cmd {
	updated, cmd := a.pickerComponent.Update(msg)
	a.pickerComponent = updated.(*playlist.PickerComponent)
	return cmd
}

func (a *App) updateLogin(msg tea.Msg) tea.Cmd {
	updated, cmd := a.loginComponent.Update(msg)
	a.loginComponent = updated.(*login.LoginComponent)
	return cmd
}

// View renders the application
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	// Main content based on current view
	var content string
	switch a.currentView {
	case ViewDiscover:
		content = a.browseComponent.View()
	case ViewSearch:
		content = a.searchComponent.View()
	case ViewLibrary:
		content = a.libraryComponent.View()
	case ViewPlayer:
		content = a.playerComponent.View()
	case ViewLogin:
		content = a.loginComponent.View()
	case ViewAddToPlaylist:
		content = a.pickerComponent.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderHeader(),
		content,
		a.renderFooter(),
	)
}

// renderHeader renders the application header
func (a *App) renderHeader() string {
	title := styles.TitleStyle.Render("Podcast TUI")

	// Navigation tabs
	rendered := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.view == a.currentView {
			rendered = append(rendered, styles.ActiveTabStyle.Render(t.name))
		} else {
			rendered = append(rendered, styles.InactiveTabStyle.Render(t.name))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	account := styles.StatusStyle.Render("Not signed in")
	if a.session != nil {
		if user := a.session.State().User; user != nil {
			account = styles.SuccessStatusStyle.Render("Signed in as " + user.FullName())
		}
	}

	return styles.HeaderStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, title, account),
		tabBar,
	))
}

// renderFooter renders the application footer
func (a *App) renderFooter() string {
	helpText := "Tab: Next View • Ctrl+T: Theme • Ctrl+C: Quit"
	if a.authenticated {
		helpText += " • Ctrl+O: Log out"
	} else {
		helpText += " • Ctrl+O: Log in"
	}

	// Add global audio controls (work from any view)
	if a.playerComponent.IsActive() {
		helpText += " • Space: Play/Pause • +/-: Volume"
	}

	lines := []string{}
	if a.status != "" {
		lines = append(lines, styles.StatusStyle.Render(a.status))
	}
	lines = append(lines, helpText)
	return styles.FooterStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// nextView switches to the next tab in the cycle
func (a *App) nextView() {
	a.currentView = tabs[(a.tabIndex()+1)%len(tabs)].view
}

// prevView switches to the previous tab in the cycle
func (a *App) prevView() {
	a.currentView = tabs[(a.tabIndex()+len(tabs)-1)%len(tabs)].view
}

func (a *App) tabIndex() int {
	for i, t := range tabs {
		if t.view == a.currentView {
			return i
		}
	}
	return 0
}

// Getter methods for testing
func (a *App) GetCurrentView() ViewType {
	return a.currentView
}

func (a *App) SetCurrentView(view ViewType) {
	a.currentView = view
}

func (a *App) IsQuitting() bool {
	return a.quitting
}

func (a *App) IsAuthenticated() bool {
	return a.authenticated
}

func (a *App) GetStatus() string {
	return a.status
}

func (a *App) GetSize() (int, int) {
	return a.width, a.height
}

func (a *App) Browse() *browse.BrowseComponent {
	return a.browseComponent
}

func (a *App) Search() *search.SearchComponent {
	return a.searchComponent
}

func (a *App) Library() *library.LibraryComponent {
	return a.libraryComponent
}

func (a *App) Player() *player.PlayerComponent {
	return a.playerComponent
}

func (a *App) Login() *login.LoginComponent {
	return a.loginComponent
}

func (a *App) Picker() *playlist.PickerComponent {
	return a.pickerComponent
}
