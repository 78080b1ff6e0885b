package login

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"podcast-tui/internal/podcast"
	"podcast-tui/internal/session"
	"podcast-tui/internal/ui/styles"
)

// Mode selects between the login and registration forms
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// String returns the string representation of Mode
func (m Mode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModeRegister:
		return "register"
	default:
		return "unknown"
	}
}

// Authenticator is the session surface the form drives. *session.Manager satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, req podcast.RegisterRequest) error
	State() session.State
	ClearError()
}

// SubmittedMsg reports the outcome of a login or registration attempt
type SubmittedMsg struct {
	Mode    Mode
	Message string
	Error   error
}

type field struct {
	label  string
	value  string
	secret bool
}

const (
	fieldUsername = iota
	fieldPassword
)

const (
	regUsername = iota
	regEmail
	regFirstName
	regLastName
	regPassword
	regConfirm
)

// LoginComponent is the login and registration form
type LoginComponent struct {
	width  int
	height int

	mode       Mode
	fields     []field
	focus      int
	submitting bool
	message    string

	auth Authenticator
}

// NewLoginComponent creates a new login form
func NewLoginComponent(auth Authenticator) *LoginComponent {
	l := &LoginComponent{
		width:  80,
		height: 20,
		auth:   auth,
	}
	l.setMode(ModeLogin)
	return l
}

func loginFields() []field {
	return []field{
		{label: "Username"},
		{label: "Password", secret: true},
	}
}

func registerFields() []field {
	return []field{
		{label: "Username"},
		{label: "Email"},
		{label: "First name"},
		{label: "Last name"},
		{label: "Password", secret: true},
		{label: "Confirm password", secret: true},
	}
}

func (l *LoginComponent) setMode(mode Mode) {
	l.mode = mode
	l.focus = 0
	l.message = ""
	if mode == ModeRegister {
		l.fields = registerFields()
	} else {
		l.fields = loginFields()
	}
}

// Reset clears the form and any error left on the session
func (l *LoginComponent) Reset() {
	l.setMode(ModeLogin)
	l.submitting = false
	if l.auth != nil {
		l.auth.ClearError()
	}
}

// Prefill sets the username, e.g. from the command line
func (l *LoginComponent) Prefill(username string) {
	l.fields[0].value = username
	if username != "" {
		l.focus = 1
	}
}

// Init initializes the login component
func (l *LoginComponent) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the login component
func (l *LoginComponent) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if l.submitting {
			return l, nil
		}
		return l.handleKey(msg)

	case SubmittedMsg:
		l.submitting = false
		if msg.Error != nil {
			l.message = msg.Message
			for i := range l.fields {
				if l.fields[i].secret {
					l.fields[i].value = ""
				}
			}
		} else {
			l.setMode(ModeLogin)
		}
		return l, nil

	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.height = msg.Height
	}

	return l, nil
}

func (l *LoginComponent) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		l.focus = (l.focus + 1) % len(l.fields)
	case tea.KeyShiftTab, tea.KeyUp:
		l.focus = (l.focus + len(l.fields) - 1) % len(l.fields)
	case tea.KeyCtrlR:
		if l.mode == ModeLogin {
			l.setMode(ModeRegister)
		} else {
			l.setMode(ModeLogin)
		}
	case tea.KeyEnter:
		if l.focus < len(l.fields)-1 {
			l.focus++
			return l, nil
		}
		return l, l.submit()
	case tea.KeyBackspace:
		f := &l.fields[l.focus]
		if r := []rune(f.value); len(r) > 0 {
			f.value = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		if !l.fields[l.focus].secret && l.focus != 0 {
			l.fields[l.focus].value += " "
		}
	case tea.KeyRunes:
		l.fields[l.focus].value += string(msg.Runes)
	}
	return l, nil
}

func (l *LoginComponent) value(i int) string {
	if l.fields[i].secret {
		return l.fields[i].value
	}
	return strings.TrimSpace(l.fields[i].value)
}

// submit validates locally and then runs the session call
func (l *LoginComponent) submit() tea.Cmd {
	if l.auth == nil {
		return nil
	}

	if l.mode == ModeLogin {
		username, password := l.value(fieldUsername), l.value(fieldPassword)
		if username == "" || password == "" {
			l.message = "Username and password are required"
			return nil
		}
		l.submitting = true
		l.message = ""
		auth := l.auth
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			err := auth.Login(ctx, username, password)
			return SubmittedMsg{Mode: ModeLogin, Message: auth.State().Err, Error: err}
		}
	}

	req := podcast.RegisterRequest{
		Username:        l.value(regUsername),
		Email:           l.value(regEmail),
		FirstName:       l.value(regFirstName),
		LastName:        l.value(regLastName),
		Password:        l.value(regPassword),
		PasswordConfirm: l.value(regConfirm),
	}
	switch {
	case req.Username == "" || req.Email == "" || req.Password == "":
		l.message = "Username, email and password are required"
		return nil
	case req.Password != req.PasswordConfirm:
		l.message = "Passwords do not match"
		return nil
	}

	l.submitting = true
	l.message = ""
	auth := l.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := auth.Register(ctx, req)
		return SubmittedMsg{Mode: ModeRegister, Message: auth.State().Err, Error: err}
	}
}

// View renders the login component
func (l *LoginComponent) View() string {
	title := "Log in"
	toggle := "Ctrl+R: Create an account"
	if l.mode == ModeRegister {
		title = "Create an account"
		toggle = "Ctrl+R: Back to log in"
	}

	rows := []string{styles.TitleStyle.Render(title)}
	width := l.width/2 + 10
	if width > l.width-8 {
		width = l.width - 8
	}
	for i, f := range l.fields {
		value := f.value
		if f.secret {
			value = strings.Repeat("•", len([]rune(value)))
		}
		style := styles.InputStyle
		if i == l.focus {
			style = styles.InputFocusedStyle
			value += "█"
		}
		rows = append(rows, f.label, style.Width(width).Render(value))
	}

	switch {
	case l.submitting:
		rows = append(rows, styles.LoadingStatusStyle.Render("Signing in..."))
	case l.message != "":
		rows = append(rows, styles.ErrorStatusStyle.Render(l.message))
	case l.auth != nil && l.auth.State().Err != "":
		rows = append(rows, styles.ErrorStatusStyle.Render(l.auth.State().Err))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.FormStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)),
		styles.HelpStyle.Render("Tab/↑↓: Move • Enter: Next / Submit • "+toggle+" • Esc: Cancel"),
	)
}

// Getter methods for testing and integration
func (l *LoginComponent) GetMode() Mode {
	return l.mode
}

func (l *LoginComponent) GetFocus() int {
	return l.focus
}

func (l *LoginComponent) GetValue(i int) string {
	if i < 0 || i >= len(l.fields) {
		return ""
	}
	return l.fields[i].value
}

func (l *LoginComponent) GetMessage() string {
	return l.message
}

func (l *LoginComponent) IsSubmitting() bool {
	return l.submitting
}

func (l *LoginComponent) SetSize(width, height int) {
	l.width = width
	l.height = height
}
