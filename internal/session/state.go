package session

import "podcast-tui/internal/podcast"

// State is a snapshot of the client-side session
type State struct {
	User            *podcast.User
	IsAuthenticated bool
	Loading         bool
	Err             string
}

// Anonymous reports whether no user is signed in
func (s State) Anonymous() bool {
	return !s.IsAuthenticated
}

// Event is an input to Reduce
type Event interface {
	event()
}

type (
	// Started marks the beginning of a login or registration call
	Started struct{}

	// Authenticated is a successful login, registration or rehydration
	Authenticated struct {
		User podcast.User
	}

	// Failed is a login or registration that the backend refused
	Failed struct {
		Message string
	}

	// LoggedOut is an explicit logout
	LoggedOut struct{}

	// Expired is a refresh failure that tore the credentials down
	Expired struct {
		Message string
	}

	// UserUpdated replaces the cached user wholesale
	UserUpdated struct {
		User podcast.User
	}

	// ErrorCleared dismisses the current error message
	ErrorCleared struct{}
)

func (Started) event()       {}
func (Authenticated) event() {}
func (Failed) event()        {}
func (LoggedOut) event()     {}
func (Expired) event()       {}
func (UserUpdated) event()   {}
func (ErrorCleared) event()  {}

// Reduce returns the state that follows s after ev. It performs no I/O.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case Started:
		s.Loading = true
		s.Err = ""
		return s

	case Authenticated:
		user := e.User
		return State{User: &user, IsAuthenticated: true}

	case Failed:
		if s.IsAuthenticated {
			s.Loading = false
			s.Err = e.Message
			return s
		}
		return State{Err: e.Message}

	case LoggedOut:
		return State{}

	case Expired:
		// Nothing to expire when no one is signed in
		if !s.IsAuthenticated {
			return s
		}
		return State{Err: e.Message}

	case UserUpdated:
		if !s.IsAuthenticated {
			return s
		}
		user := e.User
		s.User = &user
		return s

	case ErrorCleared:
		s.Err = ""
		return s
	}
	return s
}
