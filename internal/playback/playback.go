package playback

import (
	"sync"

	"podcast-tui/internal/podcast"
)

// State is what is selected for playback. It never tracks progress.
type State struct {
	Current   *podcast.Episode
	IsPlaying bool
}

// Listener is called with the new state after every change
type Listener func(State)

// Store holds the current episode selection
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// SetCurrentEpisode replaces the selection unconditionally and marks it playing
func (s *Store) SetCurrentEpisode(ep podcast.Episode) {
	s.set(State{Current: &ep, IsPlaying: true})
}

// Stop clears the selection
func (s *Store) Stop() {
	s.set(State{})
}

// Current returns the selected episode, or nil
func (s *Store) Current() *podcast.Episode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Current
}

// IsPlaying reports whether an episode is selected for playback
func (s *Store) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsPlaying
}

// State returns a snapshot
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) set(next State) {
	s.mu.Lock()
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}
