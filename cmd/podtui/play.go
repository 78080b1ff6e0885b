package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"podcast-tui/internal/audio"
	"podcast-tui/internal/playback"
	"podcast-tui/internal/podcast"
	"podcast-tui/internal/ui/components/player"
)

// play resolves one episode and plays it in a minimal player
func (e *env) play(ctx context.Context, id int64) error {
	fmt.Printf("🎵 Loading episode %d...\n", id)

	info, err := e.resolver.Resolve(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Episode: %s\n", info.Episode.Title)
	fmt.Printf("Podcast: %s\n", info.Episode.PodcastTitle)
	fmt.Printf("Duration: %s\n\n", info.Episode.DurationString())

	audioPlayer := audio.NewBeepPlayer(e.log)
	defer audioPlayer.Close()

	playerComponent := player.NewPlayerComponent(
		playback.NewStore(), audioPlayer, e.resolver, audio.NewBrowserOpener(),
	)

	playApp := &DirectPlayApp{
		player:  playerComponent,
		episode: info.Episode,
	}

	program := tea.NewProgram(playApp, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}
	if playApp.err != nil {
		return fmt.Errorf("playback failed: %w", playApp.err)
	}
	return nil
}

// DirectPlayApp is a minimal TUI app for playing a single episode
type DirectPlayApp struct {
	player  *player.PlayerComponent
	episode podcast.Episode
	err     error
	width   int
	height  int
}

func (a *DirectPlayApp) Init() tea.Cmd {
	episode := a.episode
	return tea.Batch(
		a.player.Init(),
		func() tea.Msg {
			return player.PlayEpisodeMsg{Episode: episode}
		},
	)
}

func (a *DirectPlayApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return a, tea.Quit
		}
		return a, a.forward(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.player.SetSize(msg.Width, msg.Height-2)
		return a, nil

	case player.PlaybackFailedMsg:
		a.err = msg.Error
		return a, tea.Quit

	case player.PlaybackFinishedMsg:
		cmd := a.forward(msg)
		// Nothing is queued after the single episode
		switch a.player.GetState() {
		case player.StateIdle:
			return a, tea.Quit
		case player.StateError:
			a.err = a.player.GetError()
			return a, tea.Quit
		}
		return a, cmd

	default:
		return a, a.forward(msg)
	}
}

func (a *DirectPlayApp) forward(msg tea.Msg) tea.Cmd {
	updated, cmd := a.player.Update(msg)
	a.player = updated.(*player.PlayerComponent)
	return cmd
}

func (a *DirectPlayApp) View() string {
	header := "Podcast TUI - Direct Play Mode (Press 'q' or Ctrl+C to quit)"
	return fmt.Sprintf("%s\n%s", header, a.player.View())
}
