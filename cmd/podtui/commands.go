package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/99designs/keyring"

	"podcast-tui/internal/audio"
	"podcast-tui/internal/podcast"
	"podcast-tui/internal/prefs"
)

var errNotSignedIn = errors.New("not signed in, run with -login first")

func (e *env) requireSession() error {
	if !e.session.State().IsAuthenticated {
		return errNotSignedIn
	}
	return nil
}

func (e *env) login(ctx context.Context, username string) error {
	password, err := keyring.TerminalPrompt(fmt.Sprintf("Password for %s", username))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := e.session.Login(ctx, username, password); err != nil {
		if msg := e.session.State().Err; msg != "" {
			return errors.New(msg)
		}
		return err
	}

	user := e.session.State().User
	fmt.Printf("✅ Signed in as %s (%s)\n", user.FullName(), user.Username)
	return nil
}

func (e *env) register(ctx context.Context) error {
	in := bufio.NewReader(os.Stdin)
	ask := func(label string) (string, error) {
		fmt.Printf("%s: ", label)
		line, err := in.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimSpace(line), nil
	}

	var (
		req podcast.RegisterRequest
		err error
	)
	if req.Username, err = ask("Username"); err != nil {
		return err
	}
	if req.Email, err = ask("Email"); err != nil {
		return err
	}
	if req.FirstName, err = ask("First name"); err != nil {
		return err
	}
	if req.LastName, err = ask("Last name"); err != nil {
		return err
	}
	if req.Password, err = keyring.TerminalPrompt("Password"); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if req.PasswordConfirm, err = keyring.TerminalPrompt("Confirm password"); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := e.session.Register(ctx, req); err != nil {
		if msg := e.session.State().Err; msg != "" {
			return errors.New(msg)
		}
		return err
	}

	fmt.Printf("✅ Account created, signed in as %s\n", req.Username)
	return nil
}

func (e *env) logout(ctx context.Context) {
	e.session.Logout(ctx)
	fmt.Println("Signed out.")
}

func (e *env) whoami() error {
	if err := e.requireSession(); err != nil {
		return err
	}

	user := e.session.State().User
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Name: %s\n", user.FullName())
	if user.Email != "" {
		fmt.Printf("Email: %s\n", user.Email)
	}
	if exp := e.tokens.ExpiresAt(); !exp.IsZero() {
		fmt.Printf("Access token expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func (e *env) search(ctx context.Context, query string) error {
	fmt.Printf("🔍 Searching for: %s\n\n", query)

	res, err := e.client.Search.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if _, err := e.prefs.AddRecentSearch(query); err != nil {
		e.log.Warn().Err(err).Msg("failed to save recent search")
	}

	if res.Empty() {
		fmt.Println("No results found.")
		return nil
	}

	if len(res.Podcasts) > 0 {
		fmt.Printf("Podcasts (%d):\n\n", len(res.Podcasts))
		printPodcasts(res.Podcasts)
	}
	if len(res.Episodes) > 0 {
		fmt.Printf("Episodes (%d):\n\n", len(res.Episodes))
		printEpisodes(res.Episodes)
	}
	return nil
}

func (e *env) trending(ctx context.Context) error {
	podcasts, err := e.client.Search.Trending(ctx)
	if err != nil {
		return fmt.Errorf("failed to load trending podcasts: %w", err)
	}
	if len(podcasts) == 0 {
		fmt.Println("Nothing is trending right now.")
		return nil
	}
	fmt.Printf("🔥 Trending podcasts:\n\n")
	printPodcasts(podcasts)
	return nil
}

func (e *env) showPodcast(ctx context.Context, id int64) error {
	p, err := e.client.Podcasts.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get podcast: %w", err)
	}
	episodes, err := e.client.Episodes.ForPodcast(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get episodes: %w", err)
	}

	fmt.Printf("Title: %s\n", p.Title)
	fmt.Printf("Creator: %s\n", p.CreatorName)
	if p.CategoryName != "" {
		fmt.Printf("Category: %s\n", p.CategoryName)
	}
	if p.Description != "" {
		fmt.Printf("Description: %s\n", p.Description)
	}
	fmt.Println()

	if len(episodes) == 0 {
		fmt.Println("No episodes yet.")
		return nil
	}
	fmt.Printf("Episodes (%d):\n\n", len(episodes))
	printEpisodes(episodes)
	return nil
}

func (e *env) showEpisode(ctx context.Context, id int64) error {
	ep, err := e.client.Episodes.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get episode: %w", err)
	}

	fmt.Printf("Title: %s\n", ep.Title)
	fmt.Printf("Podcast: %s\n", ep.PodcastTitle)
	fmt.Printf("Duration: %s\n", ep.DurationString())
	if ep.Description != "" {
		fmt.Printf("Description: %s\n", ep.Description)
	}
	if url := ep.MediaURL(); url != "" {
		fmt.Printf("Audio: %s\n", url)
	}
	return nil
}

func (e *env) open(ctx context.Context, id int64) error {
	info, err := e.resolver.Resolve(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Opening %s in the browser...\n", info.Episode.Title)
	return audio.NewBrowserOpener().Open(ctx, info.URL)
}

func (e *env) playlists(ctx context.Context) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	playlists, err := e.client.Playlists.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load playlists: %w", err)
	}
	if len(playlists) == 0 {
		fmt.Println("You have no playlists.")
		return nil
	}
	for i, pl := range playlists {
		fmt.Printf("%2d. %s (%d episodes) [id %d]\n", i+1, pl.Name, pl.EpisodeCount, pl.ID)
	}
	return nil
}

func (e *env) subscriptions(ctx context.Context) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	subs, err := e.client.Subscriptions.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load subscriptions: %w", err)
	}
	if len(subs) == 0 {
		fmt.Println("You have no subscriptions.")
		return nil
	}
	for i, s := range subs {
		fmt.Printf("%2d. %s [podcast %d]\n", i+1, s.PodcastTitle, s.Podcast)
	}
	return nil
}

func (e *env) stats(ctx context.Context) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	st, err := e.client.Stats.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	fmt.Printf("Podcasts created: %d\n", st.PodcastsCreated)
	fmt.Printf("Playlists created: %d\n", st.PlaylistsCreated)
	fmt.Printf("Subscriptions: %d\n", st.Subscriptions)
	return nil
}

func (e *env) setTheme(name string) error {
	theme, err := prefs.ParseTheme(name)
	if err != nil {
		return err
	}
	if err := e.prefs.SetTheme(theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	fmt.Printf("Theme set to %s\n", theme)
	return nil
}

func printPodcasts(podcasts []podcast.PodcastSummary) {
	for i, p := range podcasts {
		fmt.Printf("%2d. %s [id %d]\n", i+1, p.Title, p.ID)
		if p.CreatorName != "" {
			fmt.Printf("    by %s\n", p.CreatorName)
		}
	}
	fmt.Println()
}

func printEpisodes(episodes []podcast.EpisodeSummary) {
	for i, ep := range episodes {
		fmt.Printf("%2d. %s [id %d]\n", i+1, ep.Title, ep.ID)
		fmt.Printf("    %s | Duration: %s\n", ep.PodcastTitle, ep.DurationString())
	}
	fmt.Println()
}
