package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"podcast-tui/internal/api"
)

var (
	errPlaylistName = errors.New("playlist name is required")
	errEpisodeID    = errors.New("an episode is required, pass -episode id")
)

func (e *env) categories(ctx context.Context) error {
	categories, err := e.client.Categories.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		fmt.Println("No categories.")
		return nil
	}
	for i, c := range categories {
		fmt.Printf("%2d. %s [id %d]\n", i+1, c.Name, c.ID)
	}
	return nil
}

func (e *env) showCategory(ctx context.Context, id int64) error {
	category, err := e.client.Categories.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	podcasts, err := e.client.Podcasts.List(ctx, api.PodcastFilter{Category: id})
	if err != nil {
		return fmt.Errorf("failed to load podcasts: %w", err)
	}

	fmt.Printf("Category: %s\n\n", category.Name)
	if len(podcasts) == 0 {
		fmt.Println("No podcasts in this category.")
		return nil
	}
	printPodcasts(podcasts)
	return nil
}

func (e *env) myPodcasts(ctx context.Context) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	podcasts, err := e.client.Podcasts.Mine(ctx)
	if err != nil {
		return fmt.Errorf("failed to load your podcasts: %w", err)
	}
	if len(podcasts) == 0 {
		fmt.Println("You have not created any podcasts.")
		return nil
	}
	printPodcasts(podcasts)
	return nil
}

func (e *env) showPlaylist(ctx context.Context, id int64) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	pl, err := e.client.Playlists.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get playlist: %w", err)
	}

	fmt.Printf("Playlist: %s\n\n", pl.Name)
	if len(pl.Episodes) == 0 {
		fmt.Println("This playlist is empty.")
		return nil
	}
	for i, ep := range pl.Episodes {
		fmt.Printf("%2d. %s [id %d]\n", i+1, ep.Title, ep.ID)
		fmt.Printf("    %s | Duration: %s\n", ep.PodcastTitle, ep.DurationString())
	}
	return nil
}

func (e *env) createPlaylist(ctx context.Context, name string) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errPlaylistName
	}
	pl, err := e.client.Playlists.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	fmt.Printf("✅ Created playlist %q [id %d]\n", pl.Name, pl.ID)
	return nil
}

func (e *env) renamePlaylist(ctx context.Context, id int64, name string) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w, pass -name", errPlaylistName)
	}
	pl, err := e.client.Playlists.Rename(ctx, id, name)
	if err != nil {
		return fmt.Errorf("failed to rename playlist: %w", err)
	}
	fmt.Printf("✅ Renamed playlist %d to %q\n", pl.ID, pl.Name)
	return nil
}

func (e *env) deletePlaylist(ctx context.Context, id int64) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	if err := e.client.Playlists.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	fmt.Printf("🗑  Deleted playlist %d\n", id)
	return nil
}

func (e *env) addToPlaylist(ctx context.Context, playlistID, episodeID int64) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	if episodeID == 0 {
		return errEpisodeID
	}
	resp, err := e.client.Playlists.AddEpisode(ctx, playlistID, episodeID)
	if err != nil {
		return fmt.Errorf("failed to add episode: %w", err)
	}
	fmt.Printf("✅ %s\n", messageOr(resp.Message, "Episode added"))
	return nil
}

func (e *env) removeFromPlaylist(ctx context.Context, playlistID, episodeID int64) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	if episodeID == 0 {
		return errEpisodeID
	}
	resp, err := e.client.Playlists.RemoveEpisode(ctx, playlistID, episodeID)
	if err != nil {
		return fmt.Errorf("failed to remove episode: %w", err)
	}
	fmt.Printf("✅ %s\n", messageOr(resp.Message, "Episode removed"))
	return nil
}

// profile refreshes the cached user from the server and prints it
func (e *env) profile(ctx context.Context) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	user, err := e.client.Auth.Profile(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if err := e.session.UpdateUser(*user); err != nil {
		e.log.Warn().Err(err).Msg("failed to store profile")
	}
	return e.whoami()
}

// updateProfile prompts for each editable field. A blank answer keeps the current value.
func (e *env) updateProfile(ctx context.Context, in io.Reader) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	current, err := e.client.Auth.Profile(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	reader := bufio.NewReader(in)
	ask := func(label, value string) (string, error) {
		fmt.Printf("%s [%s]: ", label, value)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
		return value, nil
	}

	next := *current
	if next.FirstName, err = ask("First name", current.FirstName); err != nil {
		return err
	}
	if next.LastName, err = ask("Last name", current.LastName); err != nil {
		return err
	}
	if next.Email, err = ask("Email", current.Email); err != nil {
		return err
	}

	updated, err := e.client.Auth.UpdateProfile(ctx, next)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if err := e.session.UpdateUser(*updated); err != nil {
		return err
	}
	fmt.Printf("✅ Profile updated for %s\n", updated.FullName())
	return nil
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
