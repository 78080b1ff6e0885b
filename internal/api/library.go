package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"podcast-tui/internal/podcast"
)

// PlaylistsService manages the current user's playlists
type PlaylistsService struct {
	client *Client
}

type playlistBody struct {
	Name string `json:"name"`
}

type episodeRef struct {
	EpisodeID int64 `json:"episode_id"`
}

// List returns the user's playlists
func (s *PlaylistsService) List(ctx context.Context) ([]podcast.Playlist, error) {
	var out []podcast.Playlist
	if err := s.client.do(ctx, http.MethodGet, "/playlists/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one playlist with its episodes
func (s *PlaylistsService) Get(ctx context.Context, id int64) (*podcast.Playlist, error) {
	var out podcast.Playlist
	if err := s.client.do(ctx, http.MethodGet, playlistPath(id, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create makes a new empty playlist
func (s *PlaylistsService) Create(ctx context.Context, name string) (*podcast.Playlist, error) {
	var out podcast.Playlist
	if err := s.client.do(ctx, http.MethodPost, "/playlists/", nil, playlistBody{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rename changes a playlist's name
func (s *PlaylistsService) Rename(ctx context.Context, id int64, name string) (*podcast.Playlist, error) {
	var out podcast.Playlist
	if err := s.client.do(ctx, http.MethodPut, playlistPath(id, ""), nil, playlistBody{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a playlist
func (s *PlaylistsService) Delete(ctx context.Context, id int64) error {
	return s.client.do(ctx, http.MethodDelete, playlistPath(id, ""), nil, nil, nil)
}

// AddEpisode appends an episode to a playlist
func (s *PlaylistsService) AddEpisode(ctx context.Context, playlistID, episodeID int64) (*podcast.MessageResponse, error) {
	var out podcast.MessageResponse
	err := s.client.do(ctx, http.MethodPost, playlistPath(playlistID, "add_episode/"), nil, episodeRef{EpisodeID: episodeID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveEpisode removes an episode from a playlist. The episode id travels in the DELETE body.
func (s *PlaylistsService) RemoveEpisode(ctx context.Context, playlistID, episodeID int64) (*podcast.MessageResponse, error) {
	var out podcast.MessageResponse
	err := s.client.do(ctx, http.MethodDelete, playlistPath(playlistID, "remove_episode/"), nil, episodeRef{EpisodeID: episodeID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func playlistPath(id int64, action string) string {
	return fmt.Sprintf("/playlists/%d/%s", id, action)
}

// SubscriptionsService lists the current user's subscriptions
type SubscriptionsService struct {
	client *Client
}

// List returns every subscription of the current user
func (s *SubscriptionsService) List(ctx context.Context) ([]podcast.Subscription, error) {
	var out []podcast.Subscription
	if err := s.client.do(ctx, http.MethodGet, "/subscriptions/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchService covers combined search and trending podcasts
type SearchService struct {
	client *Client
}

// Query searches podcasts and episodes by title
func (s *SearchService) Query(ctx context.Context, q string) (*podcast.SearchResult, error) {
	var out podcast.SearchResult
	if err := s.client.do(ctx, http.MethodGet, "/search/", url.Values{"q": {q}}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trending returns the currently trending podcasts
func (s *SearchService) Trending(ctx context.Context) ([]podcast.PodcastSummary, error) {
	var out []podcast.PodcastSummary
	if err := s.client.do(ctx, http.MethodGet, "/trending/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StatsService reports per-user counters
type StatsService struct {
	client *Client
}

// Get returns the current user's stats
func (s *StatsService) Get(ctx context.Context) (*podcast.Stats, error) {
	var out podcast.Stats
	if err := s.client.do(ctx, http.MethodGet, "/stats/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
