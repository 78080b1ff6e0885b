package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"podcast-tui/internal/api"
	"podcast-tui/internal/podcast"
)

// Backend adapts *api.Client to the narrow interfaces the components consume.
// List endpoints degrade a malformed body to an empty list; every other error
// is surfaced with a message fit for display.
type Backend struct {
	client *api.Client
	log    zerolog.Logger
}

// NewBackend creates a backend over client
func NewBackend(client *api.Client, logger zerolog.Logger) *Backend {
	return &Backend{
		client: client,
		log:    logger.With().Str("component", "ui").Logger(),
	}
}

// displayError keeps the cause for errors.Is while rendering a friendly message
type displayError struct {
	msg string
	err error
}

func (e *displayError) Error() string { return e.msg }
func (e *displayError) Unwrap() error { return e.err }

func (b *Backend) fail(err error, fallback string) error {
	b.log.Warn().Err(err).Msg(fallback)
	return &displayError{msg: api.UserMessage(err, fallback), err: err}
}

// degrade reports whether err is a malformed list body that should render as empty
func (b *Backend) degrade(err error, what string) bool {
	if errors.Is(err, api.ErrMalformedResponse) {
		b.log.Error().Err(err).Str("list", what).Msg("rendering empty list for malformed response")
		return true
	}
	return false
}

// Search implements search.Searcher
func (b *Backend) Search(ctx context.Context, query string) (*podcast.SearchResult, error) {
	res, err := b.client.Search.Query(ctx, query)
	if err != nil {
		if b.degrade(err, "search") {
			return &podcast.SearchResult{}, nil
		}
		return nil, b.fail(err, "Search failed")
	}
	return res, nil
}

// Trending implements browse.Catalog
func (b *Backend) Trending(ctx context.Context) ([]podcast.PodcastSummary, error) {
	out, err := b.client.Search.Trending(ctx)
	if err != nil {
		if b.degrade(err, "trending") {
			return nil, nil
		}
		return nil, b.fail(err, "Could not load trending podcasts")
	}
	return out, nil
}

// RecentEpisodes implements browse.Catalog
func (b *Backend) RecentEpisodes(ctx context.Context) ([]podcast.EpisodeSummary, error) {
	out, err := b.client.Episodes.Recent(ctx)
	if err != nil {
		if b.degrade(err, "recent episodes") {
			return nil, nil
		}
		return nil, b.fail(err, "Could not load recent episodes")
	}
	return out, nil
}

// PodcastEpisodes implements browse.Catalog
func (b *Backend) PodcastEpisodes(ctx context.Context, podcastID int64) ([]podcast.EpisodeSummary, error) {
	out, err := b.client.Episodes.ForPodcast(ctx, podcastID)
	if err != nil {
		if b.degrade(err, "podcast episodes") {
			return nil, nil
		}
		return nil, b.fail(err, "Could not load episodes")
	}
	return out, nil
}

// Subscribe implements browse.Catalog
func (b *Backend) Subscribe(ctx context.Context, podcastID int64) (string, error) {
	resp, err := b.client.Podcasts.Subscribe(ctx, podcastID)
	if err != nil {
		return "", b.fail(err, "Could not subscribe")
	}
	return messageOr(resp, "Subscribed"), nil
}

// Unsubscribe implements browse.Catalog
func (b *Backend) Unsubscribe(ctx context.Context, podcastID int64) (string, error) {
	resp, err := b.client.Podcasts.Unsubscribe(ctx, podcastID)
	if err != nil {
		return "", b.fail(err, "Could not unsubscribe")
	}
	return messageOr(resp, "Unsubscribed"), nil
}

// Categories implements browse.Catalog
func (b *Backend) Categories(ctx context.Context) ([]podcast.Category, error) {
	out, err := b.client.Categories.List(ctx)
	if err != nil {
		if b.degrade(err, "categories") {
			return nil, nil
		}
		return nil, b.fail(err, "Could not load categories")
	}
	return out, nil
}

// PodcastsInCategory implements browse.Catalog
func (b *Backend) PodcastsInCategory(ctx context.Context, categoryID int64) ([]podcast.PodcastSummary, error) {
	out, err := b.client.Podcasts.List(ctx, api.PodcastFilter{Category: categoryID})
	if err != nil {
		if b.degrade(err, "category podcasts") {
			return nil, nil
		}
		return nil, b.fail(err, "Could not load podcasts")
	}
	return out, nil
}

// Subscriptions implements library.Library
func (b *Backend) Subscriptions(ctx context.Context) ([]podcast.Subscription, error) {
	out, err := b.client.Subscriptions.List(ctx)
	if err != nil {
		if b.degrade(err, "subscriptions") {
			return nil, nil
		}
		return nil, b.fail(err, "Could not load subscriptions")
	}
	return out, nil
}

// Playlists implements library.Library
func (b *Backend) Playlists(ctx context.Context) ([]podcast.Playlist, error) {
	out, err := b.client.Playlists.List(ctx)
	if err != nil {
		if b.degrade(err, "playlists") {
			return nil, nil
		}
		return nil, b.fail(err, "Could not load playlists")
	}
	return out, nil
}

// Playlist implements library.Library
func (b *Backend) Playlist(ctx context.Context, id int64) (*podcast.Playlist, error) {
	out, err := b.client.Playlists.Get(ctx, id)
	if err != nil {
		return nil, b.fail(err, "Could not load playlist")
	}
	return out, nil
}

// MyPodcasts implements library.Library
func (b *Backend) MyPodcasts(ctx context.Context) ([]podcast.PodcastSummary, error) {
	out, err := b.client.Podcasts.Mine(ctx)
	if err != nil {
		if b.degrade(err, "my podcasts") {
			return nil, nil
		}
		return nil, b.fail(err, "Could not load your podcasts")
	}
	return out, nil
}

// CreatePlaylist implements library.Library and playlist.Store
func (b *Backend) CreatePlaylist(ctx context.Context, name string) (*podcast.Playlist, error) {
	out, err := b.client.Playlists.Create(ctx, name)
	if err != nil {
		return nil, b.fail(err, "Could not create playlist")
	}
	return out, nil
}

// RenamePlaylist implements library.Library
func (b *Backend) RenamePlaylist(ctx context.Context, id int64, name string) (*podcast.Playlist, error) {
	out, err := b.client.Playlists.Rename(ctx, id, name)
	if err != nil {
		return nil, b.fail(err, "Could not rename playlist")
	}
	return out, nil
}

// DeletePlaylist implements library.Library
func (b *Backend) DeletePlaylist(ctx context.Context, id int64) error {
	if err := b.client.Playlists.Delete(ctx, id); err != nil {
		return b.fail(err, "Could not delete playlist")
	}
	return nil
}

// AddToPlaylist implements playlist.Store
func (b *Backend) AddToPlaylist(ctx context.Context, playlistID, episodeID int64) (string, error) {
	resp, err := b.client.Playlists.AddEpisode(ctx, playlistID, episodeID)
	if err != nil {
		return "", b.fail(err, "Could not add episode")
	}
	return messageOr(resp, "Episode added"), nil
}

// RemoveFromPlaylist implements library.Library
func (b *Backend) RemoveFromPlaylist(ctx context.Context, playlistID, episodeID int64) (string, error) {
	resp, err := b.client.Playlists.RemoveEpisode(ctx, playlistID, episodeID)
	if err != nil {
		return "", b.fail(err, "Could not remove episode")
	}
	return messageOr(resp, "Episode removed"), nil
}

// Stats implements library.Library
func (b *Backend) Stats(ctx context.Context) (*podcast.Stats, error) {
	out, err := b.client.Stats.Get(ctx)
	if err != nil {
		if b.degrade(err, "stats") {
			return &podcast.Stats{}, nil
		}
		return nil, b.fail(err, "Could not load stats")
	}
	return out, nil
}

// Profile fetches the signed in user's record
func (b *Backend) Profile(ctx context.Context) (*podcast.User, error) {
	out, err := b.client.Auth.Profile(ctx)
	if err != nil {
		return nil, b.fail(err, "Could not load profile")
	}
	return out, nil
}

func messageOr(resp *podcast.MessageResponse, fallback string) string {
	if resp == nil || resp.Message == "" {
		return fallback
	}
	return resp.Message
}
