package audio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"podcast-tui/internal/podcast"
)

// ErrNoMedia is returned for an episode without an audio file
var ErrNoMedia = errors.New("episode has no audio file")

// StreamInfo represents a playable episode stream
type StreamInfo struct {
	URL      string
	Format   string
	Duration time.Duration
	Episode  podcast.Episode
}

// StreamResolver turns an episode into something the Player can consume
type StreamResolver interface {
	// Resolve fetches the episode by id and returns its stream
	Resolve(ctx context.Context, episodeID int64) (*StreamInfo, error)

	// ResolveEpisode returns the stream of an already loaded episode
	ResolveEpisode(ctx context.Context, ep podcast.Episode) (*StreamInfo, error)

	// ValidateStreamURL checks if a streaming URL is reachable
	ValidateStreamURL(ctx context.Context, streamURL string) (bool, error)
}

// EpisodeSource loads episode details. *api.EpisodesService satisfies it.
type EpisodeSource interface {
	Get(ctx context.Context, id int64) (*podcast.Episode, error)
}

// EpisodeResolver implements StreamResolver against the podcast API
type EpisodeResolver struct {
	episodes   EpisodeSource
	baseURL    *url.URL
	httpClient *http.Client
}

// NewEpisodeResolver creates a resolver. Relative media paths are resolved against apiURL.
func NewEpisodeResolver(episodes EpisodeSource, apiURL string) (*EpisodeResolver, error) {
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	return &EpisodeResolver{
		episodes:   episodes,
		baseURL:    base,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Resolve fetches the episode by id and returns its stream
func (r *EpisodeResolver) Resolve(ctx context.Context, episodeID int64) (*StreamInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if episodeID <= 0 {
		return nil, fmt.Errorf("invalid episode ID: %d", episodeID)
	}

	ep, err := r.episodes.Get(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get episode %d: %w", episodeID, err)
	}
	return r.streamInfo(*ep)
}

// ResolveEpisode returns the stream of ep, fetching the episode again when it
// carries no media URL (list payloads omit it).
func (r *EpisodeResolver) ResolveEpisode(ctx context.Context, ep podcast.Episode) (*StreamInfo, error) {
	if ep.MediaURL() == "" {
		return r.Resolve(ctx, ep.ID)
	}
	return r.streamInfo(ep)
}

func (r *EpisodeResolver) streamInfo(ep podcast.Episode) (*StreamInfo, error) {
	raw := ep.MediaURL()
	if raw == "" {
		return nil, fmt.Errorf("episode %d: %w", ep.ID, ErrNoMedia)
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid media URL %q: %w", raw, err)
	}
	streamURL := r.baseURL.ResolveReference(ref).String()

	return &StreamInfo{
		URL:      streamURL,
		Format:   FormatFromURL(streamURL),
		Duration: time.Duration(ep.Duration) * time.Second,
		Episode:  ep,
	}, nil
}

// ValidateStreamURL checks if stream URL is valid and reachable
func (r *EpisodeResolver) ValidateStreamURL(ctx context.Context, streamURL string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if streamURL == "" {
		return false, ErrEmptyURL
	}

	parsedURL, err := url.Parse(streamURL)
	if err != nil {
		return false, fmt.Errorf("invalid URL format: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("invalid URL scheme: %s", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, streamURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// Unreachable is an answer, not an error
		return false, nil
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// FormatFromURL guesses the container from the path extension. Unknown is "mp3".
func FormatFromURL(streamURL string) string {
	u, err := url.Parse(streamURL)
	if err != nil {
		return "mp3"
	}
	switch ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), "."); ext {
	case "wav", "mp3":
		return ext
	default:
		return "mp3"
	}
}
