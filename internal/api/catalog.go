package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"podcast-tui/internal/podcast"
)

// CategoriesService lists podcast categories
type CategoriesService struct {
	client *Client
}

// List returns every category
func (s *CategoriesService) List(ctx context.Context) ([]podcast.Category, error) {
	var out []podcast.Category
	if err := s.client.do(ctx, http.MethodGet, "/categories/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one category
func (s *CategoriesService) Get(ctx context.Context, id int64) (*podcast.Category, error) {
	var out podcast.Category
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/categories/%d/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PodcastFilter narrows a podcast listing. Zero values are omitted.
type PodcastFilter struct {
	Category int64
	Creator  int64
	Search   string
}

func (f PodcastFilter) values() url.Values {
	v := url.Values{}
	if f.Category != 0 {
		v.Set("category", strconv.FormatInt(f.Category, 10))
	}
	if f.Creator != 0 {
		v.Set("creator", strconv.FormatInt(f.Creator, 10))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	return v
}

// PodcastsService browses shows and manages subscriptions to them
type PodcastsService struct {
	client *Client
}

// List returns podcasts matching filter
func (s *PodcastsService) List(ctx context.Context, filter PodcastFilter) ([]podcast.PodcastSummary, error) {
	var out []podcast.PodcastSummary
	if err := s.client.do(ctx, http.MethodGet, "/podcasts/", filter.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one podcast
func (s *PodcastsService) Get(ctx context.Context, id int64) (*podcast.Podcast, error) {
	var out podcast.Podcast
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/podcasts/%d/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Mine returns podcasts created by the current user
func (s *PodcastsService) Mine(ctx context.Context) ([]podcast.PodcastSummary, error) {
	var out []podcast.PodcastSummary
	if err := s.client.do(ctx, http.MethodGet, "/podcasts/my_podcasts/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Subscribe subscribes the current user to a podcast
func (s *PodcastsService) Subscribe(ctx context.Context, id int64) (*podcast.MessageResponse, error) {
	var out podcast.MessageResponse
	if err := s.client.do(ctx, http.MethodPost, fmt.Sprintf("/podcasts/%d/subscribe/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unsubscribe removes the current user's subscription
func (s *PodcastsService) Unsubscribe(ctx context.Context, id int64) (*podcast.MessageResponse, error) {
	var out podcast.MessageResponse
	if err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/podcasts/%d/unsubscribe/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EpisodeFilter narrows an episode listing. Zero values are omitted.
type EpisodeFilter struct {
	Podcast int64
	Search  string
}

func (f EpisodeFilter) values() url.Values {
	v := url.Values{}
	if f.Podcast != 0 {
		v.Set("podcast", strconv.FormatInt(f.Podcast, 10))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	return v
}

// EpisodesService browses episodes
type EpisodesService struct {
	client *Client
}

// List returns episodes matching filter
func (s *EpisodesService) List(ctx context.Context, filter EpisodeFilter) ([]podcast.EpisodeSummary, error) {
	var out []podcast.EpisodeSummary
	if err := s.client.do(ctx, http.MethodGet, "/episodes/", filter.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one episode including its media URL
func (s *EpisodesService) Get(ctx context.Context, id int64) (*podcast.Episode, error) {
	var out podcast.Episode
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/episodes/%d/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recent returns the newest episodes across all podcasts
func (s *EpisodesService) Recent(ctx context.Context) ([]podcast.EpisodeSummary, error) {
	var out []podcast.EpisodeSummary
	if err := s.client.do(ctx, http.MethodGet, "/episodes/recent/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForPodcast returns the episodes of one podcast
func (s *EpisodesService) ForPodcast(ctx context.Context, podcastID int64) ([]podcast.EpisodeSummary, error) {
	return s.List(ctx, EpisodeFilter{Podcast: podcastID})
}
