package podcast

import (
	"fmt"
	"time"
)

// User represents the authenticated account
type User struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	DateJoined *time.Time `json:"date_joined,omitempty"`
}

// FullName returns the combined first and last name
func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Category groups podcasts by topic
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Podcast is the detail representation of a show
type Podcast struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CoverImage   string    `json:"cover_image,omitempty"`
	Category     int64     `json:"category"`
	CategoryName string    `json:"category_name"`
	Creator      int64     `json:"creator"`
	CreatorName  string    `json:"creator_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// PodcastSummary is the list representation of a show
type PodcastSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	CoverImage   string    `json:"cover_image,omitempty"`
	CreatorName  string    `json:"creator_name"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Episode is the detail representation of an episode, including its media URL
type Episode struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	AudioFile    string    `json:"audio_file"`
	AudioFileURL string    `json:"audio_file_url,omitempty"`
	Podcast      int64     `json:"podcast"`
	PodcastTitle string    `json:"podcast_title"`
	Duration     int64     `json:"duration"` // seconds
	CreatedAt    time.Time `json:"created_at"`
}

// MediaURL returns the URL the audio engine should stream
func (e Episode) MediaURL() string {
	if e.AudioFile != "" {
		return e.AudioFile
	}
	return e.AudioFileURL
}

// DurationString formats the episode length as m:ss or h:mm:ss
func (e Episode) DurationString() string {
	return formatSeconds(e.Duration)
}

// EpisodeSummary is the list representation of an episode. It carries no media URL.
type EpisodeSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	PodcastTitle string    `json:"podcast_title"`
	Duration     int64     `json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
}

// DurationString formats the episode length as m:ss or h:mm:ss
func (e EpisodeSummary) DurationString() string {
	return formatSeconds(e.Duration)
}

// Episode widens the summary to a detail value without a media URL
func (e EpisodeSummary) Episode() Episode {
	return Episode{
		ID:           e.ID,
		Title:        e.Title,
		PodcastTitle: e.PodcastTitle,
		Duration:     e.Duration,
		CreatedAt:    e.CreatedAt,
	}
}

// Playlist is a user-owned ordered collection of episodes
type Playlist struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	User         int64     `json:"user"`
	Episodes     []Episode `json:"episodes"`
	EpisodeCount int       `json:"episode_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subscription links the current user to a podcast
type Subscription struct {
	ID           int64     `json:"id"`
	User         int64     `json:"user"`
	UserName     string    `json:"user_name"`
	Podcast      int64     `json:"podcast"`
	PodcastTitle string    `json:"podcast_title"`
	CreatedAt    time.Time `json:"created_at"`
}

// SearchResult is returned by the combined search endpoint
type SearchResult struct {
	Podcasts []PodcastSummary `json:"podcasts"`
	Episodes []EpisodeSummary `json:"episodes"`
}

// Empty reports whether the search matched nothing
func (r SearchResult) Empty() bool {
	return len(r.Podcasts) == 0 && len(r.Episodes) == 0
}

// Stats summarises the current user's activity
type Stats struct {
	PodcastsCreated  int `json:"podcasts_created"`
	PlaylistsCreated int `json:"playlists_created"`
	Subscriptions    int `json:"subscriptions"`
}

// LoginResponse is returned by both login and registration
type LoginResponse struct {
	User    User   `json:"user"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Message string `json:"message,omitempty"`
}

// RegisterRequest is the registration form payload
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// MessageResponse is the body of action endpoints such as subscribe
type MessageResponse struct {
	Message string `json:"message"`
}

func formatSeconds(total int64) string {
	if total <= 0 {
		return "0:00"
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
