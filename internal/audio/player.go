package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"github.com/rs/zerolog"
)

// ErrEmptyURL is returned when there is nothing to play
var ErrEmptyURL = errors.New("stream URL cannot be empty")

// PlayerState represents the current state of the audio player
type PlayerState int

const (
	StateStopped PlayerState = iota
	StateLoading
	StatePlaying
	StatePaused
)

func (s PlayerState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// FinishedFunc receives the terminal event of the stream started from streamURL:
// nil when it ended, the decode or network error otherwise.
type FinishedFunc func(streamURL string, err error)

// Player defines the interface for audio playback
type Player interface {
	// Play replaces whatever is playing with the stream at streamURL
	Play(ctx context.Context, streamURL string) error

	// Pause pauses the current playback
	Pause() error

	// Resume resumes paused playback
	Resume() error

	// Stop stops playback and releases the stream
	Stop() error

	// GetState returns the current player state
	GetState() PlayerState

	// GetPosition returns current playback position
	GetPosition() time.Duration

	// SetVolume sets playback volume (0.0 to 1.0)
	SetVolume(volume float64) error

	// GetVolume returns current volume level
	GetVolume() float64

	// OnFinished registers the terminal event callback
	OnFinished(fn FinishedFunc)

	// Close releases player resources
	Close() error
}

// BeepPlayer implements Player using the Beep audio library
type BeepPlayer struct {
	mu     sync.RWMutex
	state  PlayerState
	volume float64
	log    zerolog.Logger

	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	volumeCtrl *effects.Volume

	speakerInit    sync.Once
	speakerInitErr error
	speakerRate    beep.SampleRate

	// generation is bumped on every Play and Stop so a stale stream never reports
	generation uint64
	onFinished FinishedFunc

	httpClient *http.Client
}

// NewBeepPlayer creates a new Beep-based audio player
func NewBeepPlayer(logger zerolog.Logger) *BeepPlayer {
	return &BeepPlayer{
		state:  StateStopped,
		volume: 1.0,
		log:    logger.With().Str("component", "audio").Logger(),
		// No overall timeout: episodes stream for as long as they play
		httpClient: &http.Client{},
	}
}

// OnFinished registers fn as the terminal event callback
func (p *BeepPlayer) OnFinished(fn FinishedFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFinished = fn
}

// Play streams streamURL, replacing any current playback
func (p *BeepPlayer) Play(ctx context.Context, streamURL string) error {
	if streamURL == "" {
		return ErrEmptyURL
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if err := p.stopLocked(); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to stop existing playback: %w", err)
	}
	p.generation++
	gen := p.generation
	p.state = StateLoading
	p.mu.Unlock()

	// Network and decoding happen without the lock so Stop stays responsive
	streamer, format, err := p.openStream(ctx, streamURL)
	if err != nil {
		p.mu.Lock()
		if p.generation == gen {
			p.state = StateStopped
		}
		p.mu.Unlock()
		return fmt.Errorf("failed to load audio stream: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Stopped or replaced while loading
	if p.generation != gen {
		streamer.Close()
		return context.Canceled
	}

	p.speakerInit.Do(func() {
		p.speakerRate = format.SampleRate
		p.speakerInitErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if p.speakerInitErr != nil {
		streamer.Close()
		p.state = StateStopped
		return fmt.Errorf("failed to initialize speaker: %w", p.speakerInitErr)
	}

	p.streamer = streamer
	p.format = format
	// The speaker runs at the first stream's rate; later streams are resampled to it
	p.volumeCtrl = &effects.Volume{
		Streamer: beep.Resample(4, format.SampleRate, p.speakerRate, streamer),
		Base:     2,
		Volume:   volumeToBeepVolume(p.volume),
		Silent:   p.volume == 0,
	}
	p.ctrl = &beep.Ctrl{Streamer: p.volumeCtrl}

	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker locked
		go p.finished(gen, streamURL, streamer.Err())
	})))

	p.state = StatePlaying
	p.log.Info().Str("url", streamURL).Int("sample_rate", int(format.SampleRate)).Msg("playback started")
	return nil
}

func (p *BeepPlayer) finished(gen uint64, streamURL string, err error) {
	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}
	if stopErr := p.stopLocked(); stopErr != nil {
		p.log.Warn().Err(stopErr).Msg("failed to release finished stream")
	}
	fn := p.onFinished
	p.mu.Unlock()

	if err != nil {
		p.log.Error().Err(err).Str("url", streamURL).Msg("playback failed")
	} else {
		p.log.Info().Str("url", streamURL).Msg("playback ended")
	}
	if fn != nil {
		fn(streamURL, err)
	}
}

// Pause pauses the current playback
func (p *BeepPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePlaying {
		return fmt.Errorf("cannot pause: player is %s", p.state)
	}

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}

	p.state = StatePaused
	return nil
}

// Resume resumes paused playback
func (p *BeepPlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePaused {
		return fmt.Errorf("cannot resume: player is %s", p.state)
	}

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
	}

	p.state = StatePlaying
	return nil
}

// Stop stops playback. A stopped stream never reports a terminal event.
func (p *BeepPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	return p.stopLocked()
}

// GetState returns the current player state
func (p *BeepPlayer) GetState() PlayerState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// GetPosition returns current playback position
func (p *BeepPlayer) GetPosition() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.streamer == nil || p.format.SampleRate == 0 {
		return 0
	}

	speaker.Lock()
	position := p.streamer.Position()
	speaker.Unlock()

	return p.format.SampleRate.D(position)
}

// SetVolume sets playback volume (0.0 to 1.0)
func (p *BeepPlayer) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = volume
	if p.volumeCtrl != nil {
		speaker.Lock()
		p.volumeCtrl.Volume = volumeToBeepVolume(volume)
		p.volumeCtrl.Silent = volume == 0
		speaker.Unlock()
	}
	return nil
}

// GetVolume returns current volume level
func (p *BeepPlayer) GetVolume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

// Close releases player resources
func (p *BeepPlayer) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	p.httpClient.CloseIdleConnections()
	return nil
}

// stopLocked stops playback without acquiring lock (caller must hold lock)
func (p *BeepPlayer) stopLocked() error {
	if p.ctrl != nil {
		speaker.Clear()
	}

	var err error
	if p.streamer != nil {
		if closeErr := p.streamer.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close streamer: %w", closeErr)
		}
		p.streamer = nil
	}

	p.ctrl = nil
	p.volumeCtrl = nil
	p.state = StateStopped
	return err
}

// openStream requests streamURL and picks a decoder from the content type or extension
func (p *BeepPlayer) openStream(ctx context.Context, streamURL string) (beep.StreamSeekCloser, beep.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to download stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, beep.Format{}, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	decode := decoderFor(resp.Header.Get("Content-Type"), streamURL)
	streamer, format, err := decode(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode audio: %w", err)
	}
	return streamer, format, nil
}

type decoder func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

func decoderFor(contentType, streamURL string) decoder {
	contentType = strings.ToLower(contentType)
	if strings.Contains(contentType, "wav") || FormatFromURL(streamURL) == "wav" {
		return func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
			return wav.Decode(rc)
		}
	}
	// Podcast feeds are overwhelmingly MP3
	return mp3.Decode
}

// volumeToBeepVolume converts linear volume (0-1) to Beep's logarithmic volume
func volumeToBeepVolume(linearVolume float64) float64 {
	if linearVolume <= 0 {
		return -10
	}
	if linearVolume >= 1 {
		return 0
	}
	return (linearVolume - 1.0) * 2.0
}
