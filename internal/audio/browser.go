package audio

import (
	"context"
	"fmt"

	"github.com/pkg/browser"
)

// BrowserOpener hands a stream to the system browser, for formats the speaker
// cannot decode or machines without an audio device.
type BrowserOpener struct {
	open func(url string) error
}

// NewBrowserOpener creates an opener backed by the default browser
func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{open: browser.OpenURL}
}

// Open opens streamURL in the browser
func (b *BrowserOpener) Open(ctx context.Context, streamURL string) error {
	if streamURL == "" {
		return ErrEmptyURL
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.open(streamURL); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
