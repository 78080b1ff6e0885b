package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger opens the log file and returns a logger at the configured level.
// The terminal belongs to the TUI, so nothing is written to stderr.
func (c *Config) NewLogger() (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid %s %q: %w", EnvLogLevel, c.LogLevel, err)
	}

	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return NewLoggerTo(f, level), f, nil
}

// NewLoggerTo builds the application logger on top of w
func NewLoggerTo(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", AppName).Logger()
}
