package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"github.com/joho/godotenv"

	"podcast-tui/internal/storage"
)

const (
	AppName        = "podcast-tui"
	KeyringService = "podcast-tui"

	DefaultHTTPTimeout = 30 * time.Second
	DefaultLogLevel    = "info"
)

// Environment variables
const (
	EnvAPIURL          = "PODCAST_API_URL"
	EnvHTTPTimeout     = "PODCAST_HTTP_TIMEOUT"
	EnvLogLevel        = "PODCAST_LOG_LEVEL"
	EnvLogFile         = "PODCAST_LOG_FILE"
	EnvKeyringBackend  = "PODCAST_KEYRING_BACKEND"
	EnvKeyringPassword = "PODCAST_KEYRING_PASSWORD"
)

type Config struct {
	APIURL          string
	HTTPTimeout     time.Duration
	LogLevel        string
	LogFile         string
	KeyringBackend  string
	KeyringPassword string
	ConfigDir       string
}

// Load reads the configuration from the environment, after loading a .env file
// from the working directory if there is one.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dir := getConfigDir()
	cfg := &Config{
		APIURL:          strings.TrimRight(os.Getenv(EnvAPIURL), "/"),
		HTTPTimeout:     DefaultHTTPTimeout,
		LogLevel:        getEnv(EnvLogLevel, DefaultLogLevel),
		LogFile:         getEnv(EnvLogFile, filepath.Join(dir, AppName+".log")),
		KeyringBackend:  strings.ToLower(os.Getenv(EnvKeyringBackend)),
		KeyringPassword: os.Getenv(EnvKeyringPassword),
		ConfigDir:       dir,
	}

	if cfg.APIURL == "" {
		return nil, fmt.Errorf("%s environment variable must be set", EnvAPIURL)
	}

	if raw := os.Getenv(EnvHTTPTimeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("invalid %s %q: want a positive duration such as 30s", EnvHTTPTimeout, raw)
		}
		cfg.HTTPTimeout = timeout
	}

	switch cfg.KeyringBackend {
	case "", "file":
	default:
		return nil, fmt.Errorf("invalid %s %q: only \"file\" can be forced", EnvKeyringBackend, cfg.KeyringBackend)
	}

	return cfg, nil
}

// OpenStore opens the OS keyring that holds tokens and preferences
func (c *Config) OpenStore() (*storage.KeyringStore, error) {
	ring, err := keyring.Open(c.keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return storage.NewKeyringStore(ring, "Podcast TUI"), nil
}

func (c *Config) keyringConfig() keyring.Config {
	// Keyring backends to try in order
	backends := []keyring.BackendType{
		keyring.SecretServiceBackend,
		keyring.KeychainBackend,
		keyring.WinCredBackend,
		keyring.FileBackend,
	}
	if c.KeyringBackend == "file" {
		backends = []keyring.BackendType{keyring.FileBackend}
	}

	prompt := keyring.TerminalPrompt
	if c.KeyringPassword != "" {
		prompt = keyring.FixedStringPrompt(c.KeyringPassword)
	}

	return keyring.Config{
		ServiceName:      KeyringService,
		AllowedBackends:  backends,
		FileDir:          filepath.Join(c.ConfigDir, "keyring"),
		FilePasswordFunc: prompt,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(homeDir, ".config", AppName)
}
