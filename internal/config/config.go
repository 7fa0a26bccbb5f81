package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultListenAddr  = ":8080"
	defaultDBPath      = "prism.db"
	defaultProviderURL = "https://api.nanoimage.dev"
	defaultStaticDir   = "."

	envListenAddr  = "PRISM_LISTEN_ADDR"
	envDBPath      = "PRISM_DB_PATH"
	envLogLevel    = "PRISM_LOG_LEVEL"
	envProviderKey = "PRISM_PROVIDER_API_KEY"
	envProviderURL = "PRISM_PROVIDER_URL"
	envStaticDir   = "PRISM_STATIC_DIR"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr  string
	DBPath      string
	StaticDir   string
	ProviderKey string
	ProviderURL string
	LogLevel    slog.Level
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is merged in first, without
// overriding variables already set in the process environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:  defaultListenAddr,
		DBPath:      defaultDBPath,
		StaticDir:   defaultStaticDir,
		ProviderURL: defaultProviderURL,
		LogLevel:    slog.LevelInfo,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envStaticDir); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv(envProviderKey); v != "" {
		cfg.ProviderKey = v
	}
	if v := os.Getenv(envProviderURL); v != "" {
		cfg.ProviderURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}

	return cfg
}

// HasProviderKey reports whether a provider credential was configured.
// Its absence must not prevent startup; generation requests fail fast instead.
func (c Config) HasProviderKey() bool {
	return c.ProviderKey != ""
}

// KeyTail returns the last four characters of the provider credential for
// configuration introspection, or the empty string when none is set.
func (c Config) KeyTail() string {
	if len(c.ProviderKey) < 4 {
		return c.ProviderKey
	}
	return c.ProviderKey[len(c.ProviderKey)-4:]
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
