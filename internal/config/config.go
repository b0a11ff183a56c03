// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Fetch engines.
const (
	EngineReader  = "reader"
	EngineBrowser = "browser"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Fetch   FetchConfig
	History HistoryConfig
	Log     LogConfig
	Labels  LabelsConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Port          string // default: "3000"
	DefaultLocale string // "zh" or "en"; default: "zh"
}

// FetchConfig controls how profile pages are retrieved.
type FetchConfig struct {
	// Engine is "reader" (hosted markdown reader) or "browser" (local Chrome).
	Engine string // default: "reader"

	ReaderBaseURL  string        // default: "https://r.jina.ai/"
	ProfileBaseURL string        // default: "https://www.tiktok.com/@"
	Timeout        time.Duration // default: 30s

	// ChromePath overrides the Chrome binary for the browser engine.
	ChromePath string

	// ChromeWSURL attaches the browser engine to a running Chrome through its
	// DevTools websocket instead of launching one. Takes precedence over ChromePath.
	ChromeWSURL string
}

// HistoryConfig controls query history persistence.
type HistoryConfig struct {
	// DatabaseURL selects Postgres; empty keeps history in memory.
	DatabaseURL   string
	RunMigrations bool          // default: true
	Limit         int           // default: 20
	Retention     time.Duration // in-memory store only; default: 24h
	AutoSave      bool          // default: false
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string // default: "info"
}

// LabelsConfig points at an optional extraction labels file.
type LabelsConfig struct {
	File string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          envOr("PORT", "3000"),
			DefaultLocale: envOr("DEFAULT_LOCALE", "zh"),
		},
		Fetch: FetchConfig{
			Engine:         strings.ToLower(envOr("FETCH_ENGINE", EngineReader)),
			ReaderBaseURL:  envOr("READER_BASE_URL", "https://r.jina.ai/"),
			ProfileBaseURL: envOr("PROFILE_BASE_URL", "https://www.tiktok.com/@"),
			Timeout:        envDurationOr("FETCH_TIMEOUT", 30*time.Second),
			ChromePath:     os.Getenv("CHROME_PATH"),
			ChromeWSURL:    os.Getenv("CHROME_WS_URL"),
		},
		History: HistoryConfig{
			DatabaseURL:   os.Getenv("DATABASE_URL"),
			RunMigrations: envBoolOr("RUN_MIGRATIONS", true),
			Limit:         envIntOr("HISTORY_LIMIT", 20),
			Retention:     envDurationOr("HISTORY_RETENTION", 24*time.Hour),
			AutoSave:      envBoolOr("AUTO_SAVE_HISTORY", false),
		},
		Log: LogConfig{
			Level: envOr("LOG_LEVEL", "info"),
		},
		Labels: LabelsConfig{
			File: os.Getenv("LABELS_FILE"),
		},
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Fetch.Engine {
	case EngineReader, EngineBrowser:
	default:
		return fmt.Errorf("FETCH_ENGINE must be %q or %q, got %q", EngineReader, EngineBrowser, c.Fetch.Engine)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.Fetch.Timeout)
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.History.Limit)
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
