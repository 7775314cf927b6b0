package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the drawing server.
type Config struct {
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool
	LogLevel         string
	LogFile          string

	// Local cache settings
	CacheBackend     string
	CacheDir         string
	CacheDB          string
	SaveDebounceMS   int
	StylesFile       string
	SessionTimeoutMS int

	// Default surface for sessions opened without a viewport
	SurfaceWidth  int
	SurfaceHeight int

	// Remote sync targets
	SyncURL           string
	SyncTimeoutMS     int
	JournalDir        string
	JournalMaxMB      int
	JournalRotateCron string

	// Rendered chart archive; empty disables snapshots
	SnapshotDir string

	// Mirroring into a live TradingView tab over CDP
	TVSync       bool
	CDPAddress   string
	CDPPort      int
	TabURLFilter string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		BindAddr:          getEnvOrDefault("DRAWING_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:    splitList(getEnvOrDefault("DRAWING_PORT_CANDIDATES", "127.0.0.1:8191,127.0.0.1:8192")),
		PortAutoFallback:  getEnvBoolOrDefault("DRAWING_PORT_AUTO_FALLBACK", true),
		LogLevel:          strings.ToLower(getEnvOrDefault("DRAWING_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("DRAWING_LOG_FILE", "logs/drawing_server.log"),
		CacheBackend:      strings.ToLower(getEnvOrDefault("DRAWING_CACHE_BACKEND", "file")),
		CacheDir:          getEnvOrDefault("DRAWING_CACHE_DIR", "./drawings"),
		CacheDB:           getEnvOrDefault("DRAWING_CACHE_DB", "./drawings.db"),
		SaveDebounceMS:    getEnvIntOrDefault("DRAWING_SAVE_DEBOUNCE_MS", 300),
		StylesFile:        getEnvOrDefault("DRAWING_STYLES_FILE", ""),
		SessionTimeoutMS:  getEnvIntOrDefault("DRAWING_SESSION_TIMEOUT_MS", 5000),
		SurfaceWidth:      getEnvIntOrDefault("DRAWING_SURFACE_WIDTH", 1280),
		SurfaceHeight:     getEnvIntOrDefault("DRAWING_SURFACE_HEIGHT", 720),
		SyncURL:           getEnvOrDefault("DRAWING_SYNC_URL", ""),
		SyncTimeoutMS:     getEnvIntOrDefault("DRAWING_SYNC_TIMEOUT_MS", 10000),
		JournalDir:        getEnvOrDefault("DRAWING_JOURNAL_DIR", ""),
		JournalMaxMB:      getEnvIntOrDefault("DRAWING_JOURNAL_MAX_MB", 50),
		JournalRotateCron: getEnvOrDefault("DRAWING_JOURNAL_ROTATE_CRON", "0 0 0 * * *"),
		SnapshotDir:       getEnvOrDefault("DRAWING_SNAPSHOT_DIR", "./snapshots"),
		TVSync:            getEnvBoolOrDefault("DRAWING_TV_SYNC", false),
		CDPAddress:        getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:           getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9220),
		TabURLFilter:      getEnvOrDefault("DRAWING_TV_TAB_FILTER", "tradingview.com"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with and clamps the rest.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("config: DRAWING_CACHE_BACKEND %q must be file, sqlite or memory", c.CacheBackend)
	}
	if c.SurfaceWidth <= 0 || c.SurfaceHeight <= 0 {
		return fmt.Errorf("config: surface size %dx%d must be positive", c.SurfaceWidth, c.SurfaceHeight)
	}
	if c.SaveDebounceMS < 0 {
		c.SaveDebounceMS = 0
	}
	if c.SessionTimeoutMS < 100 {
		c.SessionTimeoutMS = 100
	}
	if c.SyncTimeoutMS < 1000 {
		c.SyncTimeoutMS = 1000
	}
	if c.JournalMaxMB < 1 {
		c.JournalMaxMB = 1
	}
	return nil
}

// SaveDebounce returns the remote sync debounce delay.
func (c *Config) SaveDebounce() time.Duration {
	return time.Duration(c.SaveDebounceMS) * time.Millisecond
}

// SessionTimeout bounds how long an API call waits on a busy session.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMS) * time.Millisecond
}

// SyncTimeout bounds a single remote sync.
func (c *Config) SyncTimeout() time.Duration {
	return time.Duration(c.SyncTimeoutMS) * time.Millisecond
}

// CDPURL returns the browser DevTools HTTP endpoint.
func (c *Config) CDPURL() string {
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
