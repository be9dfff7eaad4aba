package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
// Values come from environment variables with sensible defaults.
//
// Environment Variables:
// HTTP:
// - HTTP_ADDR: listen address (default: :8085)
// - UI_ENABLED: serve the bundled UI (default: false)
// - UI_STATIC_DIR: directory with the UI build (default: /app/ui)
//
// Backend:
// - BACKEND_API_URL: base URL of the YouTube backend (required)
// - BACKEND_TIMEOUT: request timeout in seconds (default: 60)
// - VIDEO_QUALITY: default quality for video extraction (default: 720)
// - BACKEND_ACCESS_TOKEN: initial bearer token (optional)
// - BACKEND_REFRESH_TOKEN: refresh token (optional)
//
// Storage:
// - DOWNLOAD_DIR: where artifacts are written (default: /data/downloads)
// - DB_PATH: sqlite batch archive (default: /data/tubedesk.db)
// - PRUNE_CRON_EXPR: archive/artifact prune schedule (default: 0 3 * * *)
// - ARCHIVE_RETAIN_DAYS: how long archived batches are kept (default: 14)
//
// Batch:
// - PROGRESS_TICK_MS: simulated progress tick interval (default: 300)

type Config struct {
	HTTP    HTTPConfig    `json:"http"`
	Backend BackendConfig `json:"backend"`
	Storage StorageConfig `json:"storage"`
	Batch   BatchConfig   `json:"batch"`
}

type HTTPConfig struct {
	Addr        string `json:"addr"`
	UIEnabled   bool   `json:"ui_enabled"`
	UIStaticDir string `json:"ui_static_dir"`
}

// BackendConfig holds the connection settings for the external YouTube
// backend.
type BackendConfig struct {
	APIURL       string `json:"api_url"`
	Timeout      int    `json:"timeout"`
	VideoQuality string `json:"video_quality"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}

type StorageConfig struct {
	DownloadDir   string `json:"download_dir"`
	DBPath        string `json:"db_path"`
	PruneCronExpr string `json:"prune_cron_expr"`
	RetainDays    int    `json:"retain_days"`
}

type BatchConfig struct {
	ProgressTickMS int `json:"progress_tick_ms"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment
// variables and options.
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		HTTP: HTTPConfig{
			Addr:        getEnvString("HTTP_ADDR", ":8085"),
			UIEnabled:   getEnvBool("UI_ENABLED", false),
			UIStaticDir: getEnvString("UI_STATIC_DIR", "/app/ui"),
		},
		Backend: BackendConfig{
			APIURL:       getEnvString("BACKEND_API_URL", ""),
			Timeout:      getEnvInt("BACKEND_TIMEOUT", 60),
			VideoQuality: getEnvString("VIDEO_QUALITY", "720"),
			AccessToken:  getEnvString("BACKEND_ACCESS_TOKEN", ""),
			RefreshToken: getEnvString("BACKEND_REFRESH_TOKEN", ""),
		},
		Storage: StorageConfig{
			DownloadDir:   getEnvString("DOWNLOAD_DIR", "/data/downloads"),
			DBPath:        getEnvString("DB_PATH", "/data/tubedesk.db"),
			PruneCronExpr: getEnvString("PRUNE_CRON_EXPR", "0 3 * * *"),
			RetainDays:    getEnvInt("ARCHIVE_RETAIN_DAYS", 14),
		},
		Batch: BatchConfig{
			ProgressTickMS: getEnvInt("PROGRESS_TICK_MS", 300),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if strings.TrimSpace(c.Backend.APIURL) == "" {
		return fmt.Errorf("BACKEND_API_URL is required")
	}
	if c.Batch.ProgressTickMS <= 0 {
		return fmt.Errorf("PROGRESS_TICK_MS must be positive")
	}
	if c.Storage.RetainDays <= 0 {
		return fmt.Errorf("ARCHIVE_RETAIN_DAYS must be positive")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
