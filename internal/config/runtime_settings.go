package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

const DefaultRuntimeSettingsFile = "/app/config/settings.json"

// RuntimeSettings is the subset of the configuration that can be changed
// while the service is running. Updates are persisted to a JSON file so
// they survive restarts.
type RuntimeSettings struct {
	BackendAPIURL  string `json:"backend_api_url"`
	VideoQuality   string `json:"video_quality"`
	PruneCronExpr  string `json:"prune_cron_expr"`
	ProgressTickMS int    `json:"progress_tick_ms"`
}

func RuntimeSettingsFilePath() string {
	return getEnvString("SETTINGS_FILE", DefaultRuntimeSettingsFile)
}

func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.BackendAPIURL) == "" {
		return fmt.Errorf("backend_api_url is required")
	}
	if strings.TrimSpace(s.VideoQuality) == "" {
		return fmt.Errorf("video_quality is required")
	}
	if strings.TrimSpace(s.PruneCronExpr) == "" {
		return fmt.Errorf("prune_cron_expr is required")
	}
	if _, err := cron.ParseStandard(s.PruneCronExpr); err != nil {
		return fmt.Errorf("invalid prune_cron_expr: %w", err)
	}
	if s.ProgressTickMS <= 0 {
		return fmt.Errorf("progress_tick_ms must be positive")
	}
	return nil
}

func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		BackendAPIURL:  c.Backend.APIURL,
		VideoQuality:   c.Backend.VideoQuality,
		PruneCronExpr:  c.Storage.PruneCronExpr,
		ProgressTickMS: c.Batch.ProgressTickMS,
	}
}

func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		if strings.TrimSpace(settings.BackendAPIURL) != "" {
			c.Backend.APIURL = settings.BackendAPIURL
		}
		if strings.TrimSpace(settings.VideoQuality) != "" {
			c.Backend.VideoQuality = settings.VideoQuality
		}
		if strings.TrimSpace(settings.PruneCronExpr) != "" {
			c.Storage.PruneCronExpr = settings.PruneCronExpr
		}
		if settings.ProgressTickMS > 0 {
			c.Batch.ProgressTickMS = settings.ProgressTickMS
		}
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}
