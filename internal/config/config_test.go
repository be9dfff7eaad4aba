package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnvRequiresBackendURL(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_API_URL")
}

func TestNewFromEnvDefaults(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "http://backend:9000")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8085", cfg.HTTP.Addr)
	assert.False(t, cfg.HTTP.UIEnabled)
	assert.Equal(t, 60, cfg.Backend.Timeout)
	assert.Equal(t, "720", cfg.Backend.VideoQuality)
	assert.Equal(t, "/data/downloads", cfg.Storage.DownloadDir)
	assert.Equal(t, "0 3 * * *", cfg.Storage.PruneCronExpr)
	assert.Equal(t, 14, cfg.Storage.RetainDays)
	assert.Equal(t, 300, cfg.Batch.ProgressTickMS)
}

func TestNewFromEnvOverrides(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "http://backend:9000")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("UI_ENABLED", "true")
	t.Setenv("BACKEND_TIMEOUT", "15")
	t.Setenv("PROGRESS_TICK_MS", "50")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.UIEnabled)
	assert.Equal(t, 15, cfg.Backend.Timeout)
	assert.Equal(t, 50, cfg.Batch.ProgressTickMS)
}

func TestNewFromEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "http://backend:9000")
	t.Setenv("BACKEND_TIMEOUT", "not-a-number")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Backend.Timeout)
}

func TestRuntimeSettingsValidate(t *testing.T) {
	valid := RuntimeSettings{
		BackendAPIURL:  "http://backend:9000",
		VideoQuality:   "720",
		PruneCronExpr:  "0 3 * * *",
		ProgressTickMS: 300,
	}
	require.NoError(t, valid.Validate())

	broken := valid
	broken.PruneCronExpr = "every day at dawn"
	err := broken.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prune_cron_expr")

	broken = valid
	broken.ProgressTickMS = 0
	require.Error(t, broken.Validate())
}

func TestWithRuntimeSettingsOverlaysConfig(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "http://backend:9000")

	cfg, err := NewFromEnv(WithRuntimeSettings(RuntimeSettings{
		BackendAPIURL:  "http://other:9001",
		VideoQuality:   "1080",
		ProgressTickMS: 100,
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://other:9001", cfg.Backend.APIURL)
	assert.Equal(t, "1080", cfg.Backend.VideoQuality)
	assert.Equal(t, 100, cfg.Batch.ProgressTickMS)
	// Empty fields leave the env value in place.
	assert.Equal(t, "0 3 * * *", cfg.Storage.PruneCronExpr)
}

func TestRuntimeSettingsStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	initial := RuntimeSettings{
		BackendAPIURL:  "http://backend:9000",
		VideoQuality:   "720",
		PruneCronExpr:  "0 3 * * *",
		ProgressTickMS: 300,
	}

	store, err := NewRuntimeSettingsStore(path, initial)
	require.NoError(t, err)

	next := initial
	next.VideoQuality = "1080"
	updated, err := store.UpdateRuntimeSettings(next)
	require.NoError(t, err)
	assert.Equal(t, "1080", updated.VideoQuality)

	loaded, err := LoadRuntimeSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, next, loaded)

	current, err := store.GetRuntimeSettings()
	require.NoError(t, err)
	assert.Equal(t, next, current)
}

func TestRuntimeSettingsStoreRejectsInvalidUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	initial := RuntimeSettings{
		BackendAPIURL:  "http://backend:9000",
		VideoQuality:   "720",
		PruneCronExpr:  "0 3 * * *",
		ProgressTickMS: 300,
	}

	store, err := NewRuntimeSettingsStore(path, initial)
	require.NoError(t, err)

	_, err = store.UpdateRuntimeSettings(RuntimeSettings{})
	require.Error(t, err)

	current, err := store.GetRuntimeSettings()
	require.NoError(t, err)
	assert.Equal(t, initial, current)
}
