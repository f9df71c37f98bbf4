package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FEED_ENDPOINT", "ws://localhost:5000/feed")
	t.Setenv("GEOMETRY_PATH", "testdata/counties.json")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:5000/feed", cfg.FeedEndpoint)
	assert.Equal(t, time.Second, cfg.FeedRetryDelay)
	assert.Equal(t, 5*time.Second, cfg.FeedRetryMaxDelay)
	assert.Equal(t, 5, cfg.FeedRetryAttempts)
	assert.Equal(t, 10*time.Second, cfg.FeedPollTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "counties", cfg.GeometryObject)
	assert.Equal(t, "states", cfg.StatesObject)
	assert.Empty(t, cfg.RegionsDB)
	assert.Empty(t, cfg.RegionNamesCSV)
	assert.Empty(t, cfg.FontPath)
	assert.Equal(t, 16, cfg.FrameCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("FEED_RETRY_DELAY", "250ms")
	t.Setenv("FEED_RETRY_MAX_DELAY", "2s")
	t.Setenv("FEED_RETRY_ATTEMPTS", "8")
	t.Setenv("FEED_POLL_TIMEOUT", "3s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("GEOMETRY_OBJECT", "custom-counties")
	t.Setenv("STATES_OBJECT", "custom-states")
	t.Setenv("REGIONS_DB", "regions.db")
	t.Setenv("FONT_PATH", "fonts/FiraCode-Regular.ttf")
	t.Setenv("FRAME_CACHE_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.FeedRetryDelay)
	assert.Equal(t, 2*time.Second, cfg.FeedRetryMaxDelay)
	assert.Equal(t, 8, cfg.FeedRetryAttempts)
	assert.Equal(t, 3*time.Second, cfg.FeedPollTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "custom-counties", cfg.GeometryObject)
	assert.Equal(t, "custom-states", cfg.StatesObject)
	assert.Equal(t, "regions.db", cfg.RegionsDB)
	assert.Equal(t, "fonts/FiraCode-Regular.ttf", cfg.FontPath)
	assert.Equal(t, 64, cfg.FrameCacheSize)
}

func TestLoad_MissingFeedEndpoint(t *testing.T) {
	t.Setenv("FEED_ENDPOINT", "")
	t.Setenv("GEOMETRY_PATH", "testdata/counties.json")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_ENDPOINT")
}

func TestLoad_MissingGeometryPath(t *testing.T) {
	t.Setenv("FEED_ENDPOINT", "ws://localhost:5000/feed")
	t.Setenv("GEOMETRY_PATH", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOMETRY_PATH")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeRetryDelay(t *testing.T) {
	setRequired(t)
	t.Setenv("FEED_RETRY_DELAY", "-1s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_RETRY_DELAY")
}

func TestLoad_RetryDelayAboveCap(t *testing.T) {
	setRequired(t)
	t.Setenv("FEED_RETRY_DELAY", "10s")
	t.Setenv("FEED_RETRY_MAX_DELAY", "5s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_RETRY_DELAY exceeds")
}

func TestLoad_InvalidRetryAttempts(t *testing.T) {
	setRequired(t)
	t.Setenv("FEED_RETRY_ATTEMPTS", "zero")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_RETRY_ATTEMPTS")
}

func TestLoad_ZeroFrameCacheDisablesCaching(t *testing.T) {
	setRequired(t)
	t.Setenv("FRAME_CACHE_SIZE", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.FrameCacheSize)
}

func TestLoad_NegativeFrameCacheSize(t *testing.T) {
	setRequired(t)
	t.Setenv("FRAME_CACHE_SIZE", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FRAME_CACHE_SIZE")
}

func TestLoad_ExclusiveNameSources(t *testing.T) {
	setRequired(t)
	t.Setenv("REGIONS_DB", "regions.db")
	t.Setenv("REGION_NAMES_CSV", "names.csv")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}
