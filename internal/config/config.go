package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedEndpoint      string
	FeedRetryDelay    time.Duration
	FeedRetryMaxDelay time.Duration
	FeedRetryAttempts int
	FeedPollTimeout   time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Geometry and naming sources.
	GeometryPath   string
	GeometryObject string
	StatesObject   string
	RegionsDB      string
	RegionNamesCSV string

	// Rendering.
	FontPath       string
	FrameCacheSize int
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("FEED_RETRY_DELAY", time.Second)
	if err != nil {
		return nil, err
	}
	retryMaxDelay, err := parseDuration("FEED_RETRY_MAX_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}
	pollTimeout, err := parseDuration("FEED_POLL_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	retryAttempts, err := parsePositiveInt("FEED_RETRY_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}
	// Zero is a valid cache size and turns frame caching off.
	frameCache, err := parseNonNegativeInt("FRAME_CACHE_SIZE", 16)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FeedEndpoint:      os.Getenv("FEED_ENDPOINT"),
		FeedRetryDelay:    retryDelay,
		FeedRetryMaxDelay: retryMaxDelay,
		FeedRetryAttempts: retryAttempts,
		FeedPollTimeout:   pollTimeout,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GeometryPath:   os.Getenv("GEOMETRY_PATH"),
		GeometryObject: envOrDefault("GEOMETRY_OBJECT", "counties"),
		StatesObject:   envOrDefault("STATES_OBJECT", "states"),
		RegionsDB:      os.Getenv("REGIONS_DB"),
		RegionNamesCSV: os.Getenv("REGION_NAMES_CSV"),

		FontPath:       os.Getenv("FONT_PATH"),
		FrameCacheSize: frameCache,
	}

	if cfg.FeedEndpoint == "" {
		return nil, errors.New("FEED_ENDPOINT is required")
	}
	if cfg.GeometryPath == "" {
		return nil, errors.New("GEOMETRY_PATH is required")
	}
	if cfg.RegionsDB != "" && cfg.RegionNamesCSV != "" {
		return nil, errors.New("REGIONS_DB and REGION_NAMES_CSV are mutually exclusive")
	}
	if cfg.FeedRetryDelay > cfg.FeedRetryMaxDelay {
		return nil, errors.New("FEED_RETRY_DELAY exceeds FEED_RETRY_MAX_DELAY")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}
