// Package config loads the client's runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config validation errors
var (
	// ErrInvalidPort is returned when Port is empty or not numeric
	ErrInvalidPort = errors.New("Port must be a number")
	// ErrInvalidEndpoint is returned when a backend URL cannot be parsed or has the wrong scheme
	ErrInvalidEndpoint = errors.New("invalid backend endpoint")
	// ErrMissingStateDB is returned when StateDBPath is empty
	ErrMissingStateDB = errors.New("StateDBPath is required")
	// ErrInvalidCacheSize is returned when CacheSize is not positive
	ErrInvalidCacheSize = errors.New("CacheSize must be positive")
	// ErrInvalidTimeout is returned when RequestTimeout is not positive
	ErrInvalidTimeout = errors.New("RequestTimeout must be positive")
	// ErrInvalidRateLimit is returned when RequestsPerSecond is negative
	ErrInvalidRateLimit = errors.New("RequestsPerSecond cannot be negative")
)

// Config holds the configuration for the feed client.
type Config struct {
	// Port is the local HTTP port the feed is served on.
	Port string

	// GraphQLHTTPURL is the backend endpoint for queries and mutations.
	GraphQLHTTPURL string

	// GraphQLWSURL is the backend endpoint for subscriptions.
	GraphQLWSURL string

	// StateDBPath is the sqlite file holding the local credential.
	StateDBPath string

	// CacheSize is the number of FeedResults kept in memory.
	CacheSize int

	// RequestTimeout bounds each GraphQL round trip.
	RequestTimeout time.Duration

	// RequestsPerSecond limits outgoing GraphQL operations. 0 disables limiting.
	RequestsPerSecond float64

	// LogLevel is the minimum slog level.
	LogLevel slog.Level
}

// DefaultConfig returns a Config pointing at a backend on localhost.
func DefaultConfig() Config {
	return Config{
		Port:              "8090",
		GraphQLHTTPURL:    "http://localhost:4000",
		GraphQLWSURL:      "ws://localhost:4000",
		StateDBPath:       "linkfeed.db",
		CacheSize:         64,
		RequestTimeout:    15 * time.Second,
		RequestsPerSecond: 10,
		LogLevel:          slog.LevelInfo,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("%w: got %q", ErrInvalidPort, c.Port)
	}
	if err := validateEndpoint(c.GraphQLHTTPURL, "http", "https"); err != nil {
		return err
	}
	if err := validateEndpoint(c.GraphQLWSURL, "ws", "wss"); err != nil {
		return err
	}
	if c.StateDBPath == "" {
		return ErrMissingStateDB
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCacheSize, c.CacheSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidTimeout, c.RequestTimeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRateLimit, c.RequestsPerSecond)
	}
	return nil
}

func validateEndpoint(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, raw, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: %q must use %s", ErrInvalidEndpoint, raw, strings.Join(schemes, " or "))
}

// ConfigFromEnv creates a Config from environment variables.
// Uses defaults for any missing environment variables.
//
// Environment variables:
//   - LINKFEED_PORT: local HTTP port (default: 8090)
//   - GRAPHQL_HTTP_URL: query/mutation endpoint (default: http://localhost:4000)
//   - GRAPHQL_WS_URL: subscription endpoint (default: ws://localhost:4000)
//   - LINKFEED_STATE_DB: sqlite state file (default: linkfeed.db)
//   - LINKFEED_CACHE_SIZE: FeedResults kept in memory (default: 64)
//   - GRAPHQL_TIMEOUT_SECONDS: per-request timeout (default: 15)
//   - GRAPHQL_RATE_LIMIT: requests per second, 0 to disable (default: 10)
//   - LOG_LEVEL: debug, info, warn or error (default: info)
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("LINKFEED_PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("GRAPHQL_HTTP_URL"); v != "" {
		cfg.GraphQLHTTPURL = v
	}

	if v := os.Getenv("GRAPHQL_WS_URL"); v != "" {
		cfg.GraphQLWSURL = v
	}

	if v := os.Getenv("LINKFEED_STATE_DB"); v != "" {
		cfg.StateDBPath = v
	}

	if v := os.Getenv("LINKFEED_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheSize = n
		} else {
			slog.Warn("invalid LINKFEED_CACHE_SIZE value, using default",
				"value", v,
				"default", cfg.CacheSize,
				"error", err,
			)
		}
	}

	if v := os.Getenv("GRAPHQL_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeout = time.Duration(n) * time.Second
		} else {
			slog.Warn("invalid GRAPHQL_TIMEOUT_SECONDS value, using default",
				"value", v,
				"default_seconds", int(cfg.RequestTimeout.Seconds()),
				"error", err,
			)
		}
	}

	if v := os.Getenv("GRAPHQL_RATE_LIMIT"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			cfg.RequestsPerSecond = n
		} else {
			slog.Warn("invalid GRAPHQL_RATE_LIMIT value, using default",
				"value", v,
				"default", cfg.RequestsPerSecond,
				"error", err,
			)
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = level
		} else {
			slog.Warn("invalid LOG_LEVEL value, using default",
				"value", v,
				"default", cfg.LogLevel.String(),
				"error", err,
			)
		}
	}

	return cfg
}
