// Package config loads edge-router configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by the edge router.
const (
	EnvBackendURL         = "BACKEND_URL"
	EnvPublishableAPIKey  = "PUBLISHABLE_API_KEY"
	EnvDefaultRegion      = "DEFAULT_REGION"
	EnvPort               = "PORT"
	EnvRedisURL           = "REDIS_URL"
	EnvStorefrontUpstream = "STOREFRONT_UPSTREAM"
	EnvGeoCountryHeader   = "GEO_COUNTRY_HEADER"
	EnvStrictRegionMatch  = "STRICT_REGION_MATCH"
	EnvRegionTTLSeconds   = "REGION_TTL_SECONDS"
	EnvLogLevel           = "LOG_LEVEL"
	EnvEnvironment        = "ENVIRONMENT"
)

// RequiredEnvVars are the variables the health endpoint reports on.
// The service is considered unhealthy when any of them is absent.
var RequiredEnvVars = []string{
	EnvBackendURL,
	EnvPublishableAPIKey,
	EnvDefaultRegion,
	EnvPort,
	EnvRedisURL,
}

// Config holds the edge-router runtime configuration.
type Config struct {
	// BackendURL is the base URL of the commerce backend (required).
	BackendURL string

	// PublishableAPIKey is sent as x-publishable-api-key on region fetches (required).
	PublishableAPIKey string

	// DefaultRegion is the last-resort country code (default "us").
	DefaultRegion string

	// Port the HTTP server listens on (default "8080").
	Port string

	// RedisURL enables the tagged response cache when set.
	RedisURL string

	// StorefrontUpstream is the origin pass-through requests are forwarded to.
	// When empty, a placeholder handler answers pass-through requests.
	StorefrontUpstream string

	// GeoCountryHeader is the edge-platform geolocation header (default "CF-IPCountry").
	GeoCountryHeader string

	// StrictRegionMatch enables exact first-segment matching instead of the
	// historical substring containment check.
	StrictRegionMatch bool

	// RegionTTL is the region directory freshness window (default 1h).
	RegionTTL time.Duration

	// LogLevel is the minimum log level (default "info").
	LogLevel string

	// Environment is the deployment environment name (default "development").
	Environment string
}

// Load reads configuration from the environment, overlaying a .env file
// when one is present, and validates required settings.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		BackendURL:         os.Getenv(EnvBackendURL),
		PublishableAPIKey:  os.Getenv(EnvPublishableAPIKey),
		DefaultRegion:      strings.ToLower(getEnv(EnvDefaultRegion, "us")),
		Port:               getEnv(EnvPort, "8080"),
		RedisURL:           os.Getenv(EnvRedisURL),
		StorefrontUpstream: os.Getenv(EnvStorefrontUpstream),
		GeoCountryHeader:   getEnv(EnvGeoCountryHeader, "CF-IPCountry"),
		StrictRegionMatch:  parseBool(os.Getenv(EnvStrictRegionMatch)),
		RegionTTL:          time.Hour,
		LogLevel:           getEnv(EnvLogLevel, "info"),
		Environment:        getEnv(EnvEnvironment, "development"),
	}

	if v := os.Getenv(EnvRegionTTLSeconds); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvRegionTTLSeconds, v)
		}
		cfg.RegionTTL = time.Duration(n) * time.Second
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("%s is required", EnvBackendURL)
	}
	if _, err := url.Parse(cfg.BackendURL); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvBackendURL, err)
	}
	if cfg.PublishableAPIKey == "" {
		return nil, fmt.Errorf("%s is required", EnvPublishableAPIKey)
	}

	return cfg, nil
}

// EnvReport returns the presence of each health-checked environment variable.
func EnvReport() map[string]bool {
	report := make(map[string]bool, len(RequiredEnvVars))
	for _, name := range RequiredEnvVars {
		report[name] = os.Getenv(name) != ""
	}
	return report
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
