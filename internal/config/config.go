package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment names understood by the service.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults applied when neither flag nor environment variable is set.
const (
	DefaultAddr        = ":3000"
	DefaultMetricsAddr = ":9090"
	DefaultSessionTTL  = 24 * time.Hour
)

// Config holds the runtime configuration for the calproxy server.
type Config struct {
	// Addr is the address the API server listens on (e.g. ":3000").
	Addr string

	// GoogleClientID and GoogleClientSecret identify the OAuth client that
	// issued the access tokens clients hand to POST /api/auth/google.
	GoogleClientID     string
	GoogleClientSecret string

	// RedirectURL is the frontend URL registered with the OAuth client.
	RedirectURL string

	// AllowedOrigin is the single origin allowed to make credentialed
	// cross-origin requests.
	AllowedOrigin string

	// Environment is "development" or "production". Production suppresses
	// error details in responses and marks the session cookie Secure.
	Environment string

	// SessionTTL bounds how long an idle session stays in the store.
	SessionTTL time.Duration

	// MetricsEnabled controls whether the dedicated metrics server starts.
	MetricsEnabled bool

	// MetricsAddr is the address for the metrics server.
	MetricsAddr string

	// Debug enables debug-level logging.
	Debug bool
}

// Load builds a Config from environment variables.
func Load() Config {
	cfg := Config{
		Addr:               getEnvOrDefault("ADDR", DefaultAddr),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:        os.Getenv("FRONTEND_URL"),
		AllowedOrigin:      os.Getenv("ALLOWED_ORIGIN"),
		Environment:        getEnvOrDefault("APP_ENV", EnvDevelopment),
		SessionTTL:         getEnvDurationOrDefault("SESSION_TTL", DefaultSessionTTL),
		MetricsEnabled:     getEnvBoolOrDefault("METRICS_ENABLED", true),
		MetricsAddr:        getEnvOrDefault("METRICS_ADDR", DefaultMetricsAddr),
		Debug:              getEnvBoolOrDefault("DEBUG", false),
	}

	// PORT is the conventional deployment variable; it wins over ADDR's
	// default but not over an explicitly set ADDR.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ADDR") == "" {
		cfg.Addr = ":" + port
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address must not be empty")
	}

	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("invalid environment %q, must be one of: %s, %s",
			c.Environment, EnvDevelopment, EnvProduction)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}

	if c.MetricsEnabled && c.MetricsAddr == "" {
		return fmt.Errorf("metrics address must not be empty when metrics are enabled")
	}

	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
