package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, DefaultMetricsAddr, cfg.MetricsAddr)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("ALLOWED_ORIGIN", "https://calendar.example.com")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "https://calendar.example.com", cfg.AllowedOrigin)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_AddrBeatsPort(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("PORT", "8080")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty addr",
			mutate:  func(c *Config) { c.Addr = "" },
			wantErr: "listen address",
		},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Environment = "staging" },
			wantErr: "invalid environment",
		},
		{
			name:    "zero session TTL",
			mutate:  func(c *Config) { c.SessionTTL = 0 },
			wantErr: "session TTL",
		},
		{
			name: "metrics enabled without addr",
			mutate: func(c *Config) {
				c.MetricsEnabled = true
				c.MetricsAddr = ""
			},
			wantErr: "metrics address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Addr:           DefaultAddr,
				Environment:    EnvDevelopment,
				SessionTTL:     DefaultSessionTTL,
				MetricsEnabled: true,
				MetricsAddr:    DefaultMetricsAddr,
			}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	cfg := Config{Environment: EnvProduction}
	assert.True(t, cfg.IsProduction())

	cfg.Environment = EnvDevelopment
	assert.False(t, cfg.IsProduction())
}
