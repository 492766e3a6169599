package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                "development",
		Port:               "8080",
		JWTSecret:          strings.Repeat("s", 40),
		JWTExpiryHours:     24,
		DBDriver:           "postgres",
		DBPassword:         "password",
		DefaultPageSize:    10,
		MaxPageSize:        100,
		TracingSampleRatio: 1,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", strings.Repeat("k", 32))
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 24*7, cfg.JWTExpiryHours)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_PAGE_SIZE", "50")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 50, cfg.MaxPageSize)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid development", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "unsupported DB_DRIVER"},
		{"page sizes", func(c *Config) { c.MaxPageSize = 5 }, "page size"},
		{"sample ratio", func(c *Config) { c.TracingSampleRatio = 2 }, "TRACING_SAMPLE_RATIO"},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, "must be changed"},
		{"production short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, "at least 32"},
		{"production weak db password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, "DB_PASSWORD"},
		{"production sqlite", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "s3cret-and-long"
			c.DBDriver = "sqlite"
		}, "DB_DRIVER must be postgres"},
		{"production ok", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "s3cret-and-long"
			c.DBSSLMode = "require"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOrigins(t *testing.T) {
	t.Parallel()
	cfg := &Config{AllowedOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins())
}
