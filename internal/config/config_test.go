package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAuthEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SECRET_KEY", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
}

func TestLoadDefaults(t *testing.T) {
	setAuthEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, StorageDriverPostgres, cfg.Server.StorageDriver)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "SECRET_KEY=file-access\nREFRESH_TOKEN_SECRET=file-refresh\nTOKEN_EXPIRY_LIMIT=60\nDB_NAME=accounts\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv does not override variables that already exist, so register
	// cleanup for what the file sets.
	for _, key := range []string{"SECRET_KEY", "REFRESH_TOKEN_SECRET", "TOKEN_EXPIRY_LIMIT", "DB_NAME"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-access", cfg.Auth.AccessSecret)
	assert.Equal(t, "file-refresh", cfg.Auth.RefreshSecret)
	assert.Equal(t, time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, "accounts", cfg.Postgres.Database)
}

func TestLoadSplitsAllowedOrigins(t *testing.T) {
	setAuthEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server: ServerConfig{StorageDriver: StorageDriverMemory},
		Auth: AuthConfig{
			AccessSecret:     "a",
			RefreshSecret:    "b",
			AccessTTLSeconds: 10,
		},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing-access-secret", func(c *Config) { c.Auth.AccessSecret = "" }},
		{"missing-refresh-secret", func(c *Config) { c.Auth.RefreshSecret = " " }},
		{"same-secrets", func(c *Config) { c.Auth.RefreshSecret = c.Auth.AccessSecret }},
		{"zero-ttl", func(c *Config) { c.Auth.AccessTTLSeconds = 0 }},
		{"unknown-driver", func(c *Config) { c.Server.StorageDriver = "mysql" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
