package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.True(t, cfg.EphemeralSessionSecret)
	assert.Len(t, cfg.SessionSecret, 64)
	assert.Equal(t, 12*time.Hour, cfg.SessionMaxAge())
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GIN_MODE", "test")
	t.Setenv("SESSION_SECRET", "fixed")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/books")
	t.Setenv("LOGIN_WINDOW_MINUTES", "3")
	t.Setenv("CSRF_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, ,http://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fixed", cfg.SessionSecret)
	assert.False(t, cfg.EphemeralSessionSecret)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.False(t, cfg.CSRFEnabled)
	assert.Equal(t, 3*time.Minute, cfg.LoginWindow())
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins())
}

func TestValidateRelease(t *testing.T) {
	cfg := &Config{
		GinMode:          "release",
		DatabaseDriver:   DriverSQLite,
		DatabaseURL:      ":memory:",
		LoginMaxAttempts: 5,
	}
	require.Error(t, cfg.Validate())

	cfg.SessionSecret = "short"
	require.Error(t, cfg.Validate())

	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	require.NoError(t, cfg.Validate())
}

func TestValidateDriver(t *testing.T) {
	cfg := &Config{
		GinMode:          "debug",
		DatabaseDriver:   "mysql",
		DatabaseURL:      "x",
		LoginMaxAttempts: 5,
	}
	require.Error(t, cfg.Validate())
}
