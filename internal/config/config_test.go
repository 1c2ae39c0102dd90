package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, foundEnv, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, foundEnv)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.False(t, cfg.App.IsProd())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.App.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.DB.ConnectTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.False(t, cfg.Gemini.Enabled())
	assert.Equal(t, "medium", cfg.Scaledown.Level)
	assert.True(t, cfg.Tracking.UsesMock())
	assert.Equal(t, "17TRACK", cfg.Tracking.Provider)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "DB_DSN=file:from-env.db\nDB_DRIVER=sqlite\nJWT_SECRET=x\nTRACKING_API_KEY=mock_key\nAPP_ENV=production\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	for _, k := range []string{"DB_DSN", "DB_DRIVER", "JWT_SECRET", "TRACKING_API_KEY", "APP_ENV"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, foundEnv, err := Load(envFile)
	require.NoError(t, err)
	assert.True(t, foundEnv)
	assert.Equal(t, "file:from-env.db", cfg.DB.DSN)
	assert.True(t, cfg.App.IsProd())
	assert.True(t, cfg.Tracking.UsesMock())
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	require.NoError(t, os.Unsetenv("DB_DSN"))
	t.Setenv("JWT_SECRET", "x")

	_, _, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DSN", "whatever")
	t.Setenv("DB_DRIVER", "mongo")
	t.Setenv("JWT_SECRET", "x")

	_, _, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "DB_DRIVER")
}
