package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
db:
  driver: memory
auth:
  private_key_path: keys/private.pem
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 3, cfg.Tasks.Workers)
	assert.False(t, cfg.Reconcile.OnStartup)
	assert.False(t, cfg.DB.SkipMigrations)
	assert.Zero(t, cfg.Reconcile.Interval)
	assert.False(t, cfg.Compat.NotFoundAsBadRequest)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
db:
  driver: postgres
  dsn: postgres://localhost/amdb
auth:
  private_key_path: keys/private.pem
`)
	t.Setenv("PORT", "9090")
	t.Setenv("COMPAT_NOT_FOUND_AS_BAD_REQUEST", "true")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Compat.NotFoundAsBadRequest)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"postgres without dsn", "db:\n  driver: postgres\nauth:\n  private_key_path: k.pem\n"},
		{"unknown driver", "db:\n  driver: mongo\nauth:\n  private_key_path: k.pem\n"},
		{"missing private key", "db:\n  driver: memory\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestMustLoadPanics(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Panics(t, func() { MustLoad("") })
}
