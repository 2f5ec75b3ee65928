package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "videos")
	dir := writeConfig(t, `
server:
  mode: debug
database:
  driver: sqlite
  path: test.db
jwt:
  secret: a-secret-that-is-long-enough-to-pass
  expire_hours: 2
storage:
  local_path: `+uploads+`
redis:
  course_cache_seconds: 30
cors:
  allowed_origins:
    - https://lms.example.com
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpire)
	assert.Equal(t, 30*time.Second, cfg.Redis.CourseCacheTTL)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.EqualValues(t, 512, cfg.Storage.MaxUploadMB)
	assert.Equal(t, []string{"https://lms.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 6000, cfg.RateLimit.MaxRequests)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.Path)
	assert.DirExists(t, uploads)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short secret in release", "server:\n  mode: release\ndatabase:\n  driver: sqlite\njwt:\n  secret: short\n"},
		{"unknown driver", "database:\n  driver: oracle\njwt:\n  secret: a-secret-that-is-long-enough-to-pass\n"},
		{"missing secret", "database:\n  driver: sqlite\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-from-the-environment-variable")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("STORAGE_TYPE", "minio")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "secret-from-the-environment-variable", cfg.JWT.Secret)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "minio", cfg.Storage.Type)
	assert.Empty(t, cfg.Path)
}
