package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

whatsapp:
  base_url: "https://gateway.example.com"
  instance: "main"
  timeout_seconds: 15

dispatch:
  country_code: "91"
  delay_ms: 2500
  timezone: "America/Sao_Paulo"

rate_limit:
  requests: 10
  window_seconds: 30
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "https://gateway.example.com", cfg.WhatsApp.BaseURL)
	assert.Equal(t, "main", cfg.WhatsApp.Instance)
	assert.Equal(t, 15*time.Second, cfg.WhatsApp.Timeout())

	assert.Equal(t, "91", cfg.Dispatch.CountryCode)
	assert.Equal(t, 2500*time.Millisecond, cfg.Dispatch.Delay())
	assert.Equal(t, "America/Sao_Paulo", cfg.Dispatch.Location().String())

	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout())
	assert.Equal(t, "55", cfg.Dispatch.CountryCode)
	assert.Equal(t, time.Second, cfg.Dispatch.Delay())
	assert.Equal(t, "02/01/2006", cfg.Dispatch.DateLayout)
	assert.Equal(t, time.UTC, cfg.Dispatch.Location())
	assert.Equal(t, "campaign_dispatch", cfg.Queue.Topic)
	assert.Equal(t, 0.9, cfg.WhatsApp.MockSuccessRate)
	assert.Equal(t, "authenticated", cfg.Auth.Audience)
	assert.Equal(t, 16, cfg.Storage.MaxUploadMB)
}

func TestLoadZeroDelayDisablesPause(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("dispatch:\n  delay_ms: 0\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Dispatch.Delay())

	t.Setenv("DISPATCH_DELAY_MS", "0")
	cfg, err = LoadFromEnv(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Dispatch.Delay())
}

func TestLoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [unclosed"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/wabulk?sslmode=disable")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("WHATSAPP_API_URL", "https://wa.example.com")
	t.Setenv("DISPATCH_DELAY_MS", "250")
	t.Setenv("AMQP_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("S3_BUCKET", "media")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@db:5432/wabulk?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "https://wa.example.com", cfg.WhatsApp.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Dispatch.Delay())
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.Queue.URL)
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
	assert.Equal(t, "media", cfg.Storage.Bucket)
}
