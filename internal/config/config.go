package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the API server and the dispatch worker.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Queue     QueueConfig     `yaml:"queue"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// ShutdownTimeout returns the graceful shutdown window as a duration
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// AuthConfig holds the shared secret of the hosted auth service's tokens.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Audience  string `yaml:"audience"`
}

// WhatsAppConfig points at the outbound messaging gateway. An empty BaseURL
// selects the mock sender.
type WhatsAppConfig struct {
	BaseURL         string  `yaml:"base_url"`
	APIKey          string  `yaml:"api_key"`
	Instance        string  `yaml:"instance"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	MockSuccessRate float64 `yaml:"mock_success_rate"`
}

// Timeout returns the configured timeout as a duration
func (c WhatsAppConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DispatchConfig controls the bulk send loop and template rendering.
type DispatchConfig struct {
	CountryCode string `yaml:"country_code"`
	DelayMillis *int   `yaml:"delay_ms"`
	Timezone    string `yaml:"timezone"`
	DateLayout  string `yaml:"date_layout"`
}

// Delay returns the pause between consecutive sends. An explicit 0 disables it.
func (c DispatchConfig) Delay() time.Duration {
	if c.DelayMillis == nil {
		return defaultDelayMillis * time.Millisecond
	}
	if *c.DelayMillis < 0 {
		return 0
	}
	return time.Duration(*c.DelayMillis) * time.Millisecond
}

const defaultDelayMillis = 1000

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c DispatchConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// QueueConfig selects the async dispatch transport. An empty URL keeps jobs in process.
type QueueConfig struct {
	URL   string `yaml:"url"`
	Topic string `yaml:"topic"`
}

// RedisConfig holds the rate limiter backend address. Empty means in-memory.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// RateLimitConfig holds per-user request limits for /api routes.
type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Window returns the limiter window as a duration
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// StorageConfig holds the S3-compatible bucket used for media uploads.
type StorageConfig struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url"`
	UsePathStyle  bool   `yaml:"use_path_style"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads configuration from a YAML file and applies defaults. A missing
// file is not an error: everything can come from the environment.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeoutSeconds == 0 {
		cfg.Server.ShutdownTimeoutSeconds = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Auth.Audience == "" {
		cfg.Auth.Audience = "authenticated"
	}
	if cfg.WhatsApp.TimeoutSeconds == 0 {
		cfg.WhatsApp.TimeoutSeconds = 30
	}
	if cfg.WhatsApp.MockSuccessRate == 0 {
		cfg.WhatsApp.MockSuccessRate = 0.9
	}
	if cfg.Dispatch.CountryCode == "" {
		cfg.Dispatch.CountryCode = "55"
	}
	if cfg.Dispatch.DelayMillis == nil {
		ms := defaultDelayMillis
		cfg.Dispatch.DelayMillis = &ms
	}
	if cfg.Dispatch.Timezone == "" {
		cfg.Dispatch.Timezone = "UTC"
	}
	if cfg.Dispatch.DateLayout == "" {
		cfg.Dispatch.DateLayout = "02/01/2006"
	}
	if cfg.Queue.Topic == "" {
		cfg.Queue.Topic = "campaign_dispatch"
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 120
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.MaxUploadMB == 0 {
		cfg.Storage.MaxUploadMB = 16
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LoadFromEnv loads .env (if present), then the YAML file, then applies
// environment overrides.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("WHATSAPP_API_URL"); v != "" {
		cfg.WhatsApp.BaseURL = v
	}
	if v := os.Getenv("WHATSAPP_API_KEY"); v != "" {
		cfg.WhatsApp.APIKey = v
	}
	if v := os.Getenv("WHATSAPP_INSTANCE"); v != "" {
		cfg.WhatsApp.Instance = v
	}
	if v := os.Getenv("DISPATCH_COUNTRY_CODE"); v != "" {
		cfg.Dispatch.CountryCode = v
	}
	if v := os.Getenv("DISPATCH_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Dispatch.DelayMillis = &ms
		}
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.Queue.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("S3_PUBLIC_BASE_URL"); v != "" {
		cfg.Storage.PublicBaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}
