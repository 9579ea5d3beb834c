package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	API           APIConfig
	Retry         RetryConfig
	Cache         CacheConfig
	State         StateConfig
	Notifications NotificationsConfig
	Metrics       MetricsConfig
	Log           LogConfig
}

// APIConfig locates the CampusCash backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RetryConfig governs query retry behaviour. Mutations never retry.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// CacheConfig tunes the query cache. Redis is optional; the in-memory store
// is used when it is disabled.
type CacheConfig struct {
	TTL   time.Duration
	Redis RedisConfig
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// StateConfig locates the directory holding persisted client state
// (auth-storage.json, ui-storage.json, auth_token).
type StateConfig struct {
	Dir string
}

// NotificationsConfig tunes the notification poller.
type NotificationsConfig struct {
	PollInterval time.Duration
}

// MetricsConfig controls client request instrumentation. When enabled,
// long-running commands expose a Prometheus scrape endpoint on Addr.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			if _, statErr := os.Stat(".env"); statErr == nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL: v.GetString("API_URL"),
		Timeout: parseDuration(v.GetString("API_TIMEOUT"), 10*time.Second),
	}

	cfg.Retry = RetryConfig{
		MaxAttempts: v.GetInt("RETRY_MAX_ATTEMPTS"),
		BaseDelay:   parseDuration(v.GetString("RETRY_BASE_DELAY"), 200*time.Millisecond),
		MaxDelay:    parseDuration(v.GetString("RETRY_MAX_DELAY"), 5*time.Second),
	}

	cfg.Cache = CacheConfig{
		TTL: parseDuration(v.GetString("CACHE_TTL"), 30*time.Second),
		Redis: RedisConfig{
			Enabled:  v.GetBool("CACHE_REDIS_ENABLED"),
			Host:     v.GetString("CACHE_REDIS_HOST"),
			Port:     v.GetInt("CACHE_REDIS_PORT"),
			Password: v.GetString("CACHE_REDIS_PASSWORD"),
			DB:       v.GetInt("CACHE_REDIS_DB"),
		},
	}

	stateDir := v.GetString("STATE_DIR")
	if stateDir == "" {
		stateDir = defaultStateDir()
	}
	cfg.State = StateConfig{Dir: stateDir}

	cfg.Notifications = NotificationsConfig{
		PollInterval: parseDuration(v.GetString("NOTIFY_POLL_INTERVAL"), 30*time.Second),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("METRICS_ENABLED"),
		Addr:    v.GetString("METRICS_ADDR"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_URL", "http://localhost:8080")
	v.SetDefault("API_TIMEOUT", "10s")

	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RETRY_BASE_DELAY", "200ms")
	v.SetDefault("RETRY_MAX_DELAY", "5s")

	v.SetDefault("CACHE_TTL", "30s")
	v.SetDefault("CACHE_REDIS_ENABLED", false)
	v.SetDefault("CACHE_REDIS_HOST", "localhost")
	v.SetDefault("CACHE_REDIS_PORT", 6379)
	v.SetDefault("CACHE_REDIS_PASSWORD", "")
	v.SetDefault("CACHE_REDIS_DB", 0)

	v.SetDefault("STATE_DIR", "")
	v.SetDefault("NOTIFY_POLL_INTERVAL", "30s")

	v.SetDefault("METRICS_ENABLED", false)
	v.SetDefault("METRICS_ADDR", ":9464")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".campuscash"
	}
	return filepath.Join(home, ".campuscash")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
