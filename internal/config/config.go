package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix  = "FEEDBACK_"
	envConfig  = "FEEDBACK_CONFIG"
	driverName = "sqlite3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application.
type Config struct {
	AppEnv   string `koanf:"app_env"`
	LogLevel string `koanf:"log_level"`

	DBDriver string `koanf:"db_driver"`
	DBPath   string `koanf:"db_path"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`

	GRPCPort              int     `koanf:"grpc_port"`
	GRPCReflectionEnabled bool    `koanf:"grpc_reflection_enabled"`
	GRPCRateLimit         float64 `koanf:"grpc_rate_limit"`
	GRPCRateBurst         int     `koanf:"grpc_rate_burst"`

	// HTTPAddr serves health, metrics and the read-only dashboard API.
	HTTPAddr string `koanf:"http_addr"`

	// DraftTTL bounds how long an abandoned draft survives in the cache.
	DraftTTL time.Duration `koanf:"draft_ttl"`
	// DraftResetDelay is how long a submitted draft stays readable.
	DraftResetDelay   time.Duration `koanf:"draft_reset_delay"`
	DashboardCacheTTL time.Duration `koanf:"dashboard_cache_ttl"`

	// FallbackCriteria are offered by service points without catalog criteria.
	FallbackCriteria []string `koanf:"fallback_criteria"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		AppEnv:            "development",
		LogLevel:          "info",
		DBDriver:          driverName,
		DBPath:            "./data/feedback.db",
		RedisAddr:         "localhost:6379",
		RedisPrefix:       "feedback:",
		GRPCPort:          50051,
		GRPCRateLimit:     200,
		GRPCRateBurst:     50,
		HTTPAddr:          ":8080",
		DraftTTL:          24 * time.Hour,
		DraftResetDelay:   5 * time.Second,
		DashboardCacheTTL: 10 * time.Minute,
		FallbackCriteria:  []string{"Cleanliness", "Language Use", "Waiting Time", "Overall Impression"},
	}
}

// Load layers, from low to high precedence: defaults, the YAML file named by
// FEEDBACK_CONFIG, then FEEDBACK_* environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// FEEDBACK_GRPC_PORT -> grpc_port
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.DBDriver != driverName:
		return fmt.Errorf("%w: unsupported db_driver %q", ErrInvalidConfig, c.DBDriver)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.GRPCPort < 1 || c.GRPCPort > 65535:
		return fmt.Errorf("%w: grpc_port %d out of range", ErrInvalidConfig, c.GRPCPort)
	case c.HTTPAddr == "":
		return fmt.Errorf("%w: http_addr must not be empty", ErrInvalidConfig)
	case c.DraftResetDelay < 0 || c.DraftTTL <= 0 || c.DashboardCacheTTL <= 0:
		return fmt.Errorf("%w: durations must be positive", ErrInvalidConfig)
	case c.GRPCRateLimit < 0:
		return fmt.Errorf("%w: grpc_rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// DataSource is the sqlite DSN for DBPath with foreign keys enforced.
func (c *Config) DataSource() string {
	if c.DBPath == ":memory:" {
		return "file::memory:?cache=shared&_foreign_keys=on"
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on", c.DBPath)
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.AppEnv == "production" {
		zc = zap.NewProductionConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
		}
		zc.Level = level
	}
	return zc.Build()
}
