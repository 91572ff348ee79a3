package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"

	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// EnvPrefix prefixes every environment override, e.g. LOAN_PREDICTOR_ADDR.
const EnvPrefix = "LOAN_PREDICTOR"

// Config is the effective process configuration.
type Config struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ModelPath    string        `mapstructure:"model_path" yaml:"model_path"`
	StrictLabels bool          `mapstructure:"strict_labels" yaml:"strict_labels"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	Cache        CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Store        StoreConfig   `mapstructure:"store" yaml:"store"`
	RateLimit    RateLimit     `mapstructure:"rate_limit" yaml:"rate_limit"`
	Shutdown     time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type CacheConfig struct {
	Backend   string        `mapstructure:"backend" yaml:"backend"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	// Timeout bounds each redis round trip.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// RateLimit allows Requests per Window for each client IP on /predict.
type RateLimit struct {
	Requests int           `mapstructure:"requests" yaml:"requests"`
	Window   time.Duration `mapstructure:"window" yaml:"window"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("model_path", "")
	v.SetDefault("strict_labels", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.timeout", 100*time.Millisecond)
	v.SetDefault("store.backend", StoreMemory)
	v.SetDefault("store.sqlite_path", "predictions.db")
	v.SetDefault("rate_limit.requests", 5)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// BindEnv makes LOAN_PREDICTOR_* variables override file values; nested
// keys use underscores (LOAN_PREDICTOR_CACHE_BACKEND).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and non-positive limits.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache.backend must be %s, %s or %s, got %q", CacheMemory, CacheRedis, CacheNone, c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Timeout <= 0 {
		return fmt.Errorf("cache.timeout must be positive for the %s cache", CacheRedis)
	}
	switch c.Store.Backend {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("store.backend must be %s or %s, got %q", StoreMemory, StoreSQLite, c.Store.Backend)
	}
	if c.Store.Backend == StoreSQLite && c.Store.SQLitePath == "" {
		return fmt.Errorf("store.sqlite_path is required for the %s store", StoreSQLite)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.requests and rate_limit.window must be positive")
	}
	return nil
}
