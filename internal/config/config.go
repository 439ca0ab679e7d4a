// Package config loads process configuration for the calinga command from
// defaults, an optional YAML file and CALINGA_* environment variables, in
// that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "CALINGA_"

// Cache store types.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheBlob   = "blob"
)

// Config is the full process configuration.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL"  yaml:"log_level"`
	LogPretty bool   `env:"LOG_PRETTY" yaml:"log_pretty"`

	DevMode      bool   `env:"DEV_MODE"      yaml:"dev_mode"`
	Revalidate   bool   `env:"REVALIDATE"    yaml:"revalidate"`
	ResourcesDir string `env:"RESOURCES_DIR" yaml:"resources_dir"`

	Service   ServiceConfig   `envPrefix:"SERVICE_"    yaml:"service"`
	Cache     CacheConfig     `envPrefix:"CACHE_"      yaml:"cache"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_" yaml:"rate_limit"`
	Server    ServerConfig    `envPrefix:"SERVER_"     yaml:"server"`
}

// ServiceConfig addresses the translation service.
type ServiceConfig struct {
	BaseURL       string        `env:"BASE_URL"       yaml:"base_url"`
	Organization  string        `env:"ORGANIZATION"   yaml:"organization"`
	Team          string        `env:"TEAM"           yaml:"team"`
	Project       string        `env:"PROJECT"        yaml:"project"`
	IncludeDrafts bool          `env:"INCLUDE_DRAFTS" yaml:"include_drafts"`
	Token         string        `env:"TOKEN"          yaml:"token"`
	Timeout       time.Duration `env:"TIMEOUT"        yaml:"timeout"`
}

// CacheConfig selects and configures the persisted cache.
type CacheConfig struct {
	Type      string `env:"TYPE"       yaml:"type"`
	TTL       int    `env:"TTL"        yaml:"ttl"`
	RedisURL  string `env:"REDIS_URL"  yaml:"redis_url"`
	BlobURL   string `env:"BLOB_URL"   yaml:"blob_url"`
	KeyPrefix string `env:"KEY_PREFIX" yaml:"key_prefix"`
}

// RateLimitConfig throttles service requests. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `env:"RPM"   yaml:"requests_per_minute"`
	Burst             int `env:"BURST" yaml:"burst"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `env:"ADDR"             yaml:"addr"`
	CORSOrigins     []string      `env:"CORS_ORIGINS"     yaml:"cors_origins"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Service: ServiceConfig{
			BaseURL: "https://api.calinga.io/v3",
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Type: CacheMemory,
			TTL:  3600,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Organization == "" {
		errs = append(errs, errors.New("service.organization is required"))
	}
	if c.Service.Team == "" {
		errs = append(errs, errors.New("service.team is required"))
	}
	if c.Service.Project == "" {
		errs = append(errs, errors.New("service.project is required"))
	}
	if c.Service.Timeout < 0 {
		errs = append(errs, errors.New("service.timeout must not be negative"))
	}

	switch c.Cache.Type {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url is required for the redis cache"))
		}
	case CacheBlob:
		if c.Cache.BlobURL == "" {
			errs = append(errs, errors.New("cache.blob_url is required for the blob cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache type %q", c.Cache.Type))
	}

	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must not be negative"))
	}

	return errors.Join(errs...)
}
