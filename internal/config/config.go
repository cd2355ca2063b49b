// Package config loads the optional SkillSync configuration file. Values set
// on the command line or in the environment take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/skillsync/skillsync/internal/api"
	"github.com/skillsync/skillsync/internal/credentials"
	"github.com/skillsync/skillsync/internal/poller"
)

// Storage backends for the persisted token.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config is the contents of ~/.skillsync/config.yaml.
type Config struct {
	APIURL    string          `yaml:"api_url" validate:"required,url"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig selects where the session token is kept.
type StorageConfig struct {
	Type      string        `yaml:"type" validate:"oneof=file redis memory"`
	Dir       string        `yaml:"dir"`
	RedisAddr string        `yaml:"redis_addr" validate:"required_if=Type redis"`
	RedisKey  string        `yaml:"redis_key"`
	RedisTTL  time.Duration `yaml:"redis_ttl" validate:"gte=0"`
}

// DatabaseConfig points at the activity database. Empty URL disables it.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns" validate:"gte=0"`
}

// DashboardConfig tunes dashboard polling.
type DashboardConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval" validate:"min=1s"`
	LogLimit        int           `yaml:"log_limit" validate:"gte=1"`
	AssessmentLimit int           `yaml:"assessment_limit" validate:"gte=1"`
}

// CacheConfig enables the HTTP response cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// TelemetryConfig enables OpenTelemetry export.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	SampleRatio float64 `yaml:"sample_ratio" validate:"gte=0,lte=1"`
}

// DefaultPath returns ~/.skillsync/config.yaml.
func DefaultPath() (string, error) {
	dir, err := credentials.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads the configuration file at path. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML and applies defaults to unset fields.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	if c.APIURL == "" {
		c.APIURL = api.DefaultBaseURL
	}
	if c.Storage.Type == "" {
		c.Storage.Type = StorageFile
	}
	if c.Storage.RedisKey == "" {
		c.Storage.RedisKey = credentials.DefaultRedisKey
	}
	if c.Dashboard.PollInterval == 0 {
		c.Dashboard.PollInterval = poller.DefaultInterval
	}
	if c.Dashboard.LogLimit == 0 {
		c.Dashboard.LogLimit = 20
	}
	if c.Dashboard.AssessmentLimit == 0 {
		c.Dashboard.AssessmentLimit = 10
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Merge overrides c with every non-zero field of o.
func (c *Config) Merge(o Config) {
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.Storage.Type != "" {
		c.Storage.Type = o.Storage.Type
	}
	if o.Storage.Dir != "" {
		c.Storage.Dir = o.Storage.Dir
	}
	if o.Storage.RedisAddr != "" {
		c.Storage.RedisAddr = o.Storage.RedisAddr
	}
	if o.Storage.RedisKey != "" {
		c.Storage.RedisKey = o.Storage.RedisKey
	}
	if o.Storage.RedisTTL != 0 {
		c.Storage.RedisTTL = o.Storage.RedisTTL
	}
	if o.Database.URL != "" {
		c.Database.URL = o.Database.URL
	}
	if o.Dashboard.PollInterval != 0 {
		c.Dashboard.PollInterval = o.Dashboard.PollInterval
	}
	if o.Cache.Enabled {
		c.Cache.Enabled = true
	}
	if o.Cache.Dir != "" {
		c.Cache.Dir = o.Cache.Dir
	}
	if o.Telemetry.Enabled {
		c.Telemetry.Enabled = true
	}
}
