// Package config holds the settings of the sluice command line tool.
// Values come from an optional YAML file; command flags override them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the sluice configuration file.
type Config struct {
	Log     Log     `yaml:"log"`
	HTTP    HTTP    `yaml:"http"`
	Metrics Metrics `yaml:"metrics"`
	Redis   Redis   `yaml:"redis"`
	Trace   Trace   `yaml:"trace"`
}

type Log struct {
	Level string `yaml:"level"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Redis configures the optional display mirror and the pass lock.
// An empty Addr disables both.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	Channel  string        `yaml:"channel"`
	Lock     bool          `yaml:"lock"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

type Trace struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:     Log{Level: "info"},
		HTTP:    HTTP{Addr: ":8080"},
		Metrics: Metrics{Enabled: true, Path: "/metrics"},
		Redis: Redis{
			Key:     "sluice:display",
			Channel: "sluice:display:updates",
			LockTTL: 5 * time.Second,
		},
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values a YAML decode cannot.
func (c Config) Validate() error {
	var errs []error
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("redis.db must not be negative, got %d", c.Redis.DB))
	}
	if c.Redis.Lock && c.Redis.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("redis.lock_ttl must be positive when redis.lock is set"))
	}
	if c.Redis.Lock && !c.Redis.Enabled() {
		errs = append(errs, errors.New("redis.lock requires redis.addr"))
	}
	return errors.Join(errs...)
}
