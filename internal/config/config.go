// Package config loads the dashsync configuration file: the dashboard
// server coordinates plus the sync tuning knobs the CLI flags can
// override.
package config

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the validated, typed configuration.
type Config struct {
	// Server is the dashboard base URL.
	Server string
	// Token is the admin API bearer token.
	Token string
	// Group is the default group for access list operations.
	Group string
	// PollInterval is the fallback poll cadence while the channel is down.
	PollInterval time.Duration
	// ReconcileDelay is the debounce quiet period for post-mutation
	// reconciliation fetches.
	ReconcileDelay time.Duration
	// RateLimit is the client-side API request budget in requests per second.
	RateLimit float64
}

// YAMLRepository loads dashsync configuration from YAML files.
type YAMLRepository struct {
	fs fs.FS
}

// NewYAMLRepository creates a new YAML config repository.
func NewYAMLRepository(filesystem fs.FS) *YAMLRepository {
	return &YAMLRepository{fs: filesystem}
}

// GetConfig loads the configuration from a YAML file and returns a
// validated typed config.
func (r *YAMLRepository) GetConfig(ctx context.Context, path string) (Config, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return Config{}, ctx.Err()
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg.toModel()
}

// fileConfig represents the YAML structure of the config file.
type fileConfig struct {
	Server string     `yaml:"server"`
	Token  string     `yaml:"token"`
	Group  string     `yaml:"group"`
	Sync   syncConfig `yaml:"sync"`
}

// syncConfig represents the YAML structure of the sync tuning section.
type syncConfig struct {
	PollInterval   string  `yaml:"poll_interval"`
	ReconcileDelay string  `yaml:"reconcile_delay"`
	RateLimit      float64 `yaml:"rate_limit"`
}

func (c fileConfig) validate() error {
	if c.Server == "" {
		return fmt.Errorf("server is required")
	}

	if c.Sync.RateLimit < 0 {
		return fmt.Errorf("sync rate_limit must not be negative, got: %v", c.Sync.RateLimit)
	}

	return nil
}

func (c fileConfig) toModel() (Config, error) {
	cfg := Config{
		Server:    c.Server,
		Token:     c.Token,
		Group:     c.Group,
		RateLimit: c.Sync.RateLimit,
	}

	var err error
	cfg.PollInterval, err = parseDuration(c.Sync.PollInterval, "poll_interval")
	if err != nil {
		return Config{}, err
	}
	cfg.ReconcileDelay, err = parseDuration(c.Sync.ReconcileDelay, "reconcile_delay")
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func parseDuration(raw, field string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration %q: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got: %s", field, d)
	}

	return d, nil
}
