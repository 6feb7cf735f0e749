// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig            `yaml:"server"`
	Feed     FeedConfig              `yaml:"feed"`
	Announce AnnounceConfig          `yaml:"announce"`
	Effects  map[string]EffectConfig `yaml:"effects"`
}

// ServerConfig represents the dashboard HTTP server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// FeedConfig represents the polled arrival feed configuration.
type FeedConfig struct {
	URL            string `yaml:"url" validate:"required,url"`
	PollIntervalMs int    `yaml:"poll_interval_ms" default:"5000" validate:"gte=250,lte=600000"`
}

// AnnounceConfig represents announcement cycle timing configuration.
// The three durations are independent constants, not derived from each other.
type AnnounceConfig struct {
	DisplayDurationMs int  `yaml:"display_duration_ms" default:"7000" validate:"gte=0,lte=600000"`
	GapMs             int  `yaml:"gap_ms" default:"1500" validate:"gte=0,lte=60000"`
	SpeechDelayMs     int  `yaml:"speech_delay_ms" default:"600" validate:"gte=0,lte=10000"`
	StartMuted        bool `yaml:"start_muted"`
}

// EffectConfig represents a side-effect dispatcher's configuration.
type EffectConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for
// deployment-sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("WELCOMEWALL_FEED_URL"); v != "" {
		c.Feed.URL = v
	}
	if v := os.Getenv("WELCOMEWALL_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Feed.PollIntervalMs) * time.Millisecond
}

// DisplayDuration returns how long an announcement stays visible.
func (c *Config) DisplayDuration() time.Duration {
	return time.Duration(c.Announce.DisplayDurationMs) * time.Millisecond
}

// Gap returns the quiet gap between announcements.
func (c *Config) Gap() time.Duration {
	return time.Duration(c.Announce.GapMs) * time.Millisecond
}

// SpeechDelay returns the offset between the visual trigger and speech.
func (c *Config) SpeechDelay() time.Duration {
	return time.Duration(c.Announce.SpeechDelayMs) * time.Millisecond
}

// IsEffectEnabled checks if a side-effect dispatcher is enabled.
func (c *Config) IsEffectEnabled(name string) bool {
	if e, ok := c.Effects[name]; ok {
		return e.Enabled
	}
	return false
}

// EffectSettings returns the settings map for a side-effect dispatcher.
func (c *Config) EffectSettings(name string) map[string]any {
	if e, ok := c.Effects[name]; ok {
		return e.Settings
	}
	return nil
}
