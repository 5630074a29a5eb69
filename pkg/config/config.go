// Package config provides configuration management for stockdeck
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Profile struct {
		Name string `yaml:"name"`
	} `yaml:"profile"`
	Store struct {
		Backend string `yaml:"backend"` // file, sqlite
		Path    string `yaml:"path"`    // defaults to the app dir when empty
	} `yaml:"store"`
	Source struct {
		Symbols     []string `yaml:"symbols"`
		MinDelayMS  int      `yaml:"min_delay_ms"`
		MaxDelayMS  int      `yaml:"max_delay_ms"`
		FailureRate float64  `yaml:"failure_rate"`
		Seed        int64    `yaml:"seed"`
	} `yaml:"source"`
	Log struct {
		Level string `yaml:"level"` // debug, info, warn, error
		File  string `yaml:"file"`  // empty disables the file sink
	} `yaml:"log"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Profile.Name = "default"
	cfg.Store.Backend = "file"
	cfg.Source.Symbols = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "AMZN"}
	cfg.Source.MinDelayMS = 200
	cfg.Source.MaxDelayMS = 3000
	cfg.Source.FailureRate = 0.2
	cfg.Log.Level = "info"
	return cfg
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("STOCKDECK_PROFILE_NAME"); v != "" {
		cfg.Profile.Name = v
	}
	if v := os.Getenv("STOCKDECK_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("STOCKDECK_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("STOCKDECK_FAILURE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Source.FailureRate = f
		}
	}
	if v := os.Getenv("STOCKDECK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STOCKDECK_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Source.FailureRate < 0 || c.Source.FailureRate > 1 {
		return fmt.Errorf("failure_rate must be in [0,1], got %v", c.Source.FailureRate)
	}
	if c.Source.MinDelayMS < 0 || c.Source.MaxDelayMS < c.Source.MinDelayMS {
		return fmt.Errorf("invalid delay bounds: min %dms, max %dms", c.Source.MinDelayMS, c.Source.MaxDelayMS)
	}
	return nil
}

// MinDelay returns the configured lower latency bound.
func (c *Config) MinDelay() time.Duration {
	return time.Duration(c.Source.MinDelayMS) * time.Millisecond
}

// MaxDelay returns the configured upper latency bound.
func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.Source.MaxDelayMS) * time.Millisecond
}

// StorePath returns the configured store path, or the default location in
// the app dir for the chosen backend.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	if c.Store.Backend == "sqlite" {
		return GetProfileDBPath()
	}
	return GetProfilePath()
}
