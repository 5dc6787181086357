package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the agent and daemon.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr             string   `json:"addr" yaml:"addr" toml:"addr"`
	Executable       string   `json:"executable" yaml:"executable" toml:"executable"`
	SearchPaths      []string `json:"search_paths" yaml:"search_paths" toml:"search_paths"`
	AcceptTimeoutMS  int      `json:"accept_timeout_ms" yaml:"accept_timeout_ms" toml:"accept_timeout_ms"`
	InterruptGraceMS int      `json:"interrupt_grace_ms" yaml:"interrupt_grace_ms" toml:"interrupt_grace_ms"`
	LogLevel         string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat        string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSOrigins      []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	Progress         string   `json:"progress" yaml:"progress" toml:"progress"`
}

// Defaults applied by WithDefaults.
const (
	DefaultAddr             = "127.0.0.1:8090"
	DefaultExecutable       = "ascp"
	DefaultAcceptTimeoutMS  = 3000
	DefaultInterruptGraceMS = 2000
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultProgress         = "bar"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, cfg.Validate()
}

// WithDefaults returns a copy with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Executable == "" {
		c.Executable = DefaultExecutable
	}
	if c.AcceptTimeoutMS <= 0 {
		c.AcceptTimeoutMS = DefaultAcceptTimeoutMS
	}
	if c.InterruptGraceMS <= 0 {
		c.InterruptGraceMS = DefaultInterruptGraceMS
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.Progress == "" {
		c.Progress = DefaultProgress
	}
	return c
}

// Validate rejects values that can never work.
func (c Config) Validate() error {
	switch c.Progress {
	case "", "bar", "plain", "multi", "none":
	default:
		return fmt.Errorf("invalid progress mode %q (bar|plain|multi|none)", c.Progress)
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (console|json)", c.LogFormat)
	}
	if c.AcceptTimeoutMS < 0 || c.InterruptGraceMS < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// AcceptTimeout returns the accept bound as a duration.
func (c Config) AcceptTimeout() time.Duration {
	return time.Duration(c.AcceptTimeoutMS) * time.Millisecond
}

// InterruptGrace returns the interrupt grace period as a duration.
func (c Config) InterruptGrace() time.Duration {
	return time.Duration(c.InterruptGraceMS) * time.Millisecond
}
