// Package config loads service settings from an optional YAML file,
// overlaid by PIPELINE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config holds everything the server needs at startup.
type Config struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigin   string        `yaml:"allowed_origin"`
	BodyLimit       int           `yaml:"body_limit"`
	StrictRefs      bool          `yaml:"strict_references"`
	IgnoreDangling  bool          `yaml:"ignore_dangling"`
	Metrics         bool          `yaml:"metrics"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Log             LogConfig     `yaml:"log"`
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Addr:            ":8000",
		AllowedOrigin:   "http://localhost:3000",
		BodyLimit:       4 * 1024 * 1024,
		Metrics:         true,
		ShutdownTimeout: 10 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if non-empty) over the defaults, applies the environment
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PIPELINE_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := lookup("PIPELINE_ALLOWED_ORIGIN"); ok {
		c.AllowedOrigin = v
	}
	if v, ok := lookup("PIPELINE_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("PIPELINE_LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := lookup("PIPELINE_BODY_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PIPELINE_BODY_LIMIT: %w", err)
		}
		c.BodyLimit = n
	}
	if v, ok := lookup("PIPELINE_STRICT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: PIPELINE_STRICT: %w", err)
		}
		c.StrictRefs = b
	}
	if v, ok := lookup("PIPELINE_IGNORE_DANGLING"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: PIPELINE_IGNORE_DANGLING: %w", err)
		}
		c.IgnoreDangling = b
	}
	if v, ok := lookup("PIPELINE_METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: PIPELINE_METRICS: %w", err)
		}
		c.Metrics = b
	}
	if v, ok := lookup("PIPELINE_SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: PIPELINE_SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	case c.AllowedOrigin == "":
		return fmt.Errorf("%w: allowed_origin is empty", ErrInvalidConfig)
	case strings.Contains(c.AllowedOrigin, "*"):
		// Browsers refuse credentialed requests to a wildcard origin.
		return fmt.Errorf("%w: allowed_origin must name a single origin", ErrInvalidConfig)
	case c.BodyLimit <= 0:
		return fmt.Errorf("%w: body_limit must be positive", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, l.Level)
	}
	return lvl, nil
}

// NewLogger builds the process logger described by l.
func (l LogConfig) NewLogger() *slog.Logger {
	lvl, err := l.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
