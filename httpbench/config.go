package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the httpbench configuration loaded from file and flags.
type Config struct {
	Port            int           `yaml:"port"`
	Workers         int           `yaml:"workers"`
	GetTimeout      time.Duration `yaml:"get_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	QueueName       string        `yaml:"queue_name"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
}

// DefaultConfig returns built-in defaults.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		Workers:         4,
		GetTimeout:      time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    1 << 20,
		QueueName:       "httpbench",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Merge overlays the set fields of source onto c. Strings merge when
// non-empty, numbers and durations when greater than zero.
func (c *Config) Merge(source *Config) {
	if source.Port > 0 {
		c.Port = source.Port
	}
	if source.Workers > 0 {
		c.Workers = source.Workers
	}
	if source.GetTimeout > 0 {
		c.GetTimeout = source.GetTimeout
	}
	if source.ShutdownTimeout > 0 {
		c.ShutdownTimeout = source.ShutdownTimeout
	}
	if source.MaxBodyBytes > 0 {
		c.MaxBodyBytes = source.MaxBodyBytes
	}
	if source.QueueName != "" {
		c.QueueName = source.QueueName
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
	if source.LogFormat != "" {
		c.LogFormat = source.LogFormat
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var loaded Config
	if err := yaml.Unmarshal(b, &loaded); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Merge(&loaded)
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q; use text|json", format)
	}
}
