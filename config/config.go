// Package config defines the runtime configuration for echod and
// loads it from a YAML file and the environment.
package config

import (
	"fmt"
	"net"
	"time"

	"echod/internal/errors"
)

// Config holds every tuneable for a single echod run.
type Config struct {
	// ── Endpoint ─────────────────────────────────────────────────────
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Backlog int    `yaml:"backlog"`

	// ── Session ──────────────────────────────────────────────────────
	ReadBufferSize int           `yaml:"read_buffer_size"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"` // 0 → block forever

	// ── Observability ────────────────────────────────────────────────
	MetricsAddr string `yaml:"metrics_addr"` // empty → disabled
	Verbose     int    `yaml:"verbose"`

	// ── Client mode ──────────────────────────────────────────────────
	Connect      string        `yaml:"-"` // host:port; non-empty → probe client
	ConnTimeout  time.Duration `yaml:"-"`
	ConnAttempts int           `yaml:"-"` // dial tries before giving up
}

// Default returns a Config populated with the values in defaults.go.
func Default() *Config {
	return &Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		Backlog:        DefaultBacklog,
		ReadBufferSize: DefaultReadBufferSize,
		IdleTimeout:    DefaultIdleTimeout,
		Verbose:        1,
		ConnTimeout:    DefaultConnTimeout,
		ConnAttempts:   1,
	}
}

// Address returns the listen address as host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Connect != "" {
		if _, _, err := net.SplitHostPort(c.Connect); err != nil {
			return &errors.ConfigError{
				Field: "connect", Value: c.Connect,
				Message: "expected host:port",
			}
		}
		if c.ConnAttempts < 1 {
			return &errors.ConfigError{
				Field: "attempts", Value: c.ConnAttempts,
				Message: "must be at least 1",
			}
		}
		return nil
	}

	if c.Host == "" {
		return &errors.ConfigError{Field: "host", Message: "required"}
	}
	if net.ParseIP(c.Host) == nil {
		return &errors.ConfigError{
			Field: "host", Value: c.Host,
			Message: "must be a numeric IP address",
			Hint:    "use 127.0.0.1 for loopback or 0.0.0.0 for all interfaces",
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &errors.ConfigError{
			Field: "port", Value: c.Port,
			Message: "out of range 0-65535",
			Hint:    "use 0 to let the OS pick a free port",
		}
	}
	if c.Backlog < 1 {
		return &errors.ConfigError{Field: "backlog", Value: c.Backlog, Message: "must be at least 1"}
	}
	if c.ReadBufferSize < 1 || c.ReadBufferSize > MaxReadBufferSize {
		return &errors.ConfigError{
			Field: "read-buffer", Value: c.ReadBufferSize,
			Message: fmt.Sprintf("out of range 1-%d", MaxReadBufferSize),
		}
	}
	if c.IdleTimeout < 0 {
		return &errors.ConfigError{Field: "idle-timeout", Value: c.IdleTimeout, Message: "must not be negative"}
	}
	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return &errors.ConfigError{
				Field: "metrics-addr", Value: c.MetricsAddr,
				Message: "expected host:port",
			}
		}
	}
	return nil
}
