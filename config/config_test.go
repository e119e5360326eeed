package config

import (
	"testing"
	"time"

	"echod/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Address() != "127.0.0.1:3003" {
		t.Errorf("Address() = %q, want 127.0.0.1:3003", cfg.Address())
	}
	if cfg.Backlog != 1 || cfg.ReadBufferSize != 1024 || cfg.IdleTimeout != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	mod := func(f func(c *Config)) Config {
		c := Default()
		f(c)
		return *c
	}

	tests := []struct {
		name      string
		cfg       Config
		wantField string // empty → valid
	}{
		{"defaults", *Default(), ""},
		{"ephemeral port", mod(func(c *Config) { c.Port = 0 }), ""},
		{"ipv6 loopback", mod(func(c *Config) { c.Host = "::1" }), ""},
		{"no host", mod(func(c *Config) { c.Host = "" }), "host"},
		{"hostname", mod(func(c *Config) { c.Host = "localhost" }), "host"},
		{"port too big", mod(func(c *Config) { c.Port = 70000 }), "port"},
		{"negative port", mod(func(c *Config) { c.Port = -1 }), "port"},
		{"zero backlog", mod(func(c *Config) { c.Backlog = 0 }), "backlog"},
		{"zero buffer", mod(func(c *Config) { c.ReadBufferSize = 0 }), "read-buffer"},
		{"huge buffer", mod(func(c *Config) { c.ReadBufferSize = MaxReadBufferSize + 1 }), "read-buffer"},
		{"negative idle", mod(func(c *Config) { c.IdleTimeout = -time.Second }), "idle-timeout"},
		{"bad metrics addr", mod(func(c *Config) { c.MetricsAddr = "9100" }), "metrics-addr"},
		{"good metrics addr", mod(func(c *Config) { c.MetricsAddr = ":9100" }), ""},
		{"connect", mod(func(c *Config) { c.Connect = "127.0.0.1:3003"; c.Host = "" }), ""},
		{"connect no port", mod(func(c *Config) { c.Connect = "127.0.0.1" }), "connect"},
		{"connect zero attempts", mod(func(c *Config) { c.Connect = "127.0.0.1:3003"; c.ConnAttempts = 0 }), "attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var ce *errors.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ce.Field, tt.wantField)
			}
		})
	}
}
