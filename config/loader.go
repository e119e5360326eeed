package config

// loader.go - configuration loading from a YAML file and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables
//   3. YAML config file (--config)
//   4. Defaults   (defaults.go)

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays the YAML document at path onto cfg.  Keys absent
// from the file keep their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	data, err = secondsAsDurations(data, "idle_timeout")
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// secondsAsDurations rewrites bare integers under the given top-level
// keys to Go duration strings ("30" → "30s"), matching ECHOD_* env
// parsing.  Documents without those keys come back unchanged.
func secondsAsDurations(data []byte, keys ...string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return data, nil
	}
	m := doc.Content[0]
	changed := false
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!int" {
			continue
		}
		for _, key := range keys {
			if k.Value == key {
				v.SetString(v.Value + "s")
				changed = true
			}
		}
	}
	if !changed {
		return data, nil
	}
	return yaml.Marshal(&doc)
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the ECHOD_ prefix.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("ECHOD_HOST"); v != "" {
		cfg.Host = v
	}
	if v, ok := envInt("ECHOD_PORT"); ok {
		cfg.Port = v
	}
	if v, ok := envInt("ECHOD_BACKLOG"); ok {
		cfg.Backlog = v
	}
	if v, ok := envInt("ECHOD_READ_BUFFER"); ok {
		cfg.ReadBufferSize = v
	}
	if v, ok := envDuration("ECHOD_IDLE_TIMEOUT"); ok {
		cfg.IdleTimeout = v
	}
	if v := os.Getenv("ECHOD_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v, ok := envInt("ECHOD_VERBOSE"); ok {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// envDuration accepts Go durations ("30s") or bare seconds ("30").
func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, true
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
