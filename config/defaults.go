package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultHost is the loopback address the server binds to.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the fixed service port.
	DefaultPort = 3003

	// DefaultBacklog bounds pending, not-yet-accepted connections.  One
	// connection is ever serviced, so one pending slot is enough.
	DefaultBacklog = 1

	// DefaultReadBufferSize is the size of the single read buffer.  A
	// message is whatever one read returns, up to this many bytes.
	DefaultReadBufferSize = 1024

	// MaxReadBufferSize caps --read-buffer so one reply still fits a
	// single send.
	MaxReadBufferSize = 64 * 1024

	// DefaultIdleTimeout of zero means reads block indefinitely.
	DefaultIdleTimeout time.Duration = 0

	// DefaultConnTimeout is the dial timeout for --connect.
	DefaultConnTimeout = 10 * time.Second
)
