// Package errors provides the error taxonomy for echod.
//
// Fatal errors (bind, accept, transport I/O) and non-fatal ones (a
// malformed message) are distinct types so the session and server can
// branch on them with [errors.As] instead of matching strings.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrListenerClosed  = errors.New("listener is closed")
	ErrNotBound        = errors.New("endpoint not bound")
	ErrAlreadyBound    = errors.New("endpoint already bound")
	ErrNotListening    = errors.New("endpoint not listening")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrUnknownItem     = errors.New("unknown catalog item")
	ErrHeaderValue     = errors.New("mail header value contains a line break")
)

// ── Structured error types ───────────────────────────────────────────

// BindError means the endpoint could not be reserved.  Fatal: the
// server cannot start.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// AcceptError means no connection was obtained from the listener.
// Fatal for the server's single run.
type AcceptError struct {
	Addr string
	Err  error
}

func (e *AcceptError) Error() string {
	return fmt.Sprintf("accept %s: %v", e.Addr, e.Err)
}

func (e *AcceptError) Unwrap() error { return e.Err }

// IOError represents a transport failure on an open connection.
type IOError struct {
	Op   string // "read", "write", "shutdown", "close"
	Addr string // remote address
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// DecodeError reports bytes that are not valid UTF-8.  Not fatal.
type DecodeError struct {
	Offset int // index of the first invalid byte
	Len    int // length of the input
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: invalid UTF-8 at byte %d of %d", e.Offset, e.Len)
}

// DeliveryError is returned by delivery collaborators on transport or
// credential failure.  The protocol core never raises it.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// WrapIO creates an IOError for op against addr.
func WrapIO(op, addr string, err error) *IOError {
	return &IOError{Op: op, Addr: addr, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsFatal reports whether err must end the session or the server run.
// Decode errors are the only non-fatal kind.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var de *DecodeError
	return !errors.As(err, &de)
}

// IsPeerClosed reports whether err means the remote side went away
// without a transport fault: a clean EOF or a reset after close.
func IsPeerClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// IsAddrInUse reports whether err is an "address already in use" bind
// failure.
func IsAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

// IsTimeout reports whether err is a deadline expiry.
func IsTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use echod/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
