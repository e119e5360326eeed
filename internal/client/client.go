// Package client is a line-oriented probe for an echod server.  Each
// input line is sent as one message and the single reply is printed.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"echod/internal/command"
	"echod/internal/errors"
	"echod/internal/retry"
	"echod/internal/transport"
	"echod/util"
)

// Probe dials the server and relays stdin lines as messages.
type Probe struct {
	Dialer     transport.Dialer
	Address    string
	BufferSize int           // reply buffer; 0 → 64 KiB
	Timeout    time.Duration // per-reply wait; 0 → none
	Attempts   int           // dial tries, backing off between them; ≤1 → one
	Logger     *util.Logger

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (p *Probe) stdin() io.Reader {
	if p.Stdin != nil {
		return p.Stdin
	}
	return os.Stdin
}

func (p *Probe) stdout() io.Writer {
	if p.Stdout != nil {
		return p.Stdout
	}
	return os.Stdout
}

// Run dials the server and exchanges one message per input line until
// input ends or the server says goodbye.
func (p *Probe) Run(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = util.NewLogger(0)
	}

	conn, err := p.dial(ctx, logger)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", p.Address, err)
	}
	defer conn.Close()
	logger.Verbose("connected to %s", conn.RemoteAddr())

	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now()) //nolint:errcheck
	})
	defer stop()

	size := p.BufferSize
	if size <= 0 {
		size = 64 * 1024
	}
	buf := make([]byte, size)

	out := p.stdout()
	sc := bufio.NewScanner(p.stdin())
	for sc.Scan() {
		// An empty line puts no bytes on the wire, so there would be
		// no message to answer.
		if sc.Text() == "" {
			logger.Verbose("skipping empty line")
			continue
		}
		reply, err := Exchange(conn, sc.Text(), buf, p.Timeout)
		if err != nil {
			if errors.IsPeerClosed(err) {
				logger.Info("server closed the connection")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, reply)
		if reply == command.Farewell {
			return nil
		}
	}
	return sc.Err()
}

func (p *Probe) dial(ctx context.Context, logger *util.Logger) (net.Conn, error) {
	var conn net.Conn
	err := retry.ForAttempts(p.Attempts).Do(ctx, func(attempt int) error {
		logger.Verbose("connecting to %s (attempt %d)", p.Address, attempt)
		c, err := p.Dialer.Dial(ctx, p.Address)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			logger.Debug("dial: %v", err)
			return err
		}
		conn = c
		return nil
	})
	return conn, err
}

// Exchange writes msg to conn and reads one reply into buf.  A zero
// timeout waits indefinitely.  msg must not be empty.
func Exchange(conn net.Conn, msg string, buf []byte, timeout time.Duration) (string, error) {
	if timeout > 0 {
		conn.SetDeadline(time.Now().Add(timeout)) //nolint:errcheck
	}
	if _, err := conn.Write([]byte(msg)); err != nil {
		return "", errors.WrapIO("write", conn.RemoteAddr().String(), err)
	}
	n, err := conn.Read(buf)
	if n > 0 {
		return string(buf[:n]), nil
	}
	if err == nil {
		err = io.EOF
	}
	return "", errors.WrapIO("read", conn.RemoteAddr().String(), err)
}
