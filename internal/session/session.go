// Package session runs the request/response loop over one accepted
// connection.
//
// A Session reads up to one buffer per iteration, decodes it, asks the
// command interpreter what to do and writes exactly one reply before
// reading again.  The connection is released exactly once, whichever
// way the loop ends.
package session

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"echod/internal/codec"
	"echod/internal/command"
	"echod/internal/errors"
	"echod/internal/metrics"
	"echod/util"
)

// DefaultBufferSize is used when Options.BufferSize is zero.
const DefaultBufferSize = 1024

// State tracks where a Session is in its lifecycle.
type State int

const (
	AwaitingMessage State = iota
	Processing
	Terminating
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingMessage:
		return "AWAITING_MESSAGE"
	case Processing:
		return "PROCESSING"
	case Terminating:
		return "TERMINATING"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// EndReason says why Run returned.
type EndReason int

const (
	Terminated EndReason = iota // client sent the terminate keyword
	PeerClosed                  // client disconnected without it
	Failed                      // transport error
	Cancelled                   // context done
	TimedOut                    // idle timeout expired
)

func (r EndReason) String() string {
	switch r {
	case Terminated:
		return "terminated"
	case PeerClosed:
		return "peer closed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Result summarises a finished session.  Err is set only for Failed
// and TimedOut and is always an *errors.IOError.
type Result struct {
	Reason   EndReason
	Err      error
	Messages int
}

// Options configures a Session.  Zero values select defaults.
type Options struct {
	BufferSize  int           // bytes per read; 0 → DefaultBufferSize
	IdleTimeout time.Duration // 0 → reads block until data or disconnect
	Logger      *util.Logger
	Metrics     *metrics.Collector
}

// Session owns one connection for its whole lifetime.
type Session struct {
	ID string

	conn    net.Conn
	peer    string
	bufSize int
	idle    time.Duration
	log     *util.Logger
	metrics *metrics.Collector

	state    State
	closed   bool
	messages int
}

// New takes ownership of conn.  The caller must not use or close conn
// afterwards.
func New(conn net.Conn, opts Options) *Session {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = util.NewLogger(0)
	}
	id := uuid.NewString()
	return &Session{
		ID:      id,
		conn:    conn,
		peer:    conn.RemoteAddr().String(),
		bufSize: opts.BufferSize,
		idle:    opts.IdleTimeout,
		log:     opts.Logger.With("session=" + id[:8]),
		metrics: opts.Metrics,
		state:   AwaitingMessage,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Run serves the connection until the client quits, disconnects, a
// transport error occurs or ctx is done.  Errors are logged and
// reported in the Result, never returned as panics or left with the
// connection open.
func (s *Session) Run(ctx context.Context) Result {
	s.metrics.SessionOpened()
	defer s.metrics.SessionClosed()
	defer s.close()

	// Cancellation moves the deadline to now; the blocked Read returns
	// and the deferred close is still the only close.
	stop := context.AfterFunc(ctx, func() {
		s.conn.SetDeadline(time.Now()) //nolint:errcheck
	})
	defer stop()

	buf := make([]byte, s.bufSize)
	for {
		s.state = AwaitingMessage
		if ctx.Err() != nil {
			return s.result(Cancelled, nil)
		}
		if s.idle > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.idle)) //nolint:errcheck
			if ctx.Err() != nil {
				return s.result(Cancelled, nil)
			}
		}

		n, err := s.conn.Read(buf)
		if n > 0 {
			s.state = Processing
			if res, done := s.handle(buf[:n]); done {
				return res
			}
		}

		switch {
		case err == nil && n > 0:
			continue
		case err == nil, errors.Is(err, io.EOF):
			s.log.Verbose("peer %s closed the connection", s.peer)
			return s.result(PeerClosed, nil)
		case ctx.Err() != nil:
			s.log.Verbose("session cancelled")
			return s.result(Cancelled, nil)
		case s.idle > 0 && errors.IsTimeout(err):
			ioErr := errors.WrapIO("read", s.peer, err)
			s.log.Warn("idle for %s, closing: %v", s.idle, ioErr)
			return s.result(TimedOut, ioErr)
		default:
			return s.fail(errors.WrapIO("read", s.peer, err))
		}
	}
}

// handle processes one message.  done reports that the loop must end.
func (s *Session) handle(b []byte) (res Result, done bool) {
	s.messages++
	s.metrics.MessageReceived(len(b))

	text, err := codec.Decode(b)
	if err != nil {
		s.metrics.DecodeError()
		s.log.Warn("dropping message: %v", err)
		return Result{}, false
	}
	s.log.Info("Received: %s", text)

	cmd := command.Classify(text)
	reply := codec.Encode(cmd.Reply())
	s.log.Debug("%s -> %q", cmd.Kind, reply)

	if err := s.send(reply); err != nil {
		return s.fail(err), true
	}

	if cmd.Kind != command.Terminate {
		s.metrics.EchoSent(len(reply))
		return Result{}, false
	}

	s.metrics.FarewellSent(len(reply))
	s.state = Terminating
	s.shutdown()
	return s.result(Terminated, nil), true
}

func (s *Session) send(b []byte) error {
	if _, err := s.conn.Write(b); err != nil {
		return errors.WrapIO("write", s.peer, err)
	}
	return nil
}

// shutdown half-closes both directions so the peer sees an orderly
// FIN after the farewell.  Connections without half-close support
// (pipes, TLS) go straight to Close.
func (s *Session) shutdown() {
	type halfCloser interface {
		CloseRead() error
		CloseWrite() error
	}
	hc, ok := s.conn.(halfCloser)
	if !ok {
		return
	}
	if err := hc.CloseWrite(); err != nil && !util.IsHarmless(err) {
		s.log.Debug("shutdown write: %v", err)
	}
	if err := hc.CloseRead(); err != nil && !util.IsHarmless(err) {
		s.log.Debug("shutdown read: %v", err)
	}
}

func (s *Session) fail(err error) Result {
	s.log.Error("%v", err)
	s.metrics.RecordError(err.Error())
	return s.result(Failed, err)
}

func (s *Session) result(r EndReason, err error) Result {
	return Result{Reason: r, Err: err, Messages: s.messages}
}

// close releases the connection once and enters Closed.
func (s *Session) close() {
	if s.closed {
		return
	}
	s.closed = true
	if err := s.conn.Close(); err != nil && !util.IsHarmless(err) {
		s.log.Debug("close: %v", err)
	}
	s.state = Closed
	s.log.Verbose("connection to %s closed", s.peer)
}
