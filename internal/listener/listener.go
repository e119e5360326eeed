// Package listener owns the server's listening endpoint.
//
// Binding and listening are separate steps so the accept backlog can
// be chosen explicitly.  A Listener accepts connections one at a time
// on the caller's goroutine and is closed exactly once; extra Close
// calls are no-ops.
package listener

import (
	"context"
	"net"
	"strconv"
	"time"

	"echod/internal/errors"
	"echod/util"
)

// Endpoint is the address and port a Listener binds to.
type Endpoint struct {
	Host string
	Port int
}

// String returns host:port.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ParseEndpoint parses "host:port".  Host must be a numeric IP.
func ParseEndpoint(s string) (Endpoint, error) {
	host, port, err := util.SplitAddr(s)
	if err != nil {
		return Endpoint{}, err
	}
	ep := Endpoint{Host: host, Port: port}
	if err := ep.validate(); err != nil {
		return Endpoint{}, err
	}
	return ep, nil
}

func (e Endpoint) validate() error {
	if net.ParseIP(e.Host) == nil || e.Port < 0 || e.Port > 65535 {
		return errors.ErrInvalidEndpoint
	}
	return nil
}

type state int

const (
	stateNew state = iota
	stateBound
	stateListening
	stateClosed
)

// Listener is a single-owner listening endpoint.  It is not safe for
// concurrent use apart from the context watcher installed by Accept.
type Listener struct {
	logger   *util.Logger
	state    state
	endpoint Endpoint
	sock     boundSocket  // set while bound but not yet listening
	ln       net.Listener // set once listening
}

// New returns an unbound Listener.
func New(logger *util.Logger) *Listener {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &Listener{logger: logger}
}

// Bind reserves ep for this process.  It fails with *errors.BindError
// when the address is invalid or already in use, including by a socket
// that is bound but not yet listening.
func (l *Listener) Bind(ep Endpoint) error {
	switch l.state {
	case stateClosed:
		return errors.ErrListenerClosed
	case stateBound, stateListening:
		return &errors.BindError{Addr: ep.String(), Err: errors.ErrAlreadyBound}
	}
	if err := ep.validate(); err != nil {
		return &errors.BindError{Addr: ep.String(), Err: err}
	}

	sock, err := bindSocket(ep)
	if err != nil {
		return &errors.BindError{Addr: ep.String(), Err: err}
	}
	l.sock = sock
	l.endpoint = ep
	l.state = stateBound
	l.logger.Verbose("bound %s", sock.addr())
	return nil
}

// Listen marks the bound endpoint ready to accept.  backlog bounds the
// number of pending connections the kernel queues for us.
func (l *Listener) Listen(backlog int) error {
	switch l.state {
	case stateClosed:
		return errors.ErrListenerClosed
	case stateNew:
		return errors.ErrNotBound
	case stateListening:
		return nil
	}
	if backlog < 1 {
		backlog = 1
	}

	ln, err := l.sock.listen(backlog)
	if err != nil {
		return &errors.BindError{Addr: l.endpoint.String(), Err: err}
	}
	l.ln = ln
	l.sock = nil
	l.state = stateListening
	l.logger.Verbose("listening on %s (backlog %d)", ln.Addr(), backlog)
	return nil
}

// Accept blocks until a client connects or ctx is done.  Transport
// failures come back as *errors.AcceptError; cancellation returns
// ctx.Err() unwrapped.
func (l *Listener) Accept(ctx context.Context) (net.Conn, error) {
	switch l.state {
	case stateClosed:
		return nil, errors.ErrListenerClosed
	case stateNew, stateBound:
		return nil, errors.ErrNotListening
	}

	// Unblock Accept when the context expires without closing the
	// listener underneath its owner.
	if dl, ok := l.ln.(interface{ SetDeadline(time.Time) error }); ok {
		stop := context.AfterFunc(ctx, func() {
			dl.SetDeadline(time.Now()) //nolint:errcheck
		})
		defer stop()
	}

	conn, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &errors.AcceptError{Addr: l.ln.Addr().String(), Err: err}
	}
	return conn, nil
}

// Addr returns the bound address, or nil before Bind and after Close.
// With port 0 it reports the port the OS picked.
func (l *Listener) Addr() net.Addr {
	switch l.state {
	case stateBound:
		return l.sock.addr()
	case stateListening:
		return l.ln.Addr()
	}
	return nil
}

// Close releases the endpoint.  Calling it again is a no-op.
func (l *Listener) Close() error {
	var err error
	switch l.state {
	case stateClosed, stateNew:
		l.state = stateClosed
		return nil
	case stateBound:
		err = l.sock.close()
	case stateListening:
		err = l.ln.Close()
	}
	l.state = stateClosed
	l.sock = nil
	l.ln = nil
	l.logger.Verbose("released %s", l.endpoint)
	return err
}
