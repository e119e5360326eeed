// Package server wires the listener to a single session.
//
// A run binds the endpoint, accepts exactly one client, serves it
// until the session ends and then releases the endpoint.  Bind and
// accept failures are returned; session failures are logged by the
// session and do not fail the run.
package server

import (
	"context"
	"net"

	"echod/config"
	"echod/internal/listener"
	"echod/internal/metrics"
	"echod/internal/session"
	"echod/util"
)

// Server is a single-shot echod server.
type Server struct {
	Endpoint listener.Endpoint
	Backlog  int
	Session  session.Options
	Logger   *util.Logger
	Metrics  *metrics.Collector

	// OnListening, if set, is called with the bound address once the
	// endpoint accepts connections.
	OnListening func(net.Addr)

	result session.Result
}

// New builds a Server from cfg.  Collaborators are passed in rather
// than looked up so tests can substitute them.
func New(cfg *config.Config, logger *util.Logger, m *metrics.Collector) *Server {
	return &Server{
		Endpoint: listener.Endpoint{Host: cfg.Host, Port: cfg.Port},
		Backlog:  cfg.Backlog,
		Session: session.Options{
			BufferSize:  cfg.ReadBufferSize,
			IdleTimeout: cfg.IdleTimeout,
			Logger:      logger,
			Metrics:     m,
		},
		Logger:  logger,
		Metrics: m,
	}
}

// Run serves one client.  It returns nil when the session ended for
// any reason, or when ctx was cancelled before a client connected.
func (s *Server) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = util.NewLogger(0)
	}

	ln := listener.New(logger)
	defer ln.Close()

	if err := ln.Bind(s.Endpoint); err != nil {
		s.Metrics.RecordError(err.Error())
		return err
	}
	if err := ln.Listen(s.Backlog); err != nil {
		s.Metrics.RecordError(err.Error())
		return err
	}
	logger.Info("Server is listening on %s", ln.Addr())
	if s.OnListening != nil {
		s.OnListening(ln.Addr())
	}

	conn, err := ln.Accept(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Verbose("shutting down before any client connected")
			return nil
		}
		s.Metrics.RecordError(err.Error())
		return err
	}
	logger.Info("Client connected from %s", conn.RemoteAddr())

	opts := s.Session
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if opts.Metrics == nil {
		opts.Metrics = s.Metrics
	}
	sess := session.New(conn, opts)
	s.result = sess.Run(ctx)
	logger.Verbose("session %s ended: %s after %d message(s)",
		sess.ID, s.result.Reason, s.result.Messages)
	return nil
}

// Result reports how the last session ended.
func (s *Server) Result() session.Result { return s.result }
