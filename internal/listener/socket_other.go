//go:build !linux

package listener

import (
	"context"
	"net"
)

// netSocket reserves the endpoint with the net package.  Bind and
// listen happen in one call here, so the backlog is left to the OS.
type netSocket struct {
	ln net.Listener
}

func bindSocket(ep Endpoint) (boundSocket, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", ep.String())
	if err != nil {
		return nil, err
	}
	return &netSocket{ln: ln}, nil
}

func (s *netSocket) addr() net.Addr { return s.ln.Addr() }

func (s *netSocket) listen(int) (net.Listener, error) {
	ln := s.ln
	s.ln = nil
	return ln, nil
}

func (s *netSocket) close() error {
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	s.ln = nil
	return err
}
