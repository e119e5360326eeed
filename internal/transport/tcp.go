package transport

import (
	"context"
	"net"
	"time"

	"echod/internal/errors"
)

// TCPDialer establishes plain TCP connections.
type TCPDialer struct {
	Timeout time.Duration // 0 → no timeout beyond ctx
}

// Dial connects to address over TCP.  Failures are *errors.IOError
// with Op "dial".
func (d *TCPDialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.WrapIO("dial", address, err)
	}
	return conn, nil
}
