// Package transport opens the client side of an echod connection.
// It only knows how to reach the server; what is said over the
// connection belongs to the client package.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound connections to an echod server.
type Dialer interface {
	// Dial establishes a connection to address ("host:port").
	Dial(ctx context.Context, address string) (net.Conn, error)
}
