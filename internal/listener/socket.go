package listener

import "net"

// boundSocket is a platform socket between bind and listen.
type boundSocket interface {
	addr() net.Addr
	listen(backlog int) (net.Listener, error)
	close() error
}
