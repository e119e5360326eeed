//go:build linux

package listener

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// unixSocket is a bound but not yet listening TCP socket.  Keeping
// bind(2) and listen(2) apart is what lets the caller pick the backlog.
type unixSocket struct {
	fd    int
	local net.Addr
}

// bindSocket first binds without SO_REUSEADDR.  A socket bound that
// way conflicts with every later bind of the port, listening or not,
// so the reservation is exclusive from Bind onwards.  Only when that
// fails with EADDRINUSE is the bind retried with SO_REUSEADDR, which
// gets past connections left in TIME_WAIT by an earlier run but still
// fails against any listener.  listen sets SO_REUSEADDR before going
// live so accepted connections inherit it and a later run can rebind.
func bindSocket(ep Endpoint) (boundSocket, error) {
	s, err := bindFD(ep, false)
	if errors.Is(err, unix.EADDRINUSE) {
		s, err = bindFD(ep, true)
	}
	return s, err
}

func bindFD(ep Endpoint, reuse bool) (boundSocket, error) {
	ip := net.ParseIP(ep.Host)

	var (
		family int
		sa     unix.Sockaddr
	)
	if ip4 := ip.To4(); ip4 != nil {
		sa4 := &unix.SockaddrInet4{Port: ep.Port}
		copy(sa4.Addr[:], ip4)
		family, sa = unix.AF_INET, sa4
	} else {
		sa6 := &unix.SockaddrInet6{Port: ep.Port}
		copy(sa6.Addr[:], ip.To16())
		family, sa = unix.AF_INET6, sa6
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	if reuse {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			unix.Close(fd) //nolint:errcheck
			return nil, os.NewSyscallError("setsockopt", err)
		}
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd) //nolint:errcheck
		return nil, os.NewSyscallError("bind", err)
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd) //nolint:errcheck
		return nil, os.NewSyscallError("getsockname", err)
	}
	return &unixSocket{fd: fd, local: toTCPAddr(bound)}, nil
}

func (s *unixSocket) addr() net.Addr { return s.local }

func (s *unixSocket) listen(backlog int) (net.Listener, error) {
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, os.NewSyscallError("setsockopt", err)
	}
	if err := unix.Listen(s.fd, backlog); err != nil {
		return nil, os.NewSyscallError("listen", err)
	}

	// FileListener dups the descriptor; ours is closed either way.
	f := os.NewFile(uintptr(s.fd), fmt.Sprintf("tcp:%s", s.local))
	ln, err := net.FileListener(f)
	f.Close()
	s.fd = -1
	if err != nil {
		return nil, err
	}
	return ln, nil
}

func (s *unixSocket) close() error {
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	if err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

func toTCPAddr(sa unix.Sockaddr) *net.TCPAddr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IPv4(a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3]), Port: a.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, a.Addr[:])
		return &net.TCPAddr{IP: ip, Port: a.Port}
	}
	return &net.TCPAddr{}
}
