// Package netsock implements the termchat listener factory and
// connection acceptor (spec §4.3, §4.4): passively-bound, non-blocking
// stream sockets with address/port reuse, and a thin non-blocking
// io.ReadWriteCloser over an accepted connection whose Read/Write surface
// wire.ErrWouldBlock instead of swallowing EAGAIN/EWOULDBLOCK.
//
// This package reaches for golang.org/x/sys/unix rather than net.Listener
// because the event loop needs the raw file descriptor in non-blocking
// mode with SO_REUSEPORT set — behavior the net package does not expose.
package netsock

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// Listener is a passively-bound, non-blocking stream socket.
type Listener struct {
	fd     int
	family int // unix.AF_INET or unix.AF_INET6
}

// Listeners resolves portStr to one non-blocking listening socket per
// address family that the host supports, each configured with
// SO_REUSEADDR|SO_REUSEPORT and a backlog of 128 (spec §4.3). Endpoints
// that fail any step are skipped; an error is returned only if none
// could be bound.
func Listeners(portStr string) ([]*Listener, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, fmt.Errorf("netsock: invalid port %q", portStr)
	}

	var out []*Listener
	if l, err := newListener(unix.AF_INET6, port); err == nil {
		out = append(out, l)
	}
	if l, err := newListener(unix.AF_INET, port); err == nil {
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("netsock: could not bind any listener on port %d", port)
	}
	return out, nil
}

func newListener(family, port int) (*Listener, error) {
	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	closeOnErr := func(err error) (*Listener, error) {
		_ = unix.Close(fd)
		return nil, err
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return closeOnErr(err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		return closeOnErr(err)
	}
	if family == unix.AF_INET6 {
		// Keep the IPv6 and IPv4 listeners independent, matching "typically
		// one IPv4 and one IPv6" rather than a dual-stack v6 socket that
		// would race the v4 listener for the same connections.
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1); err != nil {
			return closeOnErr(err)
		}
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return closeOnErr(err)
	}

	var sa unix.Sockaddr
	if family == unix.AF_INET6 {
		sa = &unix.SockaddrInet6{Port: port}
	} else {
		sa = &unix.SockaddrInet4{Port: port}
	}
	if err := unix.Bind(fd, sa); err != nil {
		return closeOnErr(err)
	}
	if err := unix.Listen(fd, 128); err != nil {
		return closeOnErr(err)
	}
	return &Listener{fd: fd, family: family}, nil
}

// FD returns the raw file descriptor, for registration with poll(2).
func (l *Listener) FD() int { return l.fd }

// Family returns the listener's address family (unix.AF_INET or
// unix.AF_INET6), letting a caller that needs a specific family (such as
// a test dialing over loopback IPv4) pick the right listener out of
// Listeners' result.
func (l *Listener) Family() int { return l.family }

// Addr returns the address and port the listener is actually bound to,
// which matters when Listeners was called with port "0" and the kernel
// picked an ephemeral port - the common case in tests.
func (l *Listener) Addr() (host string, port int, err error) {
	sa, err := unix.Getsockname(l.fd)
	if err != nil {
		return "", 0, err
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3]), a.Port, nil
	case *unix.SockaddrInet6:
		return fmt.Sprintf("%x", a.Addr), a.Port, nil
	default:
		return "", 0, fmt.Errorf("netsock: unsupported sockaddr %T", sa)
	}
}

// Close closes the listening socket.
func (l *Listener) Close() error { return unix.Close(l.fd) }
