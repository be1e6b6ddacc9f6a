package netsock

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/Aca-S/termchat/internal/wire"
)

// Accept performs one accept(2) on l, returning a non-blocking Conn
// (spec §4.4). A nil Conn with a nil error means the accept would have
// blocked (no pending connection) — callers should not treat this as a
// failure.
func Accept(l *Listener) (*Conn, error) {
	fd, _, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, nil
		}
		return nil, err
	}
	return &Conn{fd: fd}, nil
}

// Conn is a non-blocking connected stream socket. It implements
// io.Reader and io.Writer, translating EAGAIN/EWOULDBLOCK into
// wire.ErrWouldBlock so internal/wire's Decoder/Encoder can treat it as
// ordinary control flow rather than an error worth tearing the session
// down for.
type Conn struct {
	fd int
}

// FD returns the raw file descriptor, for registration with poll(2).
func (c *Conn) FD() int { return c.fd }

func (c *Conn) Read(p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, wire.ErrWouldBlock
		}
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (c *Conn) Write(p []byte) (int, error) {
	n, err := unix.Write(c.fd, p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, wire.ErrWouldBlock
		}
		return 0, err
	}
	return n, nil
}

// Close closes the underlying socket.
func (c *Conn) Close() error { return unix.Close(c.fd) }

// RemoteAddr returns the peer's address and port, mirroring the original
// printPeerInfo (getpeername + getnameinfo), used for connect/disconnect
// logging.
func (c *Conn) RemoteAddr() (host, port string, err error) {
	sa, err := unix.Getpeername(c.fd)
	if err != nil {
		return "", "", err
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3]), strconv.Itoa(a.Port), nil
	case *unix.SockaddrInet6:
		return fmt.Sprintf("%x", a.Addr), strconv.Itoa(a.Port), nil
	default:
		return "", "", fmt.Errorf("netsock: unsupported sockaddr %T", sa)
	}
}
