// Package roster implements the termchat server core (spec §4.5): the
// packed parallel arrays of monitored descriptors and per-client state,
// the single-threaded poll-driven event loop, message-type dispatch, and
// broadcast with exclusion lists.
package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/Aca-S/termchat/internal/netsock"
	"github.com/Aca-S/termchat/internal/wire"
	"github.com/Aca-S/termchat/message"
)

// MaxClients is the fixed per-listener-set client capacity (spec §3:
// "Capacity is fixed at L + 256").
const MaxClients = 256

// DefaultName is the name a freshly accepted, not-yet-introduced client
// is known by (spec §3).
const DefaultName = "CLIENT"

// ServerName is the pseudo-identity the server uses when it originates a
// message itself, such as the connect greeting.
const ServerName = "SERVER"

// Greeting is sent as SIG·REG from ServerName to every freshly accepted
// client (spec §4.5), carried over verbatim from the C original.
const Greeting = "To set a name, do /nick <name>"

// client is server-side per-session state (spec §3's "Client record"),
// extended with the codec state a session needs to resume partially
// read/written frames across poll() wakeups.
type client struct {
	conn *netsock.Conn
	name string
	dec  *wire.Decoder
	enc  *wire.Encoder
}

// Server owns the packed monitors/clients arrays and runs the event loop.
// It is not safe for concurrent use beyond the Run goroutine; callers
// that need to stop it call Close or cancel the context passed to Run.
type Server struct {
	log *slog.Logger

	listeners []*netsock.Listener
	monitors  []unix.PollFd // len == N; [0,L) listeners, [L,N) clients
	clients   []*client     // len == N; clients[i] valid only for i >= L

	l int // numOfListeners
	n int // numOfMonitors

	wakeR, wakeW int // self-pipe used to unblock poll(2) from Close
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithLogger overrides the server's logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New resolves port to one or more listening sockets and initializes the
// roster (spec §4.5's initServer). A fatal startup error (no listener
// could be bound) is returned rather than exiting the process, matching
// spec §7's "fatal startup" kind left for the caller (cmd/termchatd) to
// turn into a diagnostic and os.Exit.
func New(port string, opts ...Option) (*Server, error) {
	listeners, err := netsock.Listeners(port)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}

	r, w, err := pipe()
	if err != nil {
		for _, l := range listeners {
			_ = l.Close()
		}
		return nil, fmt.Errorf("roster: wake pipe: %w", err)
	}

	s := &Server{
		log:       slog.Default(),
		listeners: listeners,
		l:         len(listeners),
		wakeR:     r,
		wakeW:     w,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.n = s.l
	s.monitors = make([]unix.PollFd, s.l, s.l+MaxClients)
	s.clients = make([]*client, s.l, s.l+MaxClients)
	for i, l := range listeners {
		s.monitors[i] = unix.PollFd{Fd: int32(l.FD()), Events: unix.POLLIN}
	}
	return s, nil
}

// Addr returns the port of the server's IPv4 listener, falling back to
// whatever listener exists if none is IPv4. Useful for dialing a server
// started with New("0"), where the kernel picked an ephemeral port.
func (s *Server) Addr() (host string, port int, err error) {
	for _, l := range s.listeners {
		if l.Family() == unix.AF_INET {
			_, port, err := l.Addr()
			return "127.0.0.1", port, err
		}
	}
	_, port, err = s.listeners[0].Addr()
	return "127.0.0.1", port, err
}

// Close tears down every listener and client connection and unblocks a
// concurrently running Run.
func (s *Server) Close() error {
	_ = unix.Write(s.wakeW, []byte{0})
	for _, l := range s.listeners {
		_ = l.Close()
	}
	for i := s.l; i < s.n; i++ {
		_ = s.clients[i].conn.Close()
	}
	_ = unix.Close(s.wakeR)
	_ = unix.Close(s.wakeW)
	return nil
}

// Run blocks, servicing the event loop until ctx is canceled or a fatal
// error occurs. The readiness wait itself uses poll(2) with an infinite
// timeout (spec §5: "Cancellation/timeouts: none ... infinite timeout");
// ctx cancellation is delivered by writing to a self-pipe registered
// alongside the real monitors so Close can unblock poll without
// disturbing §4.5's "indices in [0,L) are listeners, [L,N) are clients"
// invariant.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = unix.Write(s.wakeW, []byte{0})
	}()

	pollBuf := make([]unix.PollFd, 0, s.l+MaxClients+1)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pollBuf = append(pollBuf[:0], s.monitors[:s.n]...)
		pollBuf = append(pollBuf, unix.PollFd{Fd: int32(s.wakeR), Events: unix.POLLIN})

		_, err := unix.Poll(pollBuf, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("roster: poll: %w", err)
		}
		copy(s.monitors[:s.n], pollBuf[:s.n])

		if pollBuf[s.n].Revents&unix.POLLIN != 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			return nil
		}

		currentConnections := s.n
		for i := 0; i < currentConnections; i++ {
			if s.monitors[i].Revents&unix.POLLIN == 0 {
				continue
			}
			if i < s.l {
				s.acceptOne(i)
				continue
			}
			if s.serviceClient(i) {
				currentConnections--
			}
		}
	}
}

func (s *Server) acceptOne(listenerIdx int) {
	conn, err := netsock.Accept(s.listeners[listenerIdx])
	if err != nil {
		s.log.Warn("accept failed", "error", err)
		return
	}
	if conn == nil {
		return // would have blocked; no pending connection after all
	}

	if s.n-s.l == MaxClients {
		_ = conn.Close()
		s.log.Warn("client rejected: server at capacity")
		return
	}

	host, port, _ := conn.RemoteAddr()
	s.log.Info("new connection", "address", host, "port", port, "index", s.n)

	s.monitors = append(s.monitors, unix.PollFd{Fd: int32(conn.FD()), Events: unix.POLLIN})
	s.clients = append(s.clients, &client{
		conn: conn,
		name: DefaultName,
		dec:  wire.NewDecoder(),
		enc:  wire.NewEncoder(),
	})
	s.n++

	greeting, _ := message.New(message.SIG|message.REG, ServerName, []byte(Greeting))
	s.sendTo(s.n-1, greeting)
}

// serviceClient handles readiness on client index i: reads exactly one
// framed message and dispatches it, or reaps the session on EOF/error.
// It returns true if the session was reaped (and the arrays compacted).
func (s *Server) serviceClient(i int) bool {
	c := s.clients[i]
	msg, err := c.dec.Receive(c.conn)
	if err != nil {
		switch {
		case err == wire.ErrWouldBlock:
			return false
		case err == wire.ErrProtocolViolation:
			s.log.Debug("protocol violation", "index", i, "name", c.name)
			return false
		default:
			s.disconnect(i)
			return true
		}
	}
	s.handle(i, msg)
	return false
}

func (s *Server) disconnect(i int) {
	c := s.clients[i]
	host, port, _ := c.conn.RemoteAddr()
	s.log.Info("client disconnected", "address", host, "port", port, "name", c.name)

	s.broadcast(message.SIG|message.DIS, c.name, nil, i)
	_ = c.conn.Close()

	copy(s.monitors[i:s.n-1], s.monitors[i+1:s.n])
	copy(s.clients[i:s.n-1], s.clients[i+1:s.n])
	s.n--
	s.monitors = s.monitors[:s.n]
	s.clients = s.clients[:s.n]
}

// pipe creates a non-blocking pipe used only as a poll(2) wake signal.
func pipe() (r, w int, err error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK); err != nil {
		return 0, 0, err
	}
	return fds[0], fds[1], nil
}
