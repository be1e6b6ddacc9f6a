package roster

import (
	"github.com/Aca-S/termchat/message"
)

// sendTo marshals and writes m to the client at index i. A failure -
// including ErrWouldBlock, since chat messages are small enough that a
// blocked write only happens under genuine backpressure the server does
// not attempt to recover from (spec §1 Non-goals: "flow control beyond
// the OS socket buffers") - is logged and otherwise ignored; the encoder
// is reset so a half-written frame never bleeds into the next message
// sent to the same client.
func (s *Server) sendTo(i int, m message.Message) {
	c := s.clients[i]
	if err := c.enc.Send(c.conn, m); err != nil {
		s.log.Debug("send failed", "index", i, "name", c.name, "type", m.Type, "error", err)
		c.enc.Reset()
	}
}

// broadcast sends a message built from t, name and payload to every
// connected client except those listed in skip (spec §4.5). Per-recipient
// failures are ignored - a crashed peer is reaped on its own readiness
// pass, not by the broadcast that happened to be in flight when it died.
func (s *Server) broadcast(t message.Type, name string, payload []byte, skip ...int) {
	excluded := make(map[int]struct{}, len(skip))
	for _, i := range skip {
		excluded[i] = struct{}{}
	}
	m, err := message.New(t, name, payload)
	if err != nil {
		s.log.Warn("broadcast: malformed message", "name", name, "error", err)
		return
	}
	for i := s.l; i < s.n; i++ {
		if _, ok := excluded[i]; ok {
			continue
		}
		s.sendTo(i, m)
	}
}

// findByName returns the index of the first connected client (in [l,n))
// recorded under name, or -1 if no client currently carries it.
func (s *Server) findByName(name string) int {
	for i := s.l; i < s.n; i++ {
		if s.clients[i].name == name {
			return i
		}
	}
	return -1
}
