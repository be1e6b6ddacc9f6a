// Package session implements the client side of the termchat protocol
// (spec §4.6): connecting, sending requests, and dispatching inbound
// frames to a Callbacks implementation. It reuses internal/wire's
// Decoder/Encoder over an ordinary net.Conn - the two-phase resumable
// state machine there degenerates into a plain blocking read/write loop
// when the underlying Read/Write never return wire.ErrWouldBlock.
package session

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/Aca-S/termchat/internal/wire"
	"github.com/Aca-S/termchat/message"
)

// Callbacks receives events decoded from the server. Session invokes
// them synchronously from its read loop in Run, so implementations
// should return promptly.
type Callbacks interface {
	OnChat(from, text string)
	OnPrivate(from, text string)
	OnPrivateResult(ok bool, nameOrTarget, text string)
	OnJoin(name string)
	OnLeave(name string)
	OnNickResult(ok bool, newName string)
	OnNickChange(oldName, newName string)
}

// Session is a connected client-side endpoint.
type Session struct {
	conn net.Conn
	dec  *wire.Decoder

	mu   sync.Mutex
	enc  *wire.Encoder
	nick string
}

// Dial connects to addr and sends the REQ·CON handshake carrying nick in
// the message's name field, not its payload (spec §4.6).
func Dial(addr, nick string) (*Session, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("session: dial: %w", err)
	}
	s := &Session{conn: conn, dec: wire.NewDecoder(), enc: wire.NewEncoder(), nick: nick}

	m, err := message.New(message.REQ|message.CON, nick, nil)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := s.enc.Send(s.conn, m); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("session: connect: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Session) Close() error { return s.conn.Close() }

// Nick returns the session's last server-confirmed nickname.
func (s *Session) Nick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nick
}

func (s *Session) send(m message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Send(s.conn, m)
}

// SendChat broadcasts text to every other connected client.
func (s *Session) SendChat(text string) error {
	m, err := message.New(message.REQ|message.REG, s.Nick(), []byte(text))
	if err != nil {
		return err
	}
	return s.send(m)
}

// SendPrivate delivers text to target alone.
func (s *Session) SendPrivate(target, text string) error {
	m, err := message.New(message.REQ|message.PRV, s.Nick(), []byte(target+" "+text))
	if err != nil {
		return err
	}
	return s.send(m)
}

// SendNick requests a nickname change. Nick is only updated once the
// server confirms it with RES·NIC·SUCCESS (see dispatch) rather than
// optimistically: adopting it early would make every subsequent request
// this session sends look spoofed to the server until its own rename
// broadcast came back around.
func (s *Session) SendNick(newName string) error {
	m, err := message.New(message.REQ|message.NIC, s.Nick(), []byte(newName))
	if err != nil {
		return err
	}
	return s.send(m)
}

// Run reads frames until ctx is canceled or the connection fails,
// dispatching each to cb. It returns context.Canceled for an ordinary
// shutdown, or the error that ended the loop otherwise.
func (s *Session) Run(ctx context.Context, cb Callbacks) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-stop:
		}
	}()

	for {
		msg, err := s.dec.Receive(s.conn)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.dispatch(msg, cb)
	}
}

func (s *Session) dispatch(msg message.Message, cb Callbacks) {
	switch {
	case msg.Type.Is(message.SIG | message.REG):
		cb.OnChat(msg.Name, string(msg.Payload))
	case msg.Type.Is(message.SIG | message.PRV):
		cb.OnPrivate(msg.Name, string(msg.Payload))
	case msg.Type.Is(message.RES | message.SUCCESS | message.PRV):
		cb.OnPrivateResult(true, msg.Name, string(msg.Payload))
	case msg.Type.Is(message.RES | message.FAILURE | message.PRV):
		cb.OnPrivateResult(false, string(msg.Payload), "")
	case msg.Type.Is(message.SIG | message.CON):
		cb.OnJoin(msg.Name)
	case msg.Type.Is(message.SIG | message.DIS):
		cb.OnLeave(msg.Name)
	case msg.Type.Is(message.RES | message.SUCCESS | message.NIC):
		newName := string(msg.Payload)
		s.mu.Lock()
		s.nick = newName
		s.mu.Unlock()
		cb.OnNickResult(true, newName)
	case msg.Type.Is(message.RES | message.FAILURE | message.NIC):
		cb.OnNickResult(false, "")
	case msg.Type.Is(message.SIG | message.NIC):
		cb.OnNickChange(msg.Name, string(msg.Payload))
	}
}
