package roster

import (
	"github.com/Aca-S/termchat/message"
)

// handle applies the ACCEPTED/NAMED state table (spec §4.5) to one
// decoded request before dispatching it.
//
// Only REQ messages ever reach a handler; RES/SIG arriving from a client
// are not meaningful requests and are dropped. The name carried in the
// message must match the name the server has on record for the sender,
// except for REQ·CON itself - adopting a new name is the entire point of
// that request, so it can never already match. REG/PRV payloads that
// sanitize down to nothing are dropped rather than broadcast as an empty
// line; NIC payloads are left unsanitized since they carry a nickname,
// not chat text.
func (s *Server) handle(i int, msg message.Message) {
	c := s.clients[i]
	if msg.Type.Main() != message.REQ {
		return
	}

	sub := msg.Type.Sub()
	if sub != message.CON && msg.Name != c.name {
		return // spoofed name
	}

	switch sub {
	case message.REG:
		s.handleRegular(i, msg)
	case message.PRV:
		s.handlePrivate(i, msg)
	case message.CON:
		s.handleConnect(i, msg)
	case message.NIC:
		s.handleNickname(i, msg)
	}
}

// handleRegular fans a chat line out to everyone but its sender.
func (s *Server) handleRegular(i int, msg message.Message) {
	body := message.Sanitize(msg.Payload)
	if len(body) == 0 {
		return
	}
	s.broadcast(message.SIG|message.REG, s.clients[i].name, body, i)
}

// handlePrivate delivers a "<target> <text>" request to target alone,
// echoing the delivered text back to the sender on success or reporting
// the attempted target name on failure (spec §4.5).
func (s *Server) handlePrivate(i int, msg message.Message) {
	c := s.clients[i]
	body := message.Sanitize(msg.Payload)
	if len(body) == 0 {
		return
	}

	tokens, consumed, ok := message.ReadArgs(body, 1)
	var target string
	if ok {
		target = tokens[0]
	}

	targetIdx := -1
	if ok {
		targetIdx = s.findByName(target)
	}
	if !ok || targetIdx < 0 || targetIdx == i {
		resp, err := message.New(message.RES|message.FAILURE|message.PRV, c.name, []byte(target))
		if err == nil {
			s.sendTo(i, resp)
		}
		return
	}

	if consumed < len(body) && body[consumed] == ' ' {
		consumed++
	}
	text := body[consumed:]

	sig, err := message.New(message.SIG|message.PRV, c.name, text)
	if err == nil {
		s.sendTo(targetIdx, sig)
	}

	res, err := message.New(message.RES|message.SUCCESS|message.PRV, s.clients[targetIdx].name, text)
	if err == nil {
		s.sendTo(i, res)
	}
}

// handleConnect adopts the name carried by the join request and
// introduces the new client to the roster: every other client sees a
// SIG·CON for the newcomer, and the newcomer itself receives one SIG·CON
// per currently connected client, including itself, so its own roster
// view and everyone else's converge on the same membership in one pass.
func (s *Server) handleConnect(i int, msg message.Message) {
	s.clients[i].name = msg.Name
	s.broadcast(message.SIG|message.CON, msg.Name, nil, i)
	for j := s.l; j < s.n; j++ {
		sig, err := message.New(message.SIG|message.CON, s.clients[j].name, nil)
		if err == nil {
			s.sendTo(i, sig)
		}
	}
}

// handleNickname renames the sender, acknowledging it to the requester
// and announcing it to everyone (including the requester itself) as one
// SIG·NIC carrying the old name as sender and the new name as body, sent
// before the local record is updated.
func (s *Server) handleNickname(i int, msg message.Message) {
	c := s.clients[i]
	tokens, _, ok := message.ReadArgs(msg.Payload, 1)
	if !ok {
		resp, err := message.New(message.RES|message.FAILURE|message.NIC, c.name, nil)
		if err == nil {
			s.sendTo(i, resp)
		}
		return
	}
	newName := tokens[0]

	ack, err := message.New(message.RES|message.SUCCESS|message.NIC, c.name, []byte(newName))
	if err == nil {
		s.sendTo(i, ack)
	}
	s.broadcast(message.SIG|message.NIC, c.name, []byte(newName))
	c.name = newName
}
