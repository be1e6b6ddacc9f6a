package wire

import (
	"io"

	"github.com/Aca-S/termchat/message"
)

// Encoder writes one framed message at a time to an io.Writer. Short
// writes are looped until the frame is complete; on ErrWouldBlock, Send
// returns it with the bytes already written recorded, and the next Send
// call resumes from there rather than retrying inside the same call.
type Encoder struct {
	buf    [message.FrameSize]byte
	length int // total bytes of buf that make up the current frame
	sent   int // bytes already written
}

// NewEncoder returns an Encoder ready to send framed messages.
func NewEncoder() *Encoder { return &Encoder{} }

// Reset discards any message partially written by a prior Send call.
// Callers that treat a send failure as fire-and-forget (e.g. a broadcast
// that ignores per-recipient failures, spec §4.5) call Reset afterward
// so the next Send starts a new frame rather than resuming a
// half-written one under a different Message.
func (e *Encoder) Reset() {
	e.length = 0
	e.sent = 0
}

// Send writes m to w as a single logical frame (spec §4.2). As with
// Decoder.Receive, ErrWouldBlock preserves partial progress internally;
// call Send again with the same Message once w is ready.
func (e *Encoder) Send(w io.Writer, m message.Message) error {
	if e.length == 0 {
		n, err := message.Marshal(e.buf[:], m)
		if err != nil {
			return err
		}
		e.length = n
	}
	for e.sent < e.length {
		n, err := w.Write(e.buf[e.sent:e.length])
		e.sent += n
		if err != nil {
			if err == ErrWouldBlock {
				return ErrWouldBlock
			}
			return err
		}
		if n == 0 {
			return ErrWouldBlock
		}
	}
	e.length = 0
	e.sent = 0
	return nil
}
