package wire

import (
	"io"

	"github.com/Aca-S/termchat/message"
)

// Decoder reads one framed message at a time from an io.Reader. It is not
// safe for concurrent use, and a single Decoder must always be driven
// against the same underlying reader: its internal offset/length state
// spans multiple Receive calls whenever the transport returns
// ErrWouldBlock mid-frame.
type Decoder struct {
	header  [message.PrefixSize]byte
	offset  int    // bytes of the prefix filled so far
	length  int    // decoded payloadLength, valid once offset == PrefixSize
	payload []byte // scratch buffer for the payload phase
	have    int    // bytes of payload read so far
}

// NewDecoder returns a Decoder ready to read framed messages.
func NewDecoder() *Decoder {
	return &Decoder{payload: make([]byte, message.MaxPayloadSize)}
}

func (d *Decoder) reset() {
	d.offset = 0
	d.length = 0
	d.have = 0
}

// Receive reads exactly one framed message from r (spec §4.2).
//
// Return contract:
//   - (msg, nil): a complete, well-formed frame was read.
//   - (zero, io.EOF): clean close at a frame boundary (no bytes of the
//     next frame had been read yet).
//   - (zero, io.ErrUnexpectedEOF): the stream closed mid-frame.
//   - (zero, ErrWouldBlock): r returned ErrWouldBlock; call Receive again
//     once r is ready, the partial frame already read is preserved.
//   - (zero, ErrProtocolViolation): the decoded payloadLength was out of
//     range; the frame is unrecoverable but the connection need not be
//     torn down.
//   - (zero, other error): a real I/O error occurred on r.
func (d *Decoder) Receive(r io.Reader) (message.Message, error) {
	for d.offset < message.PrefixSize {
		n, err := r.Read(d.header[d.offset:])
		d.offset += n
		if err != nil {
			if err == ErrWouldBlock {
				return message.Message{}, ErrWouldBlock
			}
			if err == io.EOF {
				if d.offset == 0 {
					return message.Message{}, io.EOF
				}
				return message.Message{}, io.ErrUnexpectedEOF
			}
			return message.Message{}, err
		}
		if n == 0 {
			// A well-behaved non-blocking reader never returns (0, nil);
			// treat it the same as ErrWouldBlock to avoid spinning.
			return message.Message{}, ErrWouldBlock
		}
	}

	if d.length == 0 {
		length, err := message.PayloadLength(d.header[:])
		if err != nil {
			d.reset()
			return message.Message{}, ErrProtocolViolation
		}
		d.length = int(length)
	}

	for d.have < d.length {
		n, err := r.Read(d.payload[d.have:d.length])
		d.have += n
		if err != nil {
			if err == ErrWouldBlock {
				return message.Message{}, ErrWouldBlock
			}
			if err == io.EOF {
				return message.Message{}, io.ErrUnexpectedEOF
			}
			return message.Message{}, err
		}
		if n == 0 {
			return message.Message{}, ErrWouldBlock
		}
	}

	frame := make([]byte, message.PrefixSize+d.length)
	copy(frame, d.header[:])
	copy(frame[message.PrefixSize:], d.payload[:d.length])
	d.reset()
	return message.Unmarshal(frame)
}
