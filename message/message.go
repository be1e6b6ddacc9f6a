package message

import (
	"encoding/binary"
	"errors"
)

// Wire layout constants (spec §6):
//
//	offset  size  field
//	0       4     type            (uint32, network order)
//	4       32    name             (zero-padded NUL-terminated ASCII)
//	36      4     payloadLength   (uint32, network order, < MaxPayloadSize)
//	40      N     payload         (first payloadLength bytes significant)
const (
	NameSize       = 32
	MaxPayloadSize = 1024
	PrefixSize     = 4 + NameSize + 4 // 40
	FrameSize      = PrefixSize + MaxPayloadSize
)

// ErrPayloadTooLarge is returned by Unmarshal when the encoded
// payloadLength is >= MaxPayloadSize — a protocol violation (spec §7).
var ErrPayloadTooLarge = errors.New("message: payload length exceeds limit")

// ErrNameTooLong is returned by New and Marshal when a name does not fit
// in NameSize bytes including its terminating NUL.
var ErrNameTooLong = errors.New("message: name exceeds 31 bytes")

// Message is the only entity that travels over the wire (spec §3).
type Message struct {
	Type    Type
	Name    string // logical name; always <= NameSize-1 bytes, NUL-free in memory
	Payload []byte // logical payload; always <= MaxPayloadSize-1 bytes
}

// New builds a Message, validating the name length up front so that
// callers fail fast instead of producing a silently truncated frame.
func New(t Type, name string, payload []byte) (Message, error) {
	if len(name) >= NameSize {
		return Message{}, ErrNameTooLong
	}
	return Message{Type: t, Name: name, Payload: payload}, nil
}

// Marshal writes m into dst in wire order and returns the number of
// useful bytes written (PrefixSize + len(m.Payload)). dst must have
// length >= FrameSize; the name field and the whole payload area are
// zeroed before being filled, so payload bytes beyond len(m.Payload) are
// zero. Only the first PrefixSize+len(m.Payload) bytes form the frame —
// callers that write dst to a stream must slice it to the returned length
// themselves.
func Marshal(dst []byte, m Message) (int, error) {
	if len(m.Name) >= NameSize {
		return 0, ErrNameTooLong
	}
	if len(m.Payload) >= MaxPayloadSize {
		return 0, ErrPayloadTooLarge
	}
	binary.BigEndian.PutUint32(dst[0:4], uint32(m.Type))
	copy(dst[4:4+NameSize], make([]byte, NameSize)) // zero the field first
	copy(dst[4:4+NameSize], m.Name)
	binary.BigEndian.PutUint32(dst[36:40], uint32(len(m.Payload)))
	copy(dst[40:40+MaxPayloadSize], make([]byte, MaxPayloadSize))
	copy(dst[40:40+len(m.Payload)], m.Payload)
	return PrefixSize + len(m.Payload), nil
}

// Unmarshal is the exact inverse of Marshal given a full frame (prefix
// plus payloadLength bytes of payload). It does not allocate a copy of
// the name/payload bytes beyond what's needed to own them independently
// of src.
func Unmarshal(src []byte) (Message, error) {
	if len(src) < PrefixSize {
		return Message{}, errors.New("message: short buffer")
	}
	t := Type(binary.BigEndian.Uint32(src[0:4]))
	n := cstring(src[4 : 4+NameSize])
	length := binary.BigEndian.Uint32(src[36:40])
	if length >= MaxPayloadSize {
		return Message{}, ErrPayloadTooLarge
	}
	if len(src) < PrefixSize+int(length) {
		return Message{}, errors.New("message: short buffer")
	}
	payload := make([]byte, length)
	copy(payload, src[PrefixSize:PrefixSize+int(length)])
	return Message{Type: t, Name: n, Payload: payload}, nil
}

// PayloadLength decodes just the payloadLength field out of a PrefixSize
// buffer, which is all the stream framer needs to know how many more
// bytes to read (spec §4.2).
func PayloadLength(prefix []byte) (uint32, error) {
	if len(prefix) < PrefixSize {
		return 0, errors.New("message: short prefix")
	}
	length := binary.BigEndian.Uint32(prefix[36:40])
	if length >= MaxPayloadSize {
		return 0, ErrPayloadTooLarge
	}
	return length, nil
}

// cstring reads a NUL-terminated string out of a fixed-size field,
// stopping at the first NUL or the end of the field.
func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
