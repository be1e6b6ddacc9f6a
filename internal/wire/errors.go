// Package wire implements the termchat stream framer (spec §4.2): reading
// exactly one framed message from a byte stream and writing one message
// atomically, over a transport that may be non-blocking.
//
// The decoder/encoder pair here is a structural port of
// code.hybscloud.com/framer's internal two-phase, resumable state machine
// (see that package's internal.go readStream/writeStream) retargeted at
// termchat's fixed 40-byte-prefix wire format instead of that package's
// variable-length-prefix format: the same offset/length state persists
// across calls so a caller driven by readiness events (poll/select) can
// retry after ErrWouldBlock without losing already-read bytes.
package wire

import "errors"

// ErrWouldBlock is the "no progress this round" control-flow signal
// (spec §5): a non-blocking read or write returned EAGAIN/EWOULDBLOCK.
// It is not a failure — the caller should retry once the underlying
// descriptor is ready again. Any bytes already consumed before
// ErrWouldBlock was seen remain safely recorded in the Decoder/Encoder's
// internal state.
var ErrWouldBlock = errors.New("wire: would block")

// ErrProtocolViolation reports a malformed frame that must be dropped
// without tearing down the connection (spec §7): currently, an encoded
// payloadLength that is not smaller than message.MaxPayloadSize.
var ErrProtocolViolation = errors.New("wire: protocol violation")
