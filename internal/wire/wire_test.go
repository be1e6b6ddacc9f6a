package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/Aca-S/termchat/message"
)

// scriptedReader simulates a non-blocking transport: each Read call
// takes from the current scripted step, which may be a chunk of bytes, a
// would-block signal, or an error. A chunk longer than the caller's buffer
// is handed out over several Read calls before the next step begins.
type scriptedReader struct {
	steps [][]byte // nil step => ErrWouldBlock
	errs  []error  // parallel to steps; non-nil overrides would-block
	i     int
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if r.i >= len(r.steps) {
		return 0, io.EOF
	}
	step := r.steps[r.i]
	var err error
	if r.i < len(r.errs) {
		err = r.errs[r.i]
	}
	if step == nil {
		r.i++
		if err == nil {
			err = ErrWouldBlock
		}
		return 0, err
	}
	n := copy(p, step)
	if n < len(step) {
		r.steps[r.i] = step[n:]
		return n, nil
	}
	r.i++
	return n, err
}

func encodeFrame(t *testing.T, m message.Message) []byte {
	t.Helper()
	buf := make([]byte, message.FrameSize)
	n, err := message.Marshal(buf, m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return buf[:n]
}

func TestDecoderReceiveWholeFrame(t *testing.T) {
	want := message.Message{Type: message.REQ | message.REG, Name: "alice", Payload: []byte("hi")}
	frame := encodeFrame(t, want)

	r := &scriptedReader{steps: [][]byte{frame}}
	d := NewDecoder()
	got, err := d.Receive(r)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got.Type != want.Type || got.Name != want.Name || !bytes.Equal(got.Payload, want.Payload) {
		t.Fatalf("Receive = %+v, want %+v", got, want)
	}
}

func TestDecoderReceiveResumesAcrossWouldBlock(t *testing.T) {
	want := message.Message{Type: message.REQ | message.NIC, Name: "bob", Payload: []byte("bob2")}
	frame := encodeFrame(t, want)

	// Split the frame across several reads with would-block in between,
	// including a split in the middle of the fixed prefix and again in
	// the middle of the payload.
	r := &scriptedReader{steps: [][]byte{
		frame[:10],
		nil,
		frame[10:message.PrefixSize],
		nil,
		frame[message.PrefixSize : message.PrefixSize+2],
		nil,
		frame[message.PrefixSize+2:],
	}}

	d := NewDecoder()
	var got message.Message
	var err error
	for i := 0; i < 10; i++ {
		got, err = d.Receive(r)
		if err != ErrWouldBlock {
			break
		}
	}
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got.Name != want.Name || !bytes.Equal(got.Payload, want.Payload) {
		t.Fatalf("Receive = %+v, want %+v", got, want)
	}
}

func TestDecoderReceiveCleanEOF(t *testing.T) {
	r := &scriptedReader{}
	d := NewDecoder()
	_, err := d.Receive(r)
	if err != io.EOF {
		t.Fatalf("Receive: err = %v, want io.EOF", err)
	}
}

func TestDecoderReceiveTruncatedPrefix(t *testing.T) {
	frame := encodeFrame(t, message.Message{Type: message.REQ | message.REG, Name: "x"})
	r := &scriptedReader{steps: [][]byte{frame[:5]}}
	d := NewDecoder()
	_, err := d.Receive(r)
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("Receive: err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestDecoderReceiveProtocolViolation(t *testing.T) {
	buf := make([]byte, message.PrefixSize)
	buf[36], buf[37], buf[38], buf[39] = 0, 0, 0x04, 0x00 // payloadLength = 1024
	r := &scriptedReader{steps: [][]byte{buf}}
	d := NewDecoder()
	_, err := d.Receive(r)
	if err != ErrProtocolViolation {
		t.Fatalf("Receive: err = %v, want ErrProtocolViolation", err)
	}
}

type scriptedWriter struct {
	chunks [][]byte
	wouldBlockAfter int // return ErrWouldBlock after this many bytes total, -1 to never
	written int
}

func (w *scriptedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if w.wouldBlockAfter >= 0 && w.written+n > w.wouldBlockAfter {
		n = w.wouldBlockAfter - w.written
		if n < 0 {
			n = 0
		}
		w.chunks = append(w.chunks, append([]byte(nil), p[:n]...))
		w.written += n
		return n, ErrWouldBlock
	}
	w.chunks = append(w.chunks, append([]byte(nil), p...))
	w.written += n
	return n, nil
}

func (w *scriptedWriter) all() []byte {
	var out []byte
	for _, c := range w.chunks {
		out = append(out, c...)
	}
	return out
}

func TestEncoderSendResumesAcrossWouldBlock(t *testing.T) {
	m := message.Message{Type: message.SIG | message.REG, Name: "alice", Payload: []byte("hello world")}
	want := encodeFrame(t, m)

	w := &scriptedWriter{wouldBlockAfter: 20}
	e := NewEncoder()
	err := e.Send(w, m)
	if err != ErrWouldBlock {
		t.Fatalf("first Send: err = %v, want ErrWouldBlock", err)
	}

	w.wouldBlockAfter = -1
	if err := e.Send(w, m); err != nil {
		t.Fatalf("second Send: %v", err)
	}
	if !bytes.Equal(w.all(), want) {
		t.Fatalf("written = %x, want %x", w.all(), want)
	}
}
