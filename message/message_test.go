package message

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cases := []Message{
		{Type: REQ | REG, Name: "alice", Payload: []byte("hello")},
		{Type: SIG | CON, Name: "SERVER", Payload: nil},
		{Type: RES | SUCCESS | PRV, Name: "bob", Payload: []byte("hi there")},
		{Type: REQ | NIC, Name: "", Payload: []byte("newnick")},
	}
	for _, want := range cases {
		buf := make([]byte, FrameSize)
		n, err := Marshal(buf, want)
		if err != nil {
			t.Fatalf("Marshal(%+v): %v", want, err)
		}
		got, err := Unmarshal(buf[:n])
		if err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		// nil and empty payloads both round-trip to a zero-length slice, so
		// normalize want before diffing instead of asserting byte-for-byte
		// against a possibly-nil want.Payload.
		if len(want.Payload) == 0 {
			want.Payload = []byte{}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestNewNameTooLong(t *testing.T) {
	long := make([]byte, NameSize)
	for i := range long {
		long[i] = 'x'
	}
	_, err := New(REQ|REG, string(long), nil)
	if err != ErrNameTooLong {
		t.Fatalf("New: err = %v, want ErrNameTooLong", err)
	}
}

func TestUnmarshalPayloadTooLarge(t *testing.T) {
	buf := make([]byte, FrameSize)
	binWriteLen(buf, MaxPayloadSize)
	_, err := Unmarshal(buf)
	if err != ErrPayloadTooLarge {
		t.Fatalf("Unmarshal: err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestPayloadLengthRejectsOversizedPrefix(t *testing.T) {
	prefix := make([]byte, PrefixSize)
	binWriteLen(prefix, MaxPayloadSize)
	if _, err := PayloadLength(prefix); err != ErrPayloadTooLarge {
		t.Fatalf("PayloadLength: err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestTypeAccessors(t *testing.T) {
	ty := RES | SUCCESS | NIC
	if ty.Main() != RES {
		t.Errorf("Main() = %v, want RES", ty.Main())
	}
	if ty.Status() != SUCCESS {
		t.Errorf("Status() = %v, want SUCCESS", ty.Status())
	}
	if ty.Sub() != NIC {
		t.Errorf("Sub() = %v, want NIC", ty.Sub())
	}
}

func binWriteLen(b []byte, v uint32) {
	b[36] = byte(v >> 24)
	b[37] = byte(v >> 16)
	b[38] = byte(v >> 8)
	b[39] = byte(v)
}
