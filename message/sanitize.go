package message

// Sanitize normalizes payload in place: it keeps only bytes in the
// printable ASCII range [32, 127], collapses runs of spaces to a single
// space, and drops leading spaces. It returns the slice truncated to the
// new length; a zero-length result means the message is entirely empty
// and should be dropped (spec §4.1).
//
// Sanitize is idempotent: Sanitize(Sanitize(p)) always yields the same
// bytes as Sanitize(p), since the output already satisfies its own
// invariants (no leading space, no doubled space, no byte outside
// [32, 127]).
func Sanitize(payload []byte) []byte {
	count := 0
	trimLeadingSpace := true
	for i := 0; i < len(payload); i++ {
		b := payload[i]
		if b < 32 || b > 127 {
			continue
		}
		if b == ' ' {
			if trimLeadingSpace {
				continue
			}
			if count > 0 && payload[count-1] == ' ' {
				continue
			}
		}
		payload[count] = b
		count++
		trimLeadingSpace = false
	}
	return payload[:count]
}
