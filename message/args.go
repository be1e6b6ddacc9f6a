package message

// ReadArgs splits payload into up to n whitespace-separated tokens,
// mirroring the original readArgs's job of extracting a handful of
// leading arguments — e.g. the target nickname out of a PRV payload
// ("<target> <text>") or the new nickname out of a NIC payload — while
// leaving the remainder of the payload untouched for the caller to use
// as free text.
//
// It returns the extracted tokens and consumed, the index into payload
// just past the last character of the last token. ok is false if payload
// is empty or fewer than n tokens could be found, matching the
// original's "-1 means malformed" contract.
func ReadArgs(payload []byte, n int) (tokens []string, consumed int, ok bool) {
	if n <= 0 || len(payload) == 0 {
		return nil, 0, false
	}
	tokens = make([]string, 0, n)
	i := 0
	for len(tokens) < n {
		for i < len(payload) && payload[i] == ' ' {
			i++
		}
		start := i
		for i < len(payload) && payload[i] != ' ' {
			i++
		}
		if start == i {
			return nil, 0, false
		}
		tokens = append(tokens, string(payload[start:i]))
	}
	return tokens, i, true
}
