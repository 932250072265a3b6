// Package paramcodec converts opaque parameter blobs to and from the
// printable text form used inside style files.
//
// Every input byte becomes two lower-case hexadecimal characters, so the
// encoded form is exactly twice as long as the input and needs no escaping
// inside XML text.
package paramcodec

import "encoding/hex"

// Encode returns the printable form of b. Encode(nil) is "".
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}

// Decode reverses Encode. It consumes len(s)/2 bytes of output: a trailing
// odd character is dropped and a character outside [0-9a-fA-F] decodes as a
// zero nibble. Decode never fails and never returns nil.
func Decode(s string) []byte {
	out := make([]byte, len(s)/2)
	for i := range out {
		out[i] = nibble(s[2*i])<<4 | nibble(s[2*i+1])
	}
	return out
}

// DecodeStrict is Decode without the lenient fallbacks: odd lengths and
// non-hex characters are reported as errors.
func DecodeStrict(s string) ([]byte, error) {
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func nibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
