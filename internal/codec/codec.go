// Package codec converts between raw network reads and text messages.
//
// Framing is per read: one call to Decode covers exactly the bytes one
// Read returned.  There is no reassembly across reads and no chunking
// on the way out.
package codec

import (
	"unicode/utf8"

	"echod/internal/errors"
)

// Decode interprets b as UTF-8.  It returns a *errors.DecodeError that
// points at the first invalid byte when b is not well formed.
func Decode(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	return "", &errors.DecodeError{Offset: firstInvalid(b), Len: len(b)}
}

// Encode returns the UTF-8 bytes of s.  Strings built from invalid
// UTF-8 are passed through byte for byte.
func Encode(s string) []byte {
	return []byte(s)
}

func firstInvalid(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}
