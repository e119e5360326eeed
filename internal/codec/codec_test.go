package codec

import (
	"bytes"
	"strings"
	"testing"

	"echod/internal/errors"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		input      []byte
		want       string
		wantErr    bool
		wantOffset int
	}{
		{"ascii", []byte("hello"), "hello", false, 0},
		{"empty", []byte{}, "", false, 0},
		{"multibyte", []byte("héllo wörld ✓"), "héllo wörld ✓", false, 0},
		{"emoji", []byte("🚀 go"), "🚀 go", false, 0},
		{"lone continuation", []byte{'a', 0x80, 'b'}, "", true, 1},
		{"truncated sequence", []byte{'o', 'k', 0xE2, 0x82}, "", true, 2},
		{"invalid lead", []byte{0xFF}, "", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				var de *errors.DecodeError
				if !errors.As(err, &de) {
					t.Fatalf("expected *DecodeError, got %T", err)
				}
				if de.Offset != tt.wantOffset || de.Len != len(tt.input) {
					t.Errorf("got offset %d len %d, want offset %d len %d",
						de.Offset, de.Len, tt.wantOffset, len(tt.input))
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRoundTrip checks encode(decode(b)) == b for valid input up to the
// read buffer size.
func TestRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("quit"),
		[]byte("  Quit \n"),
		[]byte("Привет, мир"),
		[]byte(strings.Repeat("é", 512)), // exactly 1024 bytes
		bytes.Repeat([]byte("x"), 1024),
	}
	for _, in := range inputs {
		text, err := Decode(in)
		if err != nil {
			t.Fatalf("Decode(%q): %v", in, err)
		}
		if out := Encode(text); !bytes.Equal(out, in) {
			t.Errorf("round trip mismatch: got %q, want %q", out, in)
		}
	}
}
