package util

import (
	"fmt"
	"io"
	"net"
	"testing"
)

func TestIsHarmless(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"eof", io.EOF, true},
		{"closed pipe", io.ErrClosedPipe, true},
		{"net closed", net.ErrClosed, true},
		{"wrapped closed", fmt.Errorf("accept: %w", net.ErrClosed), true},
		{"op error closed", &net.OpError{Op: "read", Net: "tcp", Err: net.ErrClosed}, true},
		{"other", fmt.Errorf("boom"), false},
		{"unexpected eof", io.ErrUnexpectedEOF, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHarmless(tt.err); got != tt.want {
				t.Errorf("IsHarmless(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsHarmless_ClosedListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ln.Close()
	_, err = ln.Accept()
	if !IsHarmless(err) {
		t.Errorf("accept on closed listener should be harmless: %v", err)
	}
}
