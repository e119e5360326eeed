package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"echod/internal/errors"
	"echod/util"
)

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	if err := Execute(context.Background(), []string{"--version"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_Help verifies --help returns without error.
func TestExecute_Help(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"-h"}} {
		t.Run(args[0], func(t *testing.T) {
			if err := Execute(context.Background(), args); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// TestExecute_DryRun verifies --dry-run validates and exits cleanly.
func TestExecute_DryRun(t *testing.T) {
	if err := Execute(context.Background(), []string{"-p", "8080", "--dry-run"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecute_DryRunInvalid verifies --dry-run still catches bad configs.
func TestExecute_DryRunInvalid(t *testing.T) {
	err := Execute(context.Background(), []string{"-p", "70000", "--dry-run"})
	var ce *errors.ConfigError
	if !errors.As(err, &ce) || ce.Field != "port" {
		t.Fatalf("got %v, want port ConfigError", err)
	}
}

// TestExecute_InvalidFlags verifies unknown flags produce an error.
func TestExecute_InvalidFlags(t *testing.T) {
	if err := Execute(context.Background(), []string{"--nonexistent-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestExecute_StrayArgument(t *testing.T) {
	err := Execute(context.Background(), []string{"--dry-run", "extra"})
	if err == nil || !strings.Contains(err.Error(), "unexpected argument") {
		t.Fatalf("got %v, want unexpected argument error", err)
	}
}

func TestParse_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echod.yaml")
	content := "port: 4000\nbacklog: 8\nread_buffer_size: 2048\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ECHOD_BACKLOG", "16")
	t.Setenv("ECHOD_READ_BUFFER", "512")

	cfg, _, err := parse([]string{"--config", path, "-b", "256", "-vv"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 4000 {
		t.Errorf("port = %d, want 4000 from file", cfg.Port)
	}
	if cfg.Backlog != 16 {
		t.Errorf("backlog = %d, want 16 from env", cfg.Backlog)
	}
	if cfg.ReadBufferSize != 256 {
		t.Errorf("read buffer = %d, want 256 from flag", cfg.ReadBufferSize)
	}
	if cfg.Verbose != 3 {
		t.Errorf("verbose = %d, want 3", cfg.Verbose)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("host = %q, want default", cfg.Host)
	}
}

func TestParse_Quiet(t *testing.T) {
	cfg, _, err := parse([]string{"-q", "-v"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Verbose != 0 {
		t.Errorf("verbose = %d, want 0 with -q", cfg.Verbose)
	}
}

func TestParse_Connect(t *testing.T) {
	cfg, _, err := parse([]string{"-c", "127.0.0.1:3003", "-w", "3"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Connect != "127.0.0.1:3003" || cfg.ConnTimeout != 3*time.Second || cfg.ConnAttempts != 1 {
		t.Errorf("cfg = %+v", cfg)
	}

	cfg, _, err = parse([]string{"-c", "127.0.0.1:3003", "--attempts", "4"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConnAttempts != 4 {
		t.Errorf("ConnAttempts = %d, want 4", cfg.ConnAttempts)
	}
	if _, _, err := parse([]string{"-c", "127.0.0.1:3003", "--attempts", "0"}, io.Discard); err == nil {
		t.Error("expected error for zero attempts")
	}

	if _, _, err := parse([]string{"-c", "nowhere"}, io.Discard); err == nil {
		t.Error("expected error for connect without port")
	}
}

func TestPrintConfig(t *testing.T) {
	cfg, _, err := parse([]string{"--idle-timeout", "5s", "--metrics-addr", ":9100"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	printConfig(&buf, cfg)
	for _, want := range []string{"127.0.0.1:3003", "idle timeout: 5s", "metrics:      :9100"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

// TestExecute_ServeAndProbe runs the real server through Execute and
// talks to it over TCP.
func TestExecute_ServeAndProbe(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	metricsPort, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Execute(ctx, []string{
			"-q", "-p", fmt.Sprint(port),
			"--metrics-addr", fmt.Sprintf("127.0.0.1:%d", metricsPort),
		})
	}()

	var conn net.Conn
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		conn, err = net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck

	conn.Write([]byte("ping")) //nolint:errcheck
	buf := make([]byte, 64)
	n, _ := conn.Read(buf)
	if got := string(buf[:n]); got != "Server received: ping" {
		t.Errorf("reply = %q", got)
	}

	conn.Write([]byte("quit")) //nolint:errcheck
	n, _ = conn.Read(buf)
	if got := string(buf[:n]); got != "Goodbye!" {
		t.Errorf("farewell = %q", got)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Execute() = %v", err)
		}
	case <-time.After(4 * time.Second):
		t.Fatal("Execute did not return after the session ended")
	}
}
