// Package cmd wires up the CLI flags and dispatches to the server or
// the probe client.
package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"echod/config"
	"echod/internal/client"
	"echod/internal/metrics"
	"echod/internal/server"
	"echod/internal/transport"
	"echod/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X echod/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// options holds everything parsed from the command line that is not
// part of config.Config.
type options struct {
	configPath  string
	dryRun      bool
	showVersion bool
	showHelp    bool
}

// Execute parses args and runs echod.
func Execute(ctx context.Context, args []string) error {
	cfg, opts, err := parse(args, os.Stderr)
	if err != nil {
		return err
	}

	switch {
	case opts.showHelp:
		return nil
	case opts.showVersion:
		fmt.Printf("echod %s\n", version)
		return nil
	case opts.dryRun:
		printConfig(os.Stdout, cfg)
		return nil
	}

	logger := util.NewLogger(cfg.Verbose)
	if cfg.Connect != "" {
		return runProbe(ctx, cfg, logger)
	}
	return runServer(ctx, cfg, logger)
}

// parse builds the effective configuration.  Flags beat ECHOD_* env
// vars, which beat the --config file, which beats defaults.
func parse(args []string, usageOut io.Writer) (*config.Config, options, error) {
	var opts options
	flags := config.Default()

	fs := flag.NewFlagSet("echod", flag.ContinueOnError)
	fs.SetOutput(usageOut)

	// ── endpoint ─────────────────────────────────────────────────
	fs.StringVarP(&flags.Host, "host", "H", flags.Host, "Address to bind (numeric IP)")
	fs.IntVarP(&flags.Port, "port", "p", flags.Port, "Port to bind (0 = any free port)")
	fs.IntVar(&flags.Backlog, "backlog", flags.Backlog, "Pending connection queue length")

	// ── session ──────────────────────────────────────────────────
	fs.IntVarP(&flags.ReadBufferSize, "read-buffer", "b", flags.ReadBufferSize, "Bytes per read (one message)")
	fs.DurationVar(&flags.IdleTimeout, "idle-timeout", flags.IdleTimeout, "Close an idle session after this long (0 = never)")

	// ── client ───────────────────────────────────────────────────
	fs.StringVarP(&flags.Connect, "connect", "c", "", "Probe a server at host:port instead of serving")
	var timeoutSec int
	fs.IntVarP(&timeoutSec, "timeout", "w", 0, "Probe dial and reply timeout in seconds")
	fs.IntVar(&flags.ConnAttempts, "attempts", flags.ConnAttempts, "Probe dial attempts, backing off between them")

	// ── output ───────────────────────────────────────────────────
	fs.StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on host:port")
	fs.CountVarP(&flags.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	quiet := fs.BoolP("quiet", "q", false, "Only report errors")

	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Validate and print the configuration, then exit")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&opts.showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(usageOut, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}
	if fs.NArg() > 0 {
		return nil, opts, fmt.Errorf("unexpected argument %q (use --help for usage)", fs.Arg(0))
	}
	if opts.showHelp {
		printUsage(usageOut, fs)
		return nil, opts, nil
	}
	if opts.showVersion {
		return nil, opts, nil
	}

	// ── layer sources ────────────────────────────────────────────
	cfg := config.Default()
	if opts.configPath != "" {
		if err := config.LoadFile(opts.configPath, cfg); err != nil {
			return nil, opts, err
		}
	}
	config.LoadFromEnv(cfg)

	changed := func(name string) bool { return fs.Changed(name) }
	if changed("host") {
		cfg.Host = flags.Host
	}
	if changed("port") {
		cfg.Port = flags.Port
	}
	if changed("backlog") {
		cfg.Backlog = flags.Backlog
	}
	if changed("read-buffer") {
		cfg.ReadBufferSize = flags.ReadBufferSize
	}
	if changed("idle-timeout") {
		cfg.IdleTimeout = flags.IdleTimeout
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = flags.MetricsAddr
	}
	if changed("verbose") {
		// -v counts up from the normal level.
		cfg.Verbose = config.Default().Verbose + flags.Verbose
	}
	if *quiet {
		cfg.Verbose = 0
	}
	cfg.Connect = flags.Connect
	cfg.ConnAttempts = flags.ConnAttempts
	if timeoutSec > 0 {
		cfg.ConnTimeout = time.Duration(timeoutSec) * time.Second
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

func runServer(ctx context.Context, cfg *config.Config, logger *util.Logger) error {
	m := metrics.New()
	srv := server.New(cfg, logger, m)

	if cfg.MetricsAddr == "" {
		return srv.Run(ctx)
	}

	reg, err := metrics.NewRegistry(m)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	mln, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", cfg.MetricsAddr, err)
	}
	logger.Verbose("metrics on http://%s/metrics", mln.Addr())

	g, gctx := errgroup.WithContext(ctx)
	metricsCtx, stopMetrics := context.WithCancel(gctx)
	g.Go(func() error {
		// The metrics endpoint lives exactly as long as the server run.
		defer stopMetrics()
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return metrics.Serve(metricsCtx, mln, reg, m)
	})
	return g.Wait()
}

func runProbe(ctx context.Context, cfg *config.Config, logger *util.Logger) error {
	p := &client.Probe{
		Dialer:   &transport.TCPDialer{Timeout: cfg.ConnTimeout},
		Address:  cfg.Connect,
		Timeout:  cfg.ConnTimeout,
		Attempts: cfg.ConnAttempts,
		Logger:   logger,
	}
	return p.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func printConfig(w io.Writer, cfg *config.Config) {
	if cfg.Connect != "" {
		fmt.Fprintf(w, "mode:         probe\nconnect:      %s\ntimeout:      %s\nattempts:     %d\n",
			cfg.Connect, cfg.ConnTimeout, cfg.ConnAttempts)
		return
	}
	idle := "none"
	if cfg.IdleTimeout > 0 {
		idle = cfg.IdleTimeout.String()
	}
	metricsAddr := "disabled"
	if cfg.MetricsAddr != "" {
		metricsAddr = cfg.MetricsAddr
	}
	fmt.Fprintf(w, "mode:         serve\n")
	fmt.Fprintf(w, "endpoint:     %s\n", cfg.Address())
	fmt.Fprintf(w, "backlog:      %d\n", cfg.Backlog)
	fmt.Fprintf(w, "read buffer:  %d bytes\n", cfg.ReadBufferSize)
	fmt.Fprintf(w, "idle timeout: %s\n", idle)
	fmt.Fprintf(w, "metrics:      %s\n", metricsAddr)
	fmt.Fprintf(w, "verbosity:    %d\n", cfg.Verbose)
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `echod – single-connection echo server v%s

Accepts one TCP client, answers every message with "Server received: <msg>"
and says "Goodbye!" when the client sends "quit".

Usage:
  echod [options]                      Serve on 127.0.0.1:3003
  echod -c <host:port> [options]       Probe a running server

Options:
`, version)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  echod                                Serve with defaults
  echod -p 4000 -vv                    Verbose, custom port
  echod --idle-timeout 30s             Drop silent clients
  echod --metrics-addr :9100           Expose /metrics
  echod -c 127.0.0.1:3003              Type messages, one per line
  echod -c 127.0.0.1:3003 --attempts 5 Wait for a server that is starting
`)
}
