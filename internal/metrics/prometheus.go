package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "echod"

// Register exposes the collector's counters on reg.  The Prometheus
// series read the atomics on scrape, so the hot path stays lock-free.
func (c *Collector) Register(reg prometheus.Registerer) error {
	if c == nil {
		return nil
	}
	counter := func(name, help string, v func() int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace, Name: name, Help: help,
		}, func() float64 { return float64(v()) })
	}
	gauge := func(name, help string, v func() int64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace, Name: name, Help: help,
		}, func() float64 { return float64(v()) })
	}

	cs := []prometheus.Collector{
		gauge("sessions_active", "Sessions currently open.", c.sessionsActive.Load),
		counter("sessions_total", "Sessions accepted.", c.sessionsTotal.Load),
		counter("messages_total", "Reads that produced a message.", c.messagesTotal.Load),
		counter("echoes_total", "Echo replies sent.", c.echoesTotal.Load),
		counter("terminates_total", "Farewell replies sent.", c.terminates.Load),
		counter("decode_errors_total", "Messages that were not valid UTF-8.", c.decodeErrors.Load),
		counter("received_bytes_total", "Bytes read from clients.", c.bytesIn.Load),
		counter("sent_bytes_total", "Bytes written to clients.", c.bytesOut.Load),
		counter("errors_total", "Fatal errors.", c.errorsTotal.Load),
	}
	for _, col := range cs {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding c's series plus the Go
// runtime and process collectors.
func NewRegistry(c *Collector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		return nil, err
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, nil
}

// Handler routes the scrape endpoint and two plain views of c:
//
//	GET /metrics  Prometheus exposition of reg
//	GET /stats    c.Snapshot as JSON
//	GET /healthz  "ok"
func Handler(reg *prometheus.Registry, c *Collector) http.Handler {
	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.GET("/stats", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, c.JSON()) //nolint:errcheck
	})
	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		io.WriteString(w, "ok\n") //nolint:errcheck
	})
	return router
}

// Serve answers [Handler] routes on ln until ctx is cancelled.
func Serve(ctx context.Context, ln net.Listener, reg *prometheus.Registry, c *Collector) error {
	srv := &http.Server{
		Handler:           Handler(reg, c),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
