// Package metrics implements driven.Metrics with Prometheus collectors
// and serves them over HTTP.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure Prometheus implements the interface.
var _ driven.Metrics = (*Prometheus)(nil)

const namespace = "reportlens"

// Prometheus records pipeline activity on its own registry.
type Prometheus struct {
	registry   *prometheus.Registry
	events     *prometheus.CounterVec
	suppressed prometheus.Counter
	processed  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	queueDepth prometheus.Gauge
}

// New creates the collectors and registers them along with the Go
// runtime and process collectors.
func New() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Folder monitor callbacks by event kind and file type.",
		}, []string{"kind", "file_type"}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_suppressed_total",
			Help:      "Modified events dropped because the file was already in flight.",
		}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Report files processed by file type and outcome.",
		}, []string{"file_type", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_processing_seconds",
			Help:      "Time to extract, analyse and store one report file.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"file_type"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Report files waiting for a worker.",
		}),
	}

	p.registry.MustRegister(
		p.events,
		p.suppressed,
		p.processed,
		p.duration,
		p.queueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// EventReceived counts a dispatched callback.
func (p *Prometheus) EventReceived(kind domain.EventKind, fileType domain.FileType) {
	p.events.WithLabelValues(kind.String(), fileType.String()).Inc()
}

// EventSuppressed counts a deduplicated modified event.
func (p *Prometheus) EventSuppressed() {
	p.suppressed.Inc()
}

// FileProcessed records the outcome and duration of one file.
func (p *Prometheus) FileProcessed(fileType domain.FileType, outcome string, d time.Duration) {
	p.processed.WithLabelValues(fileType.String(), outcome).Inc()
	p.duration.WithLabelValues(fileType.String()).Observe(d.Seconds())
}

// QueueDepth sets the number of waiting files.
func (p *Prometheus) QueueDepth(n int) {
	p.queueDepth.Set(float64(n))
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (p *Prometheus) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve metrics: %w", err)
	}
}
