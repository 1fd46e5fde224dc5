package alert

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"threat-sentinel/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	"github.com/sirupsen/logrus"
)

const programName = "threat_sentinel"

// PrometheusExporter exposes metrics over an HTTP endpoint
type PrometheusExporter struct {
	server   *http.Server
	metrics  *metrics.PrometheusMetrics
	registry *prometheus.Registry
	logger   *logrus.Logger
	port     string
}

// CreateCustomRegistry creates a registry carrying runtime, process and
// build info collectors
func CreateCustomRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(versioncollector.NewCollector(programName))

	return registry
}

// NewPrometheusExporter builds an exporter serving the sentinel metric set
// from its own registry
func NewPrometheusExporter(port string, logger *logrus.Logger) *PrometheusExporter {
	registry := CreateCustomRegistry()
	m := metrics.NewPrometheusMetrics(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `
			<h1>Threat Sentinel Exporter</h1>
			<p>%s</p>
			<p><a href="/metrics">Metrics</a></p>
			<p><a href="/health">Health Check</a></p>
		`, version.Info())
	})

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	return &PrometheusExporter{
		server:   server,
		metrics:  m,
		registry: registry,
		logger:   logger,
		port:     port,
	}
}

// Start serves metrics until ctx is done, then shuts the server down
func (e *PrometheusExporter) Start(ctx context.Context) error {
	e.logger.Infof("Starting Prometheus exporter on port %s", e.port)
	e.logger.Infof("Metrics available at: http://localhost:%s/metrics", e.port)

	errCh := make(chan error, 1)
	go func() {
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("prometheus exporter: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.logger.Info("Shutting down Prometheus exporter...")
	if err := e.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

// Serve lets the exporter run as a supervised service
func (e *PrometheusExporter) Serve(ctx context.Context) error {
	return e.Start(ctx)
}

func (e *PrometheusExporter) String() string {
	return "prometheus-exporter"
}

func (e *PrometheusExporter) GetMetrics() *metrics.PrometheusMetrics {
	return e.metrics
}

func (e *PrometheusExporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns the HTTP handler without starting a listener
func (e *PrometheusExporter) Handler() http.Handler {
	return e.server.Handler
}
