package alert

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threat-sentinel/internal/model"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporterServesMetrics(t *testing.T) {
	logger, _ := test.NewNullLogger()
	exporter := NewPrometheusExporter("0", logger)
	exporter.GetMetrics().RecordAlert("http_syn", model.SeverityHigh)

	server := httptest.NewServer(exporter.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `sentinel_alerts_total{rule="http_syn",severity="high"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
	assert.Contains(t, string(body), "threat_sentinel_build_info")

	health, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestExporterStopsOnCancel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	exporter := NewPrometheusExporter("0", logger)
	assert.Equal(t, "prometheus-exporter", exporter.String())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- exporter.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("exporter did not stop")
	}
}
