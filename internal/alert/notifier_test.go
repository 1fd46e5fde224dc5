package alert

import (
	"context"
	"errors"
	"testing"

	"threat-sentinel/internal/metrics"
	"threat-sentinel/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	sent int
	err  error
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) SendAlert(context.Context, model.ThreatAlert) error {
	r.sent++
	return r.err
}

func TestLogAlertNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := NewLogAlertNotifier(logger)

	require.NoError(t, n.SendAlert(context.Background(), testAlert()))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "ALERT [high] rst_flag: Suspicious network activity detected", entry.Message)
	assert.Equal(t, "192.168.1.20", entry.Data["source_ip"])
}

func TestEmailCompose(t *testing.T) {
	logger, _ := test.NewNullLogger()
	n := NewEmailNotifier(EmailConfig{To: "soc@example.com", From: "sentinel@example.com"}, logger)

	msg := n.Compose(testAlert())
	assert.Equal(t, "soc@example.com", msg.To)
	assert.Equal(t, "sentinel@example.com", msg.From)
	assert.Equal(t, "Threat alert", msg.Subject)
	assert.Contains(t, msg.Body, "Type: rst_flag")
	assert.Contains(t, msg.Body, "Severity: high")
	assert.Contains(t, msg.Body, "Description: Suspicious network activity detected")
	assert.Contains(t, msg.Body, "Payload: 192.168.1.20 -> 10.0.4.5 (rule=rst_flag, event=k3j9x0a)")
	assert.Contains(t, msg.Body, "Timestamp: 2024-03-01 10:30:00")
}

func TestEmailSendAlertLogsOnly(t *testing.T) {
	logger, hook := test.NewNullLogger()

	n := NewEmailNotifier(EmailConfig{To: "soc@example.com", Subject: "Custom"}, logger)
	require.NoError(t, n.SendAlert(context.Background(), testAlert()))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Custom", hook.LastEntry().Data["subject"])

	missing := NewEmailNotifier(EmailConfig{}, logger)
	assert.Error(t, missing.SendAlert(context.Background(), testAlert()))
}

func TestThrottledNotifier(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry())
	next := &recordingNotifier{}

	tn := NewThrottledNotifier(next, 3, m, logger)
	assert.Equal(t, "recording", tn.Name())

	for i := 0; i < 5; i++ {
		assert.NoError(t, tn.SendAlert(context.Background(), testAlert()))
	}

	assert.Equal(t, 3, next.sent)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.NotificationsDrop.WithLabelValues("throttled")))
}

func TestThrottledNotifierPassesErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	next := &recordingNotifier{err: errors.New("boom")}

	tn := NewThrottledNotifier(next, 0, nil, logger)
	assert.EqualError(t, tn.SendAlert(context.Background(), testAlert()), "boom")
}
