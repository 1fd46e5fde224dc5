package alert

import (
	"context"

	"threat-sentinel/internal/model"

	"github.com/sirupsen/logrus"
)

// LogAlertNotifier sends alerts to local logs
type LogAlertNotifier struct {
	logger *logrus.Logger
}

// NewLogAlertNotifier creates a new log alert notifier
func NewLogAlertNotifier(logger *logrus.Logger) *LogAlertNotifier {
	return &LogAlertNotifier{
		logger: logger,
	}
}

func (ln *LogAlertNotifier) Name() string {
	return "log"
}

// SendAlert implements Notifier interface - sends alert to logs
func (ln *LogAlertNotifier) SendAlert(_ context.Context, alert model.ThreatAlert) error {
	ln.logger.WithFields(logrus.Fields{
		"alert_id":       alert.ID,
		"source_ip":      alert.SourceIP,
		"destination_ip": alert.DestinationIP,
		"action":         alert.Action,
	}).Warnf("ALERT [%s] %s: %s", alert.Severity, alert.Rule, alert.Description)
	return nil
}
