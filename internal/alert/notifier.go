package alert

import (
	"context"

	"threat-sentinel/internal/model"
)

// Notifier interface for alert notification
type Notifier interface {
	SendAlert(ctx context.Context, alert model.ThreatAlert) error
}
