package alert

import (
	"context"
	"time"

	"threat-sentinel/internal/metrics"
	"threat-sentinel/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ThrottledNotifier forwards at most perMinute alerts a minute to next and
// drops the rest.
type ThrottledNotifier struct {
	next    Notifier
	name    string
	limiter *rate.Limiter
	metrics *metrics.PrometheusMetrics
	logger  *logrus.Logger
}

func NewThrottledNotifier(next Notifier, perMinute int, m *metrics.PrometheusMetrics, logger *logrus.Logger) *ThrottledNotifier {
	if perMinute <= 0 {
		perMinute = 10
	}
	name := "throttled"
	if named, ok := next.(interface{ Name() string }); ok {
		name = named.Name()
	}
	return &ThrottledNotifier{
		next:    next,
		name:    name,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		metrics: m,
		logger:  logger,
	}
}

func (tn *ThrottledNotifier) Name() string {
	return tn.name
}

func (tn *ThrottledNotifier) SendAlert(ctx context.Context, alert model.ThreatAlert) error {
	if !tn.limiter.Allow() {
		tn.logger.Debugf("Alert %s throttled for notifier %s", alert.ID, tn.name)
		if tn.metrics != nil {
			tn.metrics.RecordNotificationDropped("throttled")
		}
		return nil
	}
	return tn.next.SendAlert(ctx, alert)
}
