package rules

import (
	"context"
	"fmt"
	"sync"

	"threat-sentinel/internal/metrics"
	"threat-sentinel/internal/model"

	"github.com/sirupsen/logrus"
)

type Engine struct {
	rules          []RuleInterface
	alertNotifiers []NotifierInterface
	logger         *logrus.Logger
	metrics        *metrics.PrometheusMetrics
	mu             sync.RWMutex
	alertChannel   chan model.ThreatAlert
	dispatchQueue  chan model.ThreatAlert
}

type NotifierInterface interface {
	SendAlert(ctx context.Context, alert model.ThreatAlert) error
}

// RuleInterface is one suspicious-packet predicate. Evaluate must be a pure
// function of the event.
type RuleInterface interface {
	Name() string
	Description() string
	IsEnabled() bool
	Evaluate(ctx context.Context, event model.NetworkEvent) *model.ThreatAlert
}

func NewEngine(logger *logrus.Logger, m *metrics.PrometheusMetrics) *Engine {
	return &Engine{
		rules:          make([]RuleInterface, 0),
		alertNotifiers: make([]NotifierInterface, 0),
		logger:         logger,
		metrics:        m,
		alertChannel:   make(chan model.ThreatAlert, 100),
		dispatchQueue:  make(chan model.ThreatAlert, 100),
	}
}

// RegisterRule appends a rule; registration order is evaluation priority
func (e *Engine) RegisterRule(rule RuleInterface) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule)
	e.logger.Infof("Registered rule: %s", rule.Name())
}

func (e *Engine) RegisterNotifier(notifier NotifierInterface) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alertNotifiers = append(e.alertNotifiers, notifier)
}

// Classify returns the alert of the first enabled rule that fires, or nil.
// It has no side effects.
func (e *Engine) Classify(ctx context.Context, event model.NetworkEvent) *model.ThreatAlert {
	e.mu.RLock()
	rules := make([]RuleInterface, len(e.rules))
	copy(rules, e.rules)
	e.mu.RUnlock()

	for _, rule := range rules {
		if !rule.IsEnabled() {
			continue
		}
		if alert := rule.Evaluate(ctx, event); alert != nil {
			return alert
		}
	}
	return nil
}

// EmitAlert queues an alert for the alert channel and for notifier delivery.
// It never blocks: a full queue drops the alert and counts the drop.
func (e *Engine) EmitAlert(alert model.ThreatAlert) {
	if e.metrics != nil {
		e.metrics.RecordAlert(alert.Rule, alert.Severity)
	}

	select {
	case e.alertChannel <- alert:
	default:
		e.logger.Error("Alert channel is full, dropping alert")
		if e.metrics != nil {
			e.metrics.RecordNotificationDropped("channel_full")
		}
	}

	e.mu.RLock()
	hasNotifiers := len(e.alertNotifiers) > 0
	e.mu.RUnlock()
	if !hasNotifiers {
		return
	}

	select {
	case e.dispatchQueue <- alert:
	default:
		e.logger.WithField("alert_id", alert.ID).Warn("Notifier queue is full, dropping alert")
		if e.metrics != nil {
			e.metrics.RecordNotificationDropped("queue_full")
		}
	}
}

// Dispatch delivers queued alerts to every notifier until ctx is done.
// Delivery failures are logged and never returned.
func (e *Engine) Dispatch(ctx context.Context) error {
	e.logger.Info("[Dispatcher] Delivering alerts to notifiers")
	for {
		select {
		case alert := <-e.dispatchQueue:
			e.notify(ctx, alert)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e *Engine) notify(ctx context.Context, alert model.ThreatAlert) {
	e.mu.RLock()
	notifiers := make([]NotifierInterface, len(e.alertNotifiers))
	copy(notifiers, e.alertNotifiers)
	e.mu.RUnlock()

	for _, notifier := range notifiers {
		if err := notifier.SendAlert(ctx, alert); err != nil {
			e.logger.WithFields(logrus.Fields{
				"alert_id": alert.ID,
				"notifier": notifierName(notifier),
			}).Errorf("Failed to send alert: %v", err)
			if e.metrics != nil {
				e.metrics.RecordNotificationError(notifierName(notifier))
			}
		}
	}
}

func (e *Engine) GetAlertChannel() <-chan model.ThreatAlert {
	return e.alertChannel
}

// Rules describes the registered rules in priority order
func (e *Engine) Rules() []model.RuleInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	infos := make([]model.RuleInfo, len(e.rules))
	for i, rule := range e.rules {
		infos[i] = model.RuleInfo{
			Name:        rule.Name(),
			Enabled:     rule.IsEnabled(),
			Description: rule.Description(),
			Priority:    i + 1,
		}
	}
	return infos
}

func notifierName(n NotifierInterface) string {
	if named, ok := n.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", n)
}
