package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"threat-sentinel/internal/metrics"
	"threat-sentinel/internal/model"
	"threat-sentinel/internal/rules"
	"threat-sentinel/internal/stats"
	"threat-sentinel/internal/window"

	"github.com/sirupsen/logrus"
)

// EventSource produces the next event to classify
type EventSource interface {
	Generate() model.NetworkEvent
}

// Update is what observers receive after every tick
type Update struct {
	Event model.NetworkEvent `json:"event"`
	Alert *model.ThreatAlert `json:"alert,omitempty"`
	Stats model.StreamStats  `json:"stats"`
}

// Clone returns a deep copy so each receiver owns its update
func (u Update) Clone() Update {
	u.Event = u.Event.Clone()
	if u.Alert != nil {
		alert := *u.Alert
		u.Alert = &alert
	}
	return u
}

type Options struct {
	EventWindow int
	AlertWindow int
}

// Processor owns the streaming state: both windows and the aggregate
// counter. Each Process call is one atomic unit relative to other calls.
type Processor struct {
	source      EventSource
	engine      *rules.Engine
	events      *window.Window[model.NetworkEvent]
	alerts      *window.Window[model.ThreatAlert]
	counter     *stats.Counter
	broadcaster *Broadcaster
	metrics     *metrics.PrometheusMetrics
	logger      *logrus.Logger
	mu          sync.Mutex
}

// NewProcessor creates a processor. broadcaster and m may be nil.
func NewProcessor(source EventSource, engine *rules.Engine, counter *stats.Counter, opts Options, broadcaster *Broadcaster, m *metrics.PrometheusMetrics, logger *logrus.Logger) (*Processor, error) {
	events, err := window.New[model.NetworkEvent](opts.EventWindow)
	if err != nil {
		return nil, fmt.Errorf("event window: %w", err)
	}
	alerts, err := window.New[model.ThreatAlert](opts.AlertWindow)
	if err != nil {
		return nil, fmt.Errorf("alert window: %w", err)
	}

	return &Processor{
		source:      source,
		engine:      engine,
		events:      events,
		alerts:      alerts,
		counter:     counter,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      logger,
	}, nil
}

// Tick generates one event and processes it
func (p *Processor) Tick(ctx context.Context) Update {
	return p.Process(ctx, p.source.Generate())
}

// Process classifies event, appends it (and its alert, if any) to the
// windows and advances the counter. Notification and broadcast happen after
// the state update is complete. The windows keep their own copy of event.
func (p *Processor) Process(ctx context.Context, event model.NetworkEvent) Update {
	start := time.Now()
	event = event.Clone()

	p.mu.Lock()
	alert := p.engine.Classify(ctx, event)
	p.events.Append(event)
	if alert != nil {
		p.alerts.Append(*alert)
	}
	snapshot := p.counter.Tick(alert != nil)
	eventCount, alertCount := p.events.Len(), p.alerts.Len()
	p.mu.Unlock()

	update := Update{Event: event, Alert: alert, Stats: snapshot}.Clone()

	if alert != nil {
		p.logger.WithFields(logrus.Fields{
			"event_id":       event.ID,
			"rule":           alert.Rule,
			"source_ip":      alert.SourceIP,
			"destination_ip": alert.DestinationIP,
		}).Debug("Suspicious event")
		p.engine.EmitAlert(*alert)
	}

	if p.metrics != nil {
		p.metrics.RecordEvent(event)
		p.metrics.UpdateWindowOccupancy("events", eventCount)
		p.metrics.UpdateWindowOccupancy("alerts", alertCount)
		p.metrics.RecordTick(time.Since(start).Seconds(), snapshot)
	}

	if p.broadcaster != nil {
		p.broadcaster.Publish(update)
	}

	return update
}

// Events returns the retained events oldest first
func (p *Processor) Events() []model.NetworkEvent {
	p.mu.Lock()
	events := p.events.Snapshot()
	p.mu.Unlock()

	for i := range events {
		events[i] = events[i].Clone()
	}
	return events
}

// Alerts returns the retained alerts oldest first
func (p *Processor) Alerts() []model.ThreatAlert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alerts.Snapshot()
}

func (p *Processor) Stats() model.StreamStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counter.Snapshot()
}

func (p *Processor) Rules() []model.RuleInfo {
	return p.engine.Rules()
}
