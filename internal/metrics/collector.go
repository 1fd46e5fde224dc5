package metrics

import (
	"threat-sentinel/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	// Event metrics
	EventsTotal     *prometheus.CounterVec
	EventFlags      *prometheus.CounterVec
	EventSize       prometheus.Histogram
	TickDuration    prometheus.Histogram
	WindowOccupancy *prometheus.GaugeVec
	ItemsProcessed  prometheus.Gauge
	AlertsRaised    prometheus.Gauge

	// Alert metrics
	AlertCounter       *prometheus.CounterVec
	NotificationErrors *prometheus.CounterVec
	NotificationsDrop  *prometheus.CounterVec

	// Text path metrics
	TextSentences    prometheus.Counter
	TextInstructions prometheus.Counter
	TextDuration     prometheus.Histogram
}

// NewPrometheusMetrics registers the metric set with reg. Each registry may
// only hold one set, so tests pass a fresh prometheus.NewRegistry().
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_events_total",
				Help: "Total number of network events processed",
			},
			[]string{"protocol"},
		),

		EventFlags: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_event_flags_total",
				Help: "Total number of flags seen on processed events",
			},
			[]string{"flag"},
		),

		EventSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sentinel_event_size_bytes",
				Help:    "Size of processed network events",
				Buckets: []float64{64, 128, 256, 512, 1024, 1400, 1500},
			},
		),

		TickDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sentinel_tick_duration_seconds",
				Help:    "Time spent in one generate, classify, append and aggregate cycle",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),

		WindowOccupancy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinel_window_items",
				Help: "Number of items currently retained by a bounded window",
			},
			[]string{"window"},
		),

		ItemsProcessed: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentinel_items_processed",
				Help: "Items processed as reported by the aggregate counter",
			},
		),

		AlertsRaised: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentinel_alerts_raised",
				Help: "Alerts raised as reported by the aggregate counter",
			},
		),

		AlertCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_alerts_total",
				Help: "Total alerts detected",
			},
			[]string{"rule", "severity"},
		),

		NotificationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_notification_errors_total",
				Help: "Alert notifications that failed to deliver",
			},
			[]string{"notifier"},
		),

		NotificationsDrop: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_notifications_dropped_total",
				Help: "Alert notifications dropped before delivery",
			},
			[]string{"reason"},
		),

		TextSentences: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sentinel_text_sentences_total",
				Help: "Sentences segmented by the text analyzer",
			},
		),

		TextInstructions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sentinel_text_instructions_total",
				Help: "Sentences flagged as instructions",
			},
		),

		TextDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sentinel_text_analysis_duration_seconds",
				Help:    "Time spent analysing one text request",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordEvent records the shape of one processed event
func (m *PrometheusMetrics) RecordEvent(event model.NetworkEvent) {
	protocol := event.Protocol.String()
	if protocol == "" {
		protocol = "unknown"
	}
	m.EventsTotal.WithLabelValues(protocol).Inc()

	for _, flag := range event.Flags {
		m.EventFlags.WithLabelValues(flag.String()).Inc()
	}

	m.EventSize.Observe(float64(event.Size))
}

func (m *PrometheusMetrics) RecordAlert(rule string, severity model.Severity) {
	if rule == "" {
		rule = "unknown"
	}
	m.AlertCounter.WithLabelValues(rule, severity.String()).Inc()
}

func (m *PrometheusMetrics) RecordTick(duration float64, stats model.StreamStats) {
	m.TickDuration.Observe(duration)
	m.ItemsProcessed.Set(float64(stats.ItemsProcessed))
	m.AlertsRaised.Set(float64(stats.AlertsRaised))
}

func (m *PrometheusMetrics) UpdateWindowOccupancy(window string, size int) {
	m.WindowOccupancy.WithLabelValues(window).Set(float64(size))
}

func (m *PrometheusMetrics) RecordNotificationError(notifier string) {
	m.NotificationErrors.WithLabelValues(notifier).Inc()
}

func (m *PrometheusMetrics) RecordNotificationDropped(reason string) {
	m.NotificationsDrop.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) RecordTextAnalysis(sentences, instructions int, duration float64) {
	m.TextSentences.Add(float64(sentences))
	m.TextInstructions.Add(float64(instructions))
	m.TextDuration.Observe(duration)
}
