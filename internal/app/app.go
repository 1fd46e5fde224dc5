package app

import (
	"context"
	"fmt"
	"io"

	"threat-sentinel/internal/alert"
	"threat-sentinel/internal/generator"
	"threat-sentinel/internal/metrics"
	"threat-sentinel/internal/model"
	"threat-sentinel/internal/pipeline"
	"threat-sentinel/internal/rules"
	"threat-sentinel/internal/rules/builtin"
	"threat-sentinel/internal/stats"
	"threat-sentinel/internal/supervisor"
	"threat-sentinel/internal/text"
	"threat-sentinel/internal/utils"

	"github.com/sirupsen/logrus"
)

// App is the assembled sentinel: text analyzer, streaming pipeline and
// their collaborators
type App struct {
	Config      *utils.Config
	Logger      *logrus.Logger
	Exporter    *alert.PrometheusExporter
	Metrics     *metrics.PrometheusMetrics
	Analyzer    *text.Analyzer
	Engine      *rules.Engine
	Broadcaster *pipeline.Broadcaster
	Processor   *pipeline.Processor
	Scheduler   *pipeline.Scheduler
}

// New builds every component from config. Any precondition violation
// (bad pattern, non-positive window or interval) is returned here.
func New(config *utils.Config, logger *logrus.Logger) (*App, error) {
	exporter := alert.NewPrometheusExporter(config.Application.PrometheusPort, logger)
	m := exporter.GetMetrics()

	analyzer, err := NewAnalyzer(config, m)
	if err != nil {
		return nil, err
	}

	engine := rules.NewEngine(logger, m)
	ruleConfigs := config.Rules
	if config.RulesFile != "" {
		ruleConfigs, err = rules.LoadRules(config.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
	}
	builtin.RegisterBuiltinRules(engine, ruleConfigs, logger)
	RegisterAlertNotifiers(engine, config, m, logger)

	broadcaster := pipeline.NewBroadcaster(logger)
	processor, err := pipeline.NewProcessor(
		generator.New(config.Stream.Seed),
		engine,
		stats.NewCounter(),
		pipeline.Options{
			EventWindow: config.Stream.EventWindow,
			AlertWindow: config.Stream.AlertWindow,
		},
		broadcaster,
		m,
		logger,
	)
	if err != nil {
		return nil, err
	}

	scheduler, err := pipeline.NewScheduler(config.Stream.TickInterval(), func(ctx context.Context) {
		processor.Tick(ctx)
	}, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      config,
		Logger:      logger,
		Exporter:    exporter,
		Metrics:     m,
		Analyzer:    analyzer,
		Engine:      engine,
		Broadcaster: broadcaster,
		Processor:   processor,
		Scheduler:   scheduler,
	}, nil
}

// NewAnalyzer builds the text analyzer from the configured pattern file, or
// from the embedded defaults. m may be nil.
func NewAnalyzer(config *utils.Config, m *metrics.PrometheusMetrics) (*text.Analyzer, error) {
	var (
		groups []model.PatternGroup
		err    error
	)
	if config.Text.PatternsFile != "" {
		groups, err = text.LoadPatternGroups(config.Text.PatternsFile)
	} else {
		groups, err = text.DefaultPatternGroups()
	}
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}

	classifier, err := text.NewClassifier(groups)
	if err != nil {
		return nil, err
	}
	return text.NewAnalyzer(classifier, m), nil
}

// RegisterAlertNotifiers wires the configured alert channels into engine.
// Email and Telegram deliveries are throttled to max_alerts_per_minute.
func RegisterAlertNotifiers(engine *rules.Engine, config *utils.Config, m *metrics.PrometheusMetrics, logger *logrus.Logger) {
	if !config.Alerting.Enabled {
		logger.Info("Alerting is disabled, alerts are only kept in the alert window")
		return
	}

	if config.Alerting.Channels.Log {
		engine.RegisterNotifier(alert.NewLogAlertNotifier(logger))
	}

	if config.Alerting.Channels.Email {
		email := alert.NewEmailNotifier(config.Alerting.Email, logger)
		engine.RegisterNotifier(alert.NewThrottledNotifier(email, config.Alerting.MaxAlertsPerMinute, m, logger))
	}

	if config.Alerting.Channels.Telegram && config.Alerting.Telegram.Enabled {
		telegram := alert.NewTelegramNotifierWithTemplate(
			config.Alerting.Telegram.BotToken,
			config.Alerting.Telegram.ChatID,
			config.Alerting.Telegram.ParseMode,
			config.Alerting.Telegram.Enabled,
			config.Alerting.Telegram.MessageTemplate,
			logger,
		)
		engine.RegisterNotifier(alert.NewThrottledNotifier(telegram, config.Alerting.MaxAlertsPerMinute, m, logger))
	}
}

// AddServices places the scheduler, the notifier dispatcher, the alert
// printer and the metrics exporter under tree
func (a *App) AddServices(tree *supervisor.Tree, out io.Writer) {
	tree.AddStreamService(supervisor.NewOnceService(a.Scheduler.String(), a.Scheduler))
	tree.AddStreamService(supervisor.NewFuncService("alert-dispatcher", a.Engine.Dispatch))
	tree.AddStreamService(supervisor.NewFuncService("alert-printer", func(ctx context.Context) error {
		return PrintAlerts(ctx, a.Engine.GetAlertChannel(), out)
	}))
	tree.AddAPIService(a.Exporter)
}

// PrintAlerts writes one line per alert until ctx is done
func PrintAlerts(ctx context.Context, alerts <-chan model.ThreatAlert, out io.Writer) error {
	for {
		select {
		case a := <-alerts:
			fmt.Fprintf(out, "[%s] %s | %s | %s -> %s | %s | %s\n",
				a.Timestamp.Format("2006-01-02 15:04:05"),
				a.Severity,
				a.Rule,
				a.SourceIP,
				a.DestinationIP,
				a.Description,
				a.Action)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
