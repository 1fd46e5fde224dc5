package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"threat-sentinel/internal/model"
	"threat-sentinel/internal/supervisor"
	"threat-sentinel/internal/utils"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *utils.Config {
	config := utils.GetDefaultConfig()
	config.Stream.Seed = 1
	config.Stream.TickIntervalMs = 5
	return config
}

func TestNewAssemblesPipeline(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sentinel, err := New(testConfig(), logger)
	require.NoError(t, err)

	assert.Len(t, sentinel.Engine.Rules(), 3)
	assert.Equal(t, []string{"You must do this", "Never do that", "Always follow protocol"},
		sentinel.Analyzer.AnalyzeText("You must do this. Never do that. Always follow protocol."))

	for i := 0; i < 60; i++ {
		sentinel.Processor.Tick(context.Background())
	}
	assert.Len(t, sentinel.Processor.Events(), 50)
	assert.LessOrEqual(t, len(sentinel.Processor.Alerts()), 10)
	assert.Equal(t, int64(60), sentinel.Processor.Stats().ItemsProcessed)
}

func TestNewUsesRuleAndPatternFiles(t *testing.T) {
	dir := t.TempDir()
	rulesFile := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesFile, []byte("rules:\n  - name: rst_flag\n    enabled: false\n"), 0644))
	patternsFile := filepath.Join(dir, "patterns.json")
	require.NoError(t, os.WriteFile(patternsFile, []byte(`{"groups":[{"name":"halt","patterns":["\\bhalt\\b"]}]}`), 0644))

	config := testConfig()
	config.RulesFile = rulesFile
	config.Text.PatternsFile = patternsFile

	logger, _ := test.NewNullLogger()
	sentinel, err := New(config, logger)
	require.NoError(t, err)

	assert.False(t, sentinel.Engine.Rules()[0].Enabled)
	assert.Equal(t, []string{"Halt now"}, sentinel.Analyzer.AnalyzeText("You must go. Halt now."))
}

func TestNewRejectsPreconditionViolations(t *testing.T) {
	logger, _ := test.NewNullLogger()

	config := testConfig()
	config.Stream.EventWindow = -1
	_, err := New(config, logger)
	assert.Error(t, err)

	config = testConfig()
	config.Text.PatternsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = New(config, logger)
	assert.Error(t, err)

	config = testConfig()
	config.Stream.TickIntervalMs = -1
	_, err = New(config, logger)
	assert.Error(t, err)
}

func TestRegisterAlertNotifiersDisabled(t *testing.T) {
	logger, hook := test.NewNullLogger()
	config := testConfig()
	config.Alerting.Enabled = false

	sentinel, err := New(config, logger)
	require.NoError(t, err)

	sentinel.Engine.EmitAlert(model.ThreatAlert{ID: "a1", Rule: "rst_flag"})
	for _, entry := range hook.AllEntries() {
		assert.NotContains(t, entry.Message, "ALERT [")
	}
}

func TestRegisterAlertNotifiersLogChannel(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sentinel, err := New(testConfig(), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sentinel.Engine.Dispatch(ctx) }()

	sentinel.Engine.EmitAlert(model.ThreatAlert{ID: "a1", Rule: "rst_flag", Description: "Suspicious network activity detected"})
	assert.Eventually(t, func() bool {
		for _, entry := range hook.AllEntries() {
			if entry.Message == "ALERT [low] rst_flag: Suspicious network activity detected" {
				return true
			}
		}
		return false
	}, 2*time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPrintAlerts(t *testing.T) {
	alerts := make(chan model.ThreatAlert, 1)
	alerts <- model.ThreatAlert{
		Timestamp:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Severity:      model.SeverityHigh,
		Rule:          "http_syn",
		SourceIP:      "192.168.0.9",
		DestinationIP: "10.0.0.9",
		Description:   "Suspicious network activity detected",
		Action:        "Block connection",
	}

	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- PrintAlerts(ctx, alerts, &out) }()

	assert.Eventually(t, func() bool { return len(alerts) == 0 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, "[2024-01-02 03:04:05] high | http_syn | 192.168.0.9 -> 10.0.0.9 | Suspicious network activity detected | Block connection\n", out.String())
}

func TestAddServicesRunsStream(t *testing.T) {
	logger, _ := test.NewNullLogger()
	config := testConfig()
	config.Application.PrometheusPort = "0"
	sentinel, err := New(config, logger)
	require.NoError(t, err)

	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	var out syncBuffer
	sentinel.AddServices(tree, &out)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	assert.Eventually(t, func() bool {
		return sentinel.Processor.Stats().ItemsProcessed >= 5
	}, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}

	s := sentinel.Processor.Stats()
	assert.LessOrEqual(t, s.AlertsRaised, s.ItemsProcessed)
	assert.LessOrEqual(t, strings.Count(out.String(), "\n"), int(s.AlertsRaised))
}
