package builtin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"threat-sentinel/internal/metrics"
	"threat-sentinel/internal/model"
	"threat-sentinel/internal/rules"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, configs []model.Rule) *rules.Engine {
	t.Helper()
	logger, _ := test.NewNullLogger()
	engine := rules.NewEngine(logger, metrics.NewPrometheusMetrics(prometheus.NewRegistry()))
	RegisterBuiltinRules(engine, configs, logger)
	return engine
}

func suspicious(e model.NetworkEvent) bool {
	return e.HasFlag(model.FlagRST) ||
		e.Size > 1400 ||
		(e.Protocol == model.ProtocolHTTP && e.HasFlag(model.FlagSYN))
}

func TestClassifyAllCombinations(t *testing.T) {
	engine := newEngine(t, nil)
	ctx := context.Background()
	sizes := []int{0, 1, 700, 1399, 1400, 1401, 1499}

	for _, protocol := range model.Protocols {
		for _, flag := range model.Flags {
			for _, size := range sizes {
				event := model.NetworkEvent{
					ID:            fmt.Sprintf("%s-%s-%d", protocol, flag, size),
					Timestamp:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					SourceIP:      "192.168.4.2",
					DestinationIP: "10.0.9.8",
					Protocol:      protocol,
					Size:          size,
					Flags:         []model.Flag{flag},
				}

				alert := engine.Classify(ctx, event)
				if !suspicious(event) {
					assert.Nil(t, alert, event.ID)
					continue
				}

				require.NotNil(t, alert, event.ID)
				assert.Equal(t, model.SeverityHigh, alert.Severity)
				assert.Equal(t, "Suspicious network activity detected", alert.Description)
				assert.Equal(t, "Block connection", alert.Action)
				assert.Equal(t, event.SourceIP, alert.SourceIP)
				assert.Equal(t, event.DestinationIP, alert.DestinationIP)
				assert.Equal(t, event.ID, alert.EventID)
				assert.Equal(t, event.Timestamp, alert.Timestamp)
			}
		}
	}
}

func TestClassifyPriority(t *testing.T) {
	engine := newEngine(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		event model.NetworkEvent
		rule  string
	}{
		{"rst beats size", model.NetworkEvent{Protocol: model.ProtocolHTTP, Size: 1450, Flags: []model.Flag{model.FlagRST}}, RuleRSTFlag},
		{"size beats http syn", model.NetworkEvent{Protocol: model.ProtocolHTTP, Size: 1450, Flags: []model.Flag{model.FlagSYN}}, RuleOversizedPacket},
		{"http syn", model.NetworkEvent{Protocol: model.ProtocolHTTP, Size: 100, Flags: []model.Flag{model.FlagSYN}}, RuleHTTPSyn},
		{"https syn is fine", model.NetworkEvent{Protocol: model.ProtocolHTTPS, Size: 100, Flags: []model.Flag{model.FlagSYN}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := engine.Classify(ctx, tt.event)
			if tt.rule == "" {
				assert.Nil(t, alert)
				return
			}
			require.NotNil(t, alert)
			assert.Equal(t, tt.rule, alert.Rule)
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	engine := newEngine(t, nil)
	event := model.NetworkEvent{ID: "abc1234", Protocol: model.ProtocolTCP, Size: 10, Flags: []model.Flag{model.FlagRST}}

	first := engine.Classify(context.Background(), event)
	second := engine.Classify(context.Background(), event)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.ID)

	other := engine.Classify(context.Background(), model.NetworkEvent{ID: "zzz9999", Flags: []model.Flag{model.FlagRST}})
	assert.NotEqual(t, first.ID, other.ID)
}

func TestRegisterBuiltinRulesFromConfig(t *testing.T) {
	engine := newEngine(t, []model.Rule{
		{Name: RuleHTTPSyn, Enabled: true},
		{Name: RuleRSTFlag, Enabled: false},
		{Name: RuleOversizedPacket, Enabled: true, Thresholds: map[string]interface{}{"max_size": 1000}},
		{Name: "port_scan", Enabled: true},
	})

	infos := engine.Rules()
	require.Len(t, infos, 3)
	assert.Equal(t, RuleRSTFlag, infos[0].Name)
	assert.False(t, infos[0].Enabled)
	assert.Equal(t, RuleOversizedPacket, infos[1].Name)
	assert.Equal(t, RuleHTTPSyn, infos[2].Name)

	ctx := context.Background()
	assert.Nil(t, engine.Classify(ctx, model.NetworkEvent{Protocol: model.ProtocolTCP, Flags: []model.Flag{model.FlagRST}}))

	alert := engine.Classify(ctx, model.NetworkEvent{Protocol: model.ProtocolTCP, Size: 1001, Flags: []model.Flag{model.FlagACK}})
	require.NotNil(t, alert)
	assert.Equal(t, RuleOversizedPacket, alert.Rule)
}

func TestRegisterBuiltinRulesWarnsOnUnknown(t *testing.T) {
	logger, hook := test.NewNullLogger()
	engine := rules.NewEngine(logger, nil)

	RegisterBuiltinRules(engine, []model.Rule{{Name: "port_scan", Enabled: true}}, logger)

	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Unknown rule type: port_scan" {
			warned = true
		}
	}
	assert.True(t, warned)
	assert.Len(t, engine.Rules(), 3)
}

func TestOversizedPacketRuleDefaults(t *testing.T) {
	logger, _ := test.NewNullLogger()

	assert.Equal(t, 1400, NewOversizedPacketRule(true, 0, logger).MaxSize())
	assert.Equal(t, 900, NewOversizedPacketRule(true, 900, logger).MaxSize())
}

func TestDisabledRulesNeverFire(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx := context.Background()
	event := model.NetworkEvent{Protocol: model.ProtocolHTTP, Size: 1499, Flags: []model.Flag{model.FlagRST, model.FlagSYN}}

	assert.Nil(t, NewRSTFlagRule(false, logger).Evaluate(ctx, event))
	assert.Nil(t, NewOversizedPacketRule(false, 1400, logger).Evaluate(ctx, event))
	assert.Nil(t, NewHTTPSynRule(false, logger).Evaluate(ctx, event))
}

func TestDefaultRules(t *testing.T) {
	defaults := DefaultRules()
	require.Len(t, defaults, len(Priority))
	for i, r := range defaults {
		assert.Equal(t, Priority[i], r.Name)
		assert.True(t, r.Enabled)
	}
}
