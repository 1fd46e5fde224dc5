package builtin

import (
	"threat-sentinel/internal/model"
	"threat-sentinel/internal/rules"

	"github.com/sirupsen/logrus"
)

const (
	RuleRSTFlag         = "rst_flag"
	RuleOversizedPacket = "oversized_packet"
	RuleHTTPSyn         = "http_syn"
)

// Priority is the fixed evaluation order of the builtin rules
var Priority = []string{RuleRSTFlag, RuleOversizedPacket, RuleHTTPSyn}

// DefaultRules returns the builtin rule configuration with every rule enabled
func DefaultRules() []model.Rule {
	return []model.Rule{
		{Name: RuleRSTFlag, Enabled: true, Description: "Packet carries the RST flag"},
		{Name: RuleOversizedPacket, Enabled: true, Description: "Packet size exceeds the configured maximum",
			Thresholds: map[string]interface{}{"max_size": defaultMaxPacketSize}},
		{Name: RuleHTTPSyn, Enabled: true, Description: "SYN on an unencrypted HTTP connection"},
	}
}

// RegisterBuiltinRules registers every builtin rule in priority order. A rule
// absent from configs is registered enabled with its defaults; the order of
// configs never changes priority.
func RegisterBuiltinRules(engine *rules.Engine, configs []model.Rule, logger *logrus.Logger) {
	byName := make(map[string]model.Rule, len(configs))
	for _, cfg := range configs {
		byName[cfg.Name] = cfg
	}
	for name := range byName {
		if !isBuiltin(name) {
			logger.Warnf("Unknown rule type: %s", name)
		}
	}

	for _, name := range Priority {
		cfg, configured := byName[name]
		enabled := !configured || cfg.Enabled

		switch name {
		case RuleRSTFlag:
			engine.RegisterRule(NewRSTFlagRule(enabled, logger))

		case RuleOversizedPacket:
			maxSize := int(rules.FloatThreshold(cfg, "max_size", defaultMaxPacketSize))
			engine.RegisterRule(NewOversizedPacketRule(enabled, maxSize, logger))
			logger.Infof("Rule %s threshold: %d bytes", name, maxSize)

		case RuleHTTPSyn:
			engine.RegisterRule(NewHTTPSynRule(enabled, logger))
		}

		if !enabled {
			logger.Infof("Rule %s is disabled by configuration", name)
		}
	}
}

func isBuiltin(name string) bool {
	for _, known := range Priority {
		if name == known {
			return true
		}
	}
	return false
}
