package builtin

import (
	"context"

	"threat-sentinel/internal/model"

	"github.com/sirupsen/logrus"
)

// RSTFlagRule flags any event carrying a reset
type RSTFlagRule struct {
	name        string
	enabled     bool
	description string
	logger      *logrus.Logger
}

func NewRSTFlagRule(enabled bool, logger *logrus.Logger) *RSTFlagRule {
	return &RSTFlagRule{
		name:        RuleRSTFlag,
		enabled:     enabled,
		description: "Packet carries the RST flag",
		logger:      logger,
	}
}

// Name returns the rule name
func (r *RSTFlagRule) Name() string {
	return r.name
}

func (r *RSTFlagRule) Description() string {
	return r.description
}

// IsEnabled returns whether the rule is enabled
func (r *RSTFlagRule) IsEnabled() bool {
	return r.enabled
}

// Evaluate evaluates the rule against an event
func (r *RSTFlagRule) Evaluate(ctx context.Context, event model.NetworkEvent) *model.ThreatAlert {
	if !r.enabled || !event.HasFlag(model.FlagRST) {
		return nil
	}

	r.logger.Debugf("[RST Flag] event %s %s -> %s", event.ID, event.SourceIP, event.DestinationIP)
	return newThreatAlert(r.name, event)
}
