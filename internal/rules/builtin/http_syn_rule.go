package builtin

import (
	"context"

	"threat-sentinel/internal/model"

	"github.com/sirupsen/logrus"
)

// HTTPSynRule flags connection openings on plain HTTP
type HTTPSynRule struct {
	name        string
	enabled     bool
	description string
	logger      *logrus.Logger
}

func NewHTTPSynRule(enabled bool, logger *logrus.Logger) *HTTPSynRule {
	return &HTTPSynRule{
		name:        RuleHTTPSyn,
		enabled:     enabled,
		description: "SYN on an unencrypted HTTP connection",
		logger:      logger,
	}
}

func (r *HTTPSynRule) Name() string {
	return r.name
}

func (r *HTTPSynRule) Description() string {
	return r.description
}

func (r *HTTPSynRule) IsEnabled() bool {
	return r.enabled
}

func (r *HTTPSynRule) Evaluate(ctx context.Context, event model.NetworkEvent) *model.ThreatAlert {
	if !r.enabled || event.Protocol != model.ProtocolHTTP || !event.HasFlag(model.FlagSYN) {
		return nil
	}

	r.logger.Debugf("[HTTP SYN] event %s %s -> %s", event.ID, event.SourceIP, event.DestinationIP)
	return newThreatAlert(r.name, event)
}
