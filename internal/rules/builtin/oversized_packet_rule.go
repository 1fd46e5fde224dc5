package builtin

import (
	"context"

	"threat-sentinel/internal/model"

	"github.com/sirupsen/logrus"
)

const defaultMaxPacketSize = 1400

// OversizedPacketRule flags events larger than a size threshold
type OversizedPacketRule struct {
	name        string
	enabled     bool
	description string
	maxSize     int
	logger      *logrus.Logger
}

func NewOversizedPacketRule(enabled bool, maxSize int, logger *logrus.Logger) *OversizedPacketRule {
	if maxSize <= 0 {
		maxSize = defaultMaxPacketSize
	}
	return &OversizedPacketRule{
		name:        RuleOversizedPacket,
		enabled:     enabled,
		description: "Packet size exceeds the configured maximum",
		maxSize:     maxSize,
		logger:      logger,
	}
}

func (r *OversizedPacketRule) Name() string {
	return r.name
}

func (r *OversizedPacketRule) Description() string {
	return r.description
}

func (r *OversizedPacketRule) IsEnabled() bool {
	return r.enabled
}

func (r *OversizedPacketRule) MaxSize() int {
	return r.maxSize
}

func (r *OversizedPacketRule) Evaluate(ctx context.Context, event model.NetworkEvent) *model.ThreatAlert {
	if !r.enabled || event.Size <= r.maxSize {
		return nil
	}

	r.logger.Debugf("[Oversized Packet] event %s size %d (threshold: %d)", event.ID, event.Size, r.maxSize)
	return newThreatAlert(r.name, event)
}
