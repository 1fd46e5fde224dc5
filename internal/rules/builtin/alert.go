package builtin

import (
	"threat-sentinel/internal/model"

	"github.com/google/uuid"
)

const (
	alertDescription = "Suspicious network activity detected"
	alertAction      = "Block connection"
)

// alertNamespace scopes the name-based UUIDs derived from event ids
var alertNamespace = uuid.MustParse("5b1f0c2e-8d4a-4c39-9a57-3e2f6d1b7c40")

// newThreatAlert builds the alert for an event that tripped rule. The id and
// timestamp derive from the event so the same event always yields the same alert.
func newThreatAlert(rule string, event model.NetworkEvent) *model.ThreatAlert {
	return &model.ThreatAlert{
		ID:            uuid.NewSHA1(alertNamespace, []byte(event.ID)).String(),
		Timestamp:     event.Timestamp,
		Severity:      model.SeverityHigh,
		Description:   alertDescription,
		SourceIP:      event.SourceIP,
		DestinationIP: event.DestinationIP,
		Action:        alertAction,
		Rule:          rule,
		EventID:       event.ID,
	}
}
