package model

import (
	"fmt"
	"time"
)

// Severity is ordered low < medium < high
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseSeverity maps a textual severity back to its ordered value
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "low", "LOW":
		return SeverityLow, nil
	case "medium", "MEDIUM":
		return SeverityMedium, nil
	case "high", "HIGH":
		return SeverityHigh, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ThreatAlert is produced once per suspicious event and never mutated afterwards
type ThreatAlert struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Severity      Severity  `json:"severity"`
	Description   string    `json:"description"`
	SourceIP      string    `json:"source_ip"`
	DestinationIP string    `json:"destination_ip"`
	Action        string    `json:"action"`
	Rule          string    `json:"rule"`
	EventID       string    `json:"event_id"`
}

// Payload renders the triggering traffic in one line
func (a ThreatAlert) Payload() string {
	return fmt.Sprintf("%s -> %s (rule=%s, event=%s)", a.SourceIP, a.DestinationIP, a.Rule, a.EventID)
}
