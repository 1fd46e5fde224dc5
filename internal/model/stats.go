package model

import "time"

// StreamStats holds the running totals of the streaming path
type StreamStats struct {
	ItemsProcessed int64     `json:"items_processed"`
	AlertsRaised   int64     `json:"alerts_raised"`
	LastUpdated    time.Time `json:"last_updated"`
}
