package stats

import (
	"sync"
	"time"

	"threat-sentinel/internal/model"
)

// Counter keeps the running totals of the streaming path. Tick is the only
// mutation and both counters only ever grow.
type Counter struct {
	mu    sync.RWMutex
	stats model.StreamStats
	now   func() time.Time
}

func NewCounter() *Counter {
	return NewCounterWithClock(time.Now)
}

// NewCounterWithClock uses now for the last-updated timestamp
func NewCounterWithClock(now func() time.Time) *Counter {
	return &Counter{
		stats: model.StreamStats{LastUpdated: now()},
		now:   now,
	}
}

// Tick counts one processed item and, when alertProduced is set, one alert
func (c *Counter) Tick(alertProduced bool) model.StreamStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.ItemsProcessed++
	if alertProduced {
		c.stats.AlertsRaised++
	}
	c.stats.LastUpdated = c.now()
	return c.stats
}

// Snapshot returns the counters as of the last completed tick
func (c *Counter) Snapshot() model.StreamStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
