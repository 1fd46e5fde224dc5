package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Subscriber receives updates on Channel until it is unsubscribed
type Subscriber struct {
	ID         string
	Channel    chan Update
	AlertsOnly bool
	lastSeen   atomic.Int64
}

// LastSeen is the time of the last update delivered to the subscriber
func (s *Subscriber) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Broadcaster pushes tick updates to observers. Sends never block; a full
// subscriber misses the update.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[*Subscriber]bool
	dropped atomic.Int64
	logger  *logrus.Logger
}

func NewBroadcaster(logger *logrus.Logger) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[*Subscriber]bool),
		logger: logger,
	}
}

// Subscribe registers a subscriber with the given channel buffer
func (b *Broadcaster) Subscribe(buffer int, alertsOnly bool) *Subscriber {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscriber{
		ID:         uuid.NewString(),
		Channel:    make(chan Update, buffer),
		AlertsOnly: alertsOnly,
	}
	sub.lastSeen.Store(time.Now().UnixNano())

	b.mu.Lock()
	b.subs[sub] = true
	b.mu.Unlock()

	b.logger.Debugf("Subscriber %s registered (alerts only: %v)", sub.ID, alertsOnly)
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.subs[sub] {
		return
	}
	delete(b.subs, sub)
	close(sub.Channel)
	b.logger.Debugf("Subscriber %s removed", sub.ID)
}

func (b *Broadcaster) Publish(update Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if sub.AlertsOnly && update.Alert == nil {
			continue
		}

		select {
		case sub.Channel <- update.Clone():
			sub.lastSeen.Store(time.Now().UnixNano())
		default:
			// Channel full, skip
			b.dropped.Add(1)
		}
	}
}

func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped counts updates skipped because a subscriber was full
func (b *Broadcaster) Dropped() int64 {
	return b.dropped.Load()
}
