package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler drives one tick body per interval. Tick bodies never overlap and
// an in-flight tick is never interrupted by cancellation.
type Scheduler struct {
	name     string
	interval time.Duration
	tick     func(ctx context.Context)
	logger   *logrus.Logger
	tickMu   sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewScheduler(interval time.Duration, tick func(ctx context.Context), logger *logrus.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %v", interval)
	}
	if tick == nil {
		return nil, fmt.Errorf("tick function is nil")
	}
	return &Scheduler{
		name:     "tick-scheduler",
		interval: interval,
		tick:     tick,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

// Serve runs ticks until ctx is done or Stop is called. It returns ctx.Err()
// on cancellation and nil after Stop.
func (s *Scheduler) Serve(ctx context.Context) error {
	if s.stopped() {
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Infof("[Scheduler] Starting ticks (interval: %v)", s.interval)

	for {
		select {
		case <-ticker.C:
			if s.stopped() {
				return nil
			}
			s.runTick(context.WithoutCancel(ctx))
		case <-ctx.Done():
			s.logger.Info("[Scheduler] Stopping ticks")
			return ctx.Err()
		case <-s.stopChan:
			s.logger.Info("[Scheduler] Scheduler stopped")
			return nil
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	s.tick(ctx)
}

// Stop prevents future ticks. It is idempotent and does not wait for an
// in-flight tick.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Scheduler) stopped() bool {
	select {
	case <-s.stopChan:
		return true
	default:
		return false
	}
}

func (s *Scheduler) String() string {
	return s.name
}
