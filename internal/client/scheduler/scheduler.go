// Package scheduler triggers sync cycles on a fixed interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/logging"
)

// Trigger is the single entry point the scheduler calls. It must be safe
// to call while a previous call is still running.
type Trigger interface {
	SyncNow(ctx context.Context) bool
}

type Scheduler struct {
	trigger  Trigger
	interval time.Duration
	logger   logging.Logger
	tick     func(d time.Duration) (<-chan time.Time, func())

	mu      sync.Mutex
	lastRun time.Time
}

type Option func(*Scheduler)

func WithLogger(l logging.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithTicker replaces the tick source; stop is called when Run returns.
func WithTicker(fn func(d time.Duration) (c <-chan time.Time, stop func())) Option {
	return func(s *Scheduler) { s.tick = fn }
}

func New(t Trigger, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		trigger:  t,
		interval: interval,
		logger:   logging.NewNop(),
		tick: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "scheduler")
	return s
}

// Run calls the trigger on every tick until ctx is done. Ticks are handled
// in order, so a slow cycle delays the next one instead of overlapping it.
func (s *Scheduler) Run(ctx context.Context) error {
	c, stop := s.tick(s.interval)
	defer stop()

	s.logger.Info(ctx, "periodic sync started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "periodic sync stopped")
			return nil
		case <-c:
			ran := s.trigger.SyncNow(ctx)
			if ran {
				s.mu.Lock()
				s.lastRun = time.Now()
				s.mu.Unlock()
			}
			s.logger.Debug(ctx, "periodic sync tick", "ran", ran)
		}
	}
}

// LastRun returns when a tick last ran a cycle, or the zero time.
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}
