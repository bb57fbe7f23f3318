// Package poll provides the fallback refresh scheduler used while the
// live channel is down: it refetches on a fixed interval and on window
// focus, and goes quiet the moment pushes flow again.
package poll

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/traduct/dashsync/internal/log"
)

// SchedulerConfig is the configuration for the fallback scheduler.
type SchedulerConfig struct {
	// Interval between fallback refreshes.
	Interval time.Duration
	// Refresh is the refetch to run on each tick. It must coalesce its own
	// duplicate calls.
	Refresh func(ctx context.Context)
	Logger  log.Logger
}

func (c *SchedulerConfig) defaults() error {
	if c.Refresh == nil {
		return fmt.Errorf("refresh func is required")
	}

	if c.Interval == 0 {
		c.Interval = 4 * time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "poll.Scheduler"})

	return nil
}

// Scheduler refetches data on an interval while the live channel is down.
// While live it stays idle: pushes carry the updates and periodic or
// focus-driven refetches would only waste requests.
type Scheduler struct {
	interval time.Duration
	refresh  func(ctx context.Context)
	logger   log.Logger

	live atomic.Bool
}

// NewScheduler creates a new fallback scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Scheduler{
		interval: cfg.Interval,
		refresh:  cfg.Refresh,
		logger:   cfg.Logger,
	}, nil
}

// Run ticks at the configured interval until the context is cancelled.
// Ticks while live are skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.live.Load() {
				continue
			}
			s.logger.Debugf("falling back to polled refresh")
			s.refresh(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// SetLive flips the scheduler between idle (live pushes flowing) and
// polling (channel down).
func (s *Scheduler) SetLive(live bool) {
	s.live.Store(live)
}

// Live reports whether the scheduler currently considers pushes live.
func (s *Scheduler) Live() bool {
	return s.live.Load()
}

// Focus refetches on window focus, unless the channel is live and the
// cache cannot be stale.
func (s *Scheduler) Focus(ctx context.Context) {
	if s.live.Load() {
		return
	}
	s.refresh(ctx)
}
