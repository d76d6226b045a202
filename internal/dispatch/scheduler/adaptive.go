package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andres-erbsen/clock"

	"github.com/vietddude/syncbeat/internal/core/domain"
	"github.com/vietddude/syncbeat/internal/dispatch/metrics"
)

// Adaptive re-invokes a job after a delay computed from the previous
// cycle's outcome: the endpoint's suggested check-in interval when the
// response carries a positive one, the default delay otherwise. Each
// cycle arms exactly one single-shot timer once the previous attempt
// sequence has fully resolved, so invocations never overlap and a slow
// response pushes back the next start.
type Adaptive struct {
	label        string
	defaultDelay time.Duration
	run          Job
	clk          clock.Clock
	running      atomic.Bool
	busy         atomic.Bool
	stop         chan struct{}

	mu      sync.RWMutex
	pending time.Duration
}

// NewAdaptive creates an adaptive-interval scheduler. A nil clock uses
// the system clock.
func NewAdaptive(label string, defaultDelay time.Duration, clk clock.Clock, run Job) *Adaptive {
	if clk == nil {
		clk = clock.New()
	}
	return &Adaptive{
		label:        label,
		defaultDelay: defaultDelay,
		run:          run,
		clk:          clk,
		stop:         make(chan struct{}),
	}
}

// Start runs the job immediately, then loops: resolve cycle, compute
// next delay, arm one timer, wait. An explicit loop rather than timer
// callback recursion keeps the chain bounded and cancelable.
func (s *Adaptive) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("scheduler %s already running", s.label)
	}
	defer s.running.Store(false)

	for {
		s.busy.Store(true)
		outcome := s.run(ctx)
		s.busy.Store(false)

		delay := s.NextDelay(outcome)
		s.setPending(delay)
		metrics.NextDelaySeconds.WithLabelValues(s.label).Set(delay.Seconds())
		slog.Debug("Next cycle armed", "task", s.label, "delay", delay, "success", outcome.Success)

		timer := s.clk.Timer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-s.stop:
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Stop cancels the pending single-shot timer and all future
// invocations. A cycle already in flight runs to its own bounds.
func (s *Adaptive) Stop() error {
	if s.running.Load() {
		close(s.stop)
	}
	return nil
}

// InFlight reports whether a cycle is currently running.
func (s *Adaptive) InFlight() bool {
	return s.busy.Load()
}

// PendingDelay returns the delay armed after the most recent cycle.
func (s *Adaptive) PendingDelay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// NextDelay computes the delay before the next invocation from a
// cycle's outcome. Only a successful cycle whose response carries a
// strictly positive check-in interval overrides the default.
func (s *Adaptive) NextDelay(o domain.Outcome) time.Duration {
	if o.Success && o.Response != nil && o.Response.NextCheckInSeconds > 0 {
		return time.Duration(o.Response.NextCheckInSeconds * float64(time.Second))
	}
	return s.defaultDelay
}

func (s *Adaptive) setPending(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = d
}
