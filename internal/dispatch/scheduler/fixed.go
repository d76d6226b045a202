package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/andres-erbsen/clock"

	"github.com/vietddude/syncbeat/internal/core/domain"
	"github.com/vietddude/syncbeat/internal/dispatch/metrics"
)

// Job runs one attempt sequence for a task and reports its outcome.
type Job func(ctx context.Context) domain.Outcome

// Fixed re-invokes a job on a constant period, regardless of each
// invocation's outcome. The cycle runs synchronously inside the loop,
// so invocations of the same task can never overlap; a cycle that
// overruns the period simply drops the missed tick.
type Fixed struct {
	label   string
	period  time.Duration
	run     Job
	clk     clock.Clock
	running atomic.Bool
	busy    atomic.Bool
	stop    chan struct{}
}

// NewFixed creates a fixed-interval scheduler. A nil clock uses the
// system clock.
func NewFixed(label string, period time.Duration, clk clock.Clock, run Job) *Fixed {
	if clk == nil {
		clk = clock.New()
	}
	return &Fixed{
		label:  label,
		period: period,
		run:    run,
		clk:    clk,
		stop:   make(chan struct{}),
	}
}

// Start runs the job immediately, then on every period tick until the
// context is canceled or Stop is called.
func (s *Fixed) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("scheduler %s already running", s.label)
	}
	defer s.running.Store(false)

	metrics.NextDelaySeconds.WithLabelValues(s.label).Set(s.period.Seconds())
	s.invoke(ctx)

	ticker := s.clk.Ticker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.invoke(ctx)
		}
	}
}

// Stop cancels future invocations. It does not interrupt a cycle that
// is already in flight.
func (s *Fixed) Stop() error {
	if s.running.Load() {
		close(s.stop)
	}
	return nil
}

// InFlight reports whether a cycle is currently running.
func (s *Fixed) InFlight() bool {
	return s.busy.Load()
}

func (s *Fixed) invoke(ctx context.Context) {
	s.busy.Store(true)
	defer s.busy.Store(false)

	outcome := s.run(ctx)
	// Outcome does not alter timing for this policy.
	slog.Debug("Fixed cycle finished", "task", s.label, "success", outcome.Success)
}
