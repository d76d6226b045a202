package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"

	"github.com/vietddude/syncbeat/internal/core/domain"
)

// waitForCount polls until the job has run at least want times, then
// gives the scheduler a moment to arm its next timer before the mock
// clock is advanced.
func waitForCount(t *testing.T, c *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Load() >= want {
			time.Sleep(50 * time.Millisecond)
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d invocations, got %d", want, c.Load())
}

func TestFixed_InvokesImmediatelyThenEveryPeriod(t *testing.T) {
	clk := clock.NewMock()
	var count atomic.Int32
	job := func(ctx context.Context) domain.Outcome {
		count.Add(1)
		// Outcome must not alter the cadence for this policy.
		return domain.Outcome{Success: false, Retryable: true}
	}

	s := NewFixed("orders", 10*time.Minute, clk, job)
	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	waitForCount(t, &count, 1)

	clk.Add(10 * time.Minute)
	waitForCount(t, &count, 2)

	clk.Add(10 * time.Minute)
	waitForCount(t, &count, 3)

	s.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	clk.Add(30 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	if got := count.Load(); got != 3 {
		t.Errorf("expected no invocations after Stop, got %d total", got)
	}
}

func TestFixed_ContextCancelStopsLoop(t *testing.T) {
	clk := clock.NewMock()
	var count atomic.Int32
	job := func(ctx context.Context) domain.Outcome {
		count.Add(1)
		return domain.Outcome{Success: true}
	}

	s := NewFixed("orders", time.Minute, clk, job)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitForCount(t, &count, 1)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}

func TestFixed_DoubleStartFails(t *testing.T) {
	clk := clock.NewMock()
	block := make(chan struct{})
	job := func(ctx context.Context) domain.Outcome {
		<-block
		return domain.Outcome{Success: true}
	}

	s := NewFixed("orders", time.Minute, clk, job)
	go s.Start(context.Background())

	// Wait until the first Start is committed.
	deadline := time.Now().Add(2 * time.Second)
	for !s.running.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error on second Start")
	}

	close(block)
	s.Stop()
}
