package control

import (
	"context"

	"github.com/vietddude/syncbeat/internal/core/domain"
	"github.com/vietddude/syncbeat/internal/dispatch/failure"
)

// Scheduler drives repeated invocations of one task.
type Scheduler interface {
	// Start blocks until the context is canceled or Stop is called.
	Start(ctx context.Context) error

	// Stop cancels future invocations without interrupting an
	// in-flight cycle.
	Stop() error

	// InFlight reports whether a cycle is currently running.
	InFlight() bool
}

// Executor performs one attempt sequence for a task.
type Executor interface {
	Attempt(ctx context.Context, task *domain.Task, tracker *failure.Tracker) domain.Outcome
}
