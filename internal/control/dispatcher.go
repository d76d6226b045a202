package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/andres-erbsen/clock"

	"github.com/vietddude/syncbeat/internal/core/config"
	"github.com/vietddude/syncbeat/internal/core/domain"
	"github.com/vietddude/syncbeat/internal/dispatch/executor"
	"github.com/vietddude/syncbeat/internal/dispatch/failure"
	"github.com/vietddude/syncbeat/internal/dispatch/health"
	"github.com/vietddude/syncbeat/internal/dispatch/scheduler"
)

// Dispatcher is the main application struct: it wires tasks, trackers,
// the executor and per-task schedulers, plus the health server.
type Dispatcher struct {
	cfg        Config
	schedulers map[string]Scheduler
	healthMon  *health.Monitor
	healthSrv  *health.Server
	log        *slog.Logger
	fatal      chan error
}

// Config holds the application configuration.
type Config struct {
	Port int
	Sync config.SyncConfig
}

// NewDispatcher creates a Dispatcher with all dependencies initialized.
// The caller is expected to have validated required values already;
// a missing secret or URL here is a programming error.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Sync.Secret == "" {
		return nil, fmt.Errorf("sync secret required")
	}
	if cfg.Sync.Orders.URL == "" || cfg.Sync.Members.URL == "" {
		return nil, fmt.Errorf("task URLs required")
	}

	clk := clock.New()
	exec := executor.New(executor.Config{
		MaxAttempts:       cfg.Sync.Retry.MaxAttempts,
		RequestTimeout:    cfg.Sync.Retry.RequestTimeout,
		InitialBackoff:    cfg.Sync.Retry.InitialBackoff,
		BackoffMultiplier: cfg.Sync.Retry.BackoffMultiplier,
	}, cfg.Sync.Secret, clk)

	healthMon := health.NewMonitor(cfg.Sync.FailureThreshold)

	d := &Dispatcher{
		cfg:        cfg,
		schedulers: make(map[string]Scheduler),
		healthMon:  healthMon,
		healthSrv:  health.NewServer(healthMon, cfg.Port),
		log:        slog.Default(),
		fatal:      make(chan error, 1),
	}

	// Orders: fixed period, outcome never alters timing.
	orders := &domain.Task{Label: "orders", URL: cfg.Sync.Orders.URL, Policy: domain.PolicyFixed}
	ordersTracker := failure.NewTracker(orders.Label, cfg.Sync.FailureThreshold)
	ordersSched := scheduler.NewFixed(orders.Label, cfg.Sync.Orders.Interval, clk,
		d.makeJob(exec, orders, ordersTracker))
	d.schedulers[orders.Label] = ordersSched
	healthMon.Register(orders.Label, string(orders.Policy), health.Probe{
		Consecutive: ordersTracker.Consecutive,
		InFlight:    ordersSched.InFlight,
		NextDelay:   func() time.Duration { return cfg.Sync.Orders.Interval },
	})

	// Members: adaptive, endpoint suggests the next check-in.
	members := &domain.Task{Label: "members", URL: cfg.Sync.Members.URL, Policy: domain.PolicyAdaptive}
	membersTracker := failure.NewTracker(members.Label, cfg.Sync.FailureThreshold)
	membersSched := scheduler.NewAdaptive(members.Label, cfg.Sync.Members.Interval, clk,
		d.makeJob(exec, members, membersTracker))
	d.schedulers[members.Label] = membersSched
	healthMon.Register(members.Label, string(members.Policy), health.Probe{
		Consecutive: membersTracker.Consecutive,
		InFlight:    membersSched.InFlight,
		NextDelay:   membersSched.PendingDelay,
	})

	return d, nil
}

// makeJob binds a task, its tracker and the executor into one cycle,
// recording the outcome for health reporting.
func (d *Dispatcher) makeJob(exec Executor, task *domain.Task, tracker *failure.Tracker) scheduler.Job {
	return func(ctx context.Context) domain.Outcome {
		outcome := exec.Attempt(ctx, task, tracker)
		d.healthMon.RecordOutcome(task.Label, outcome.Success)
		return outcome
	}
}

// Start starts the health server and all schedulers. Each task fires
// its first invocation immediately.
func (d *Dispatcher) Start(ctx context.Context) error {
	go func() {
		if err := d.healthSrv.Start(); err != nil && err != http.ErrServerClosed {
			d.log.Error("Health server failed", "error", err)
		}
	}()

	for label, s := range d.schedulers {
		d.log.Info("Starting scheduler", "task", label)
		go d.runScheduler(ctx, label, s)
	}

	return nil
}

// runScheduler is the fail-fast boundary: anything escaping a task's
// own error handling is reported on the fatal channel instead of
// crashing silently inside a goroutine.
func (d *Dispatcher) runScheduler(ctx context.Context, label string, s Scheduler) {
	defer func() {
		if r := recover(); r != nil {
			d.reportFatal(fmt.Errorf("scheduler %s panicked: %v", label, r))
		}
	}()

	if err := s.Start(ctx); err != nil {
		d.reportFatal(fmt.Errorf("scheduler %s failed: %w", label, err))
	}
}

func (d *Dispatcher) reportFatal(err error) {
	select {
	case d.fatal <- err:
	default:
	}
}

// Fatal reports unrecoverable errors; the receiver should log and exit
// with a failure code.
func (d *Dispatcher) Fatal() <-chan error {
	return d.fatal
}

// Stop stops the schedulers and the health server.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.log.Info("Stopping dispatcher...")

	for label, s := range d.schedulers {
		if err := s.Stop(); err != nil {
			d.log.Warn("Failed to stop scheduler", "task", label, "error", err)
		}
	}

	return d.healthSrv.Stop(ctx)
}
