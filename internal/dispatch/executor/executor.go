package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/cenkalti/backoff"
	"github.com/google/uuid"

	"github.com/vietddude/syncbeat/internal/core/domain"
	"github.com/vietddude/syncbeat/internal/dispatch/failure"
	"github.com/vietddude/syncbeat/internal/dispatch/metrics"
)

// Config defines retry behavior for one attempt sequence.
type Config struct {
	MaxAttempts       int
	RequestTimeout    time.Duration
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// DefaultConfig provides the production retry policy: up to 3 tries,
// waiting 2s then 4s between them.
var DefaultConfig = Config{
	MaxAttempts:       3,
	RequestTimeout:    30 * time.Second,
	InitialBackoff:    2 * time.Second,
	BackoffMultiplier: 2.0,
	MaxBackoff:        30 * time.Second,
}

// nonRetryableStatus lists endpoint rejections that must not be retried
// within a cycle.
var nonRetryableStatus = map[int]struct{}{
	http.StatusBadRequest:      {},
	http.StatusUnauthorized:    {},
	http.StatusForbidden:       {},
	http.StatusTooManyRequests: {},
}

// Executor performs one sync attempt sequence against a task's endpoint,
// retrying transient failures with exponential backoff.
type Executor struct {
	cfg    Config
	secret string
	client *http.Client
	clk    clock.Clock
}

// New creates an Executor. Zero config fields fall back to DefaultConfig
// values; a nil clock uses the system clock.
func New(cfg Config, secret string, clk clock.Clock) *Executor {
	cfg.applyDefaults()
	if clk == nil {
		clk = clock.New()
	}
	return &Executor{
		cfg:    cfg,
		secret: secret,
		clk:    clk,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (cfg *Config) applyDefaults() {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultConfig.MaxAttempts
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultConfig.RequestTimeout
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = DefaultConfig.InitialBackoff
	}
	if cfg.BackoffMultiplier == 0 {
		cfg.BackoffMultiplier = DefaultConfig.BackoffMultiplier
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = DefaultConfig.MaxBackoff
	}
}

// Attempt runs one full attempt sequence for the task: up to MaxAttempts
// authenticated POSTs, backing off between retryable failures. The
// tracker is reset on success and incremented exactly once per terminal
// failure. A context canceled mid-cycle ends the cycle without counting
// a failure; shutdown must not trip escalation.
func (e *Executor) Attempt(ctx context.Context, task *domain.Task, tracker *failure.Tracker) domain.Outcome {
	log := slog.With("task", task.Label, "cycle", uuid.New().String()[:8])

	b := e.newBackOff()
	b.Reset()

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		start := time.Now()
		resp, status, err := e.post(ctx, task)
		metrics.AttemptLatency.WithLabelValues(task.Label).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.AttemptsTotal.WithLabelValues(task.Label, "success").Inc()
			metrics.CyclesTotal.WithLabelValues(task.Label, "success").Inc()
			tracker.Reset()
			log.Info("Sync notification delivered", "attempt", attempt, "status", status)
			return domain.Outcome{Success: true, Response: resp}
		}

		metrics.AttemptsTotal.WithLabelValues(task.Label, "failure").Inc()

		if _, ok := nonRetryableStatus[status]; ok {
			metrics.CyclesTotal.WithLabelValues(task.Label, "failure").Inc()
			tracker.RecordFailure()
			log.Error("Sync notification rejected", "attempt", attempt, "status", status, "error", err)
			return domain.Outcome{Success: false, Retryable: false}
		}

		if attempt == e.cfg.MaxAttempts {
			metrics.CyclesTotal.WithLabelValues(task.Label, "failure").Inc()
			tracker.RecordFailure()
			log.Error("Sync notification failed, retries exhausted",
				"attempts", attempt, "consecutive_failures", tracker.Consecutive(), "error", err)
			return domain.Outcome{Success: false, Retryable: true}
		}

		delay := b.NextBackOff()
		log.Warn("Sync attempt failed, retrying", "attempt", attempt, "retry_in", delay, "error", err)
		select {
		case <-ctx.Done():
			log.Info("Sync cycle canceled", "error", ctx.Err())
			return domain.Outcome{Success: false, Retryable: true}
		case <-e.clk.After(delay):
		}
	}

	return domain.Outcome{Success: false, Retryable: true}
}

// post issues a single authenticated POST try. A nil error means the
// endpoint accepted the notification; the parsed response may still be
// nil when the body is absent or not valid JSON.
func (e *Executor) post(ctx context.Context, task *domain.Task) (*domain.SyncResponse, int, error) {
	payload, err := json.Marshal(domain.SyncRequest{Message: "Sync " + task.Label})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, task.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.secret)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("sync call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var parsed domain.SyncResponse
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil {
		// Endpoints are not required to return a body.
		return nil, resp.StatusCode, nil
	}
	return &parsed, resp.StatusCode, nil
}

// newBackOff returns the wait policy between retryable failures:
// InitialBackoff * BackoffMultiplier^n, deterministic, capped at
// MaxBackoff.
func (e *Executor) newBackOff() backoff.BackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     e.cfg.InitialBackoff,
		RandomizationFactor: 0,
		Multiplier:          e.cfg.BackoffMultiplier,
		MaxInterval:         e.cfg.MaxBackoff,
		MaxElapsedTime:      0,
		Clock:               backoff.SystemClock,
	}
}
