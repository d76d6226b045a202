package failure

import (
	"log/slog"

	"github.com/vietddude/syncbeat/internal/dispatch/metrics"
)

// DefaultThreshold is the consecutive-failure count at which the
// escalated warning starts firing.
const DefaultThreshold = 5

// Tracker counts consecutive terminal failures for a single task.
// It is owned by exactly one task and is not safe for concurrent use;
// each task's cycles are serialized by its scheduler.
type Tracker struct {
	label       string
	threshold   int
	consecutive int
}

// NewTracker creates a tracker for the given task label.
// A threshold <= 0 falls back to DefaultThreshold.
func NewTracker(label string, threshold int) *Tracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Tracker{label: label, threshold: threshold}
}

// Reset clears the counter after a successful cycle.
func (t *Tracker) Reset() {
	t.consecutive = 0
	metrics.ConsecutiveFailures.WithLabelValues(t.label).Set(0)
}

// RecordFailure registers one terminal failure and reports whether the
// escalation threshold has been reached. The escalation is
// level-triggered: it fires again on every further terminal failure
// while the counter keeps growing.
func (t *Tracker) RecordFailure() bool {
	t.consecutive++
	metrics.ConsecutiveFailures.WithLabelValues(t.label).Set(float64(t.consecutive))

	if t.consecutive >= t.threshold {
		metrics.EscalationsTotal.WithLabelValues(t.label).Inc()
		slog.Error("Task failing repeatedly, operator attention required",
			"task", t.label,
			"consecutive_failures", t.consecutive,
			"threshold", t.threshold,
		)
		return true
	}
	return false
}

// Consecutive returns the current consecutive terminal-failure count.
func (t *Tracker) Consecutive() int {
	return t.consecutive
}
