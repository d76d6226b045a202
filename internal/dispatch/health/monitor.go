package health

import (
	"sync"
	"time"
)

// Probe exposes live state from a task's wiring: its failure counter
// and its scheduler.
type Probe struct {
	Consecutive func() int
	InFlight    func() bool
	NextDelay   func() time.Duration
}

// Monitor aggregates health status for all scheduled tasks.
type Monitor struct {
	threshold int

	mu    sync.RWMutex
	tasks map[string]*taskState
}

type taskState struct {
	policy        string
	probe         Probe
	lastSuccessAt time.Time
	lastFailureAt time.Time
}

// NewMonitor creates a monitor. The threshold matches the failure
// tracker's escalation threshold and marks a task critical.
func NewMonitor(threshold int) *Monitor {
	return &Monitor{
		threshold: threshold,
		tasks:     make(map[string]*taskState),
	}
}

// Register adds a task to the report.
func (m *Monitor) Register(label, policy string, probe Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[label] = &taskState{policy: policy, probe: probe}
}

// RecordOutcome records the completion time of a cycle.
func (m *Monitor) RecordOutcome(label string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.tasks[label]
	if !ok {
		return
	}
	if success {
		st.lastSuccessAt = time.Now()
	} else {
		st.lastFailureAt = time.Now()
	}
}

// CheckHealth builds the per-task health report.
func (m *Monitor) CheckHealth() map[string]TaskHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := make(map[string]TaskHealth, len(m.tasks))
	for label, st := range m.tasks {
		h := TaskHealth{
			Label:  label,
			Policy: st.policy,
			Status: StatusHealthy,
		}
		if st.probe.Consecutive != nil {
			h.ConsecutiveFailures = st.probe.Consecutive()
		}
		if st.probe.InFlight != nil {
			h.InFlight = st.probe.InFlight()
		}
		if st.probe.NextDelay != nil {
			h.NextDelaySeconds = st.probe.NextDelay().Seconds()
		}
		if !st.lastSuccessAt.IsZero() {
			h.LastSuccessAt = st.lastSuccessAt.Format(time.RFC3339)
		}
		if !st.lastFailureAt.IsZero() {
			h.LastFailureAt = st.lastFailureAt.Format(time.RFC3339)
		}

		switch {
		case h.ConsecutiveFailures >= m.threshold:
			h.Status = StatusCritical
		case h.ConsecutiveFailures > 0:
			h.Status = StatusDegraded
		}
		report[label] = h
	}
	return report
}
