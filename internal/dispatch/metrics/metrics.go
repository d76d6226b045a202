package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal tracks completed attempt sequences per task
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncbeat_cycles_total",
			Help: "Total number of completed sync cycles",
		},
		[]string{"task", "result"},
	)

	// AttemptsTotal tracks individual HTTP tries per task
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncbeat_attempts_total",
			Help: "Total number of sync HTTP attempts",
		},
		[]string{"task", "result"},
	)

	// AttemptLatency tracks HTTP attempt latency
	AttemptLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncbeat_attempt_latency_seconds",
			Help:    "Sync HTTP attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)

	// ConsecutiveFailures tracks the current consecutive terminal-failure count
	ConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "syncbeat_consecutive_failures",
			Help: "Current consecutive terminal failures per task",
		},
		[]string{"task"},
	)

	// EscalationsTotal tracks escalated warnings emitted per task
	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncbeat_escalations_total",
			Help: "Total number of escalated failure warnings",
		},
		[]string{"task"},
	)

	// NextDelaySeconds tracks the delay armed for the next invocation
	NextDelaySeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "syncbeat_next_delay_seconds",
			Help: "Delay until the next scheduled invocation",
		},
		[]string{"task"},
	)
)
