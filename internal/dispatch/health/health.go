// Package health provides per-task health monitoring and status reporting.
package health

// SystemStatus represents the overall health state of the daemon or a task.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// TaskHealth contains health metrics for one scheduled sync task.
type TaskHealth struct {
	Label               string       `json:"label"`
	Policy              string       `json:"policy"`
	Status              SystemStatus `json:"status"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	LastSuccessAt       string       `json:"last_success_at,omitempty"`
	LastFailureAt       string       `json:"last_failure_at,omitempty"`
	InFlight            bool         `json:"in_flight"`
	NextDelaySeconds    float64      `json:"next_delay_seconds,omitempty"`
}
