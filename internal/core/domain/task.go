package domain

// Policy determines how a task is rescheduled after each cycle.
type Policy string

const (
	// PolicyFixed re-invokes on a constant period, ignoring outcomes.
	PolicyFixed Policy = "fixed"
	// PolicyAdaptive re-invokes after a delay suggested by the endpoint.
	PolicyAdaptive Policy = "adaptive"
)

// Task is one named, independently scheduled sync target.
type Task struct {
	Label  string
	URL    string
	Policy Policy
}

// SyncRequest is the body POSTed to a task's endpoint.
type SyncRequest struct {
	Message string `json:"message"`
}

// SyncResponse is the endpoint's reply, decoded best-effort.
// NextCheckInSeconds is only honored by the adaptive policy and only
// when strictly positive.
type SyncResponse struct {
	NextCheckInSeconds float64 `json:"nextCheckInSeconds"`
}

// Outcome is the result of one full attempt sequence.
// Retryable is only meaningful when Success is false: a non-retryable
// outcome means the endpoint rejected the request outright, a retryable
// one means the retry budget was exhausted (or the cycle was canceled).
type Outcome struct {
	Success   bool
	Retryable bool
	Response  *SyncResponse
}
