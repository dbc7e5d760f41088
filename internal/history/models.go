package history

import "time"

// Status is the lifecycle state of a run record.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
)

// Record is one stage invocation.
type Record struct {
	ID         int64
	RunID      string
	Stage      string
	Status     Status
	OutputPath string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration returns how long the run took, or zero while it is still running.
func (r Record) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
