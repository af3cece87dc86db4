package core

import "time"

// JobState is the lifecycle state of one asynchronous action invocation.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// IsTerminal reports whether the state admits no further transitions.
func (s JobState) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// CanTransitionTo reports whether moving from s to next respects the
// monotonic order Queued -> Running -> {Succeeded, Failed}.
func (s JobState) CanTransitionTo(next JobState) bool {
	switch s {
	case JobQueued:
		// Queued -> Failed covers jobs that never reached a worker.
		return next == JobRunning || next == JobFailed
	case JobRunning:
		return next == JobSucceeded || next == JobFailed
	default:
		return false
	}
}

// Job is the tracked record of one asynchronous action invocation. The
// job store owns the record once created; other components hold only the
// id after submission.
type Job struct {
	ID        string     `json:"id"`
	Action    ActionKind `json:"action"`
	Target    string     `json:"target"`
	State     JobState   `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	// Result is set iff State is Succeeded; Err is set iff State is Failed.
	Result *Result `json:"result,omitempty"`
	Err    *Error  `json:"error,omitempty"`
}

// Clone returns a copy of the job so callers can never mutate the
// store-owned record through a returned pointer.
func (j *Job) Clone() *Job {
	cp := *j
	return &cp
}
