package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStateCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    JobState
		to      JobState
		allowed bool
	}{
		{name: "queued to running", from: JobQueued, to: JobRunning, allowed: true},
		{name: "queued to failed", from: JobQueued, to: JobFailed, allowed: true},
		{name: "queued to succeeded skips running", from: JobQueued, to: JobSucceeded, allowed: false},
		{name: "running to succeeded", from: JobRunning, to: JobSucceeded, allowed: true},
		{name: "running to failed", from: JobRunning, to: JobFailed, allowed: true},
		{name: "running back to queued", from: JobRunning, to: JobQueued, allowed: false},
		{name: "succeeded is terminal", from: JobSucceeded, to: JobRunning, allowed: false},
		{name: "succeeded to failed", from: JobSucceeded, to: JobFailed, allowed: false},
		{name: "failed is terminal", from: JobFailed, to: JobRunning, allowed: false},
		{name: "failed to succeeded", from: JobFailed, to: JobSucceeded, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestJobStateIsTerminal(t *testing.T) {
	assert.False(t, JobQueued.IsTerminal())
	assert.False(t, JobRunning.IsTerminal())
	assert.True(t, JobSucceeded.IsTerminal())
	assert.True(t, JobFailed.IsTerminal())
}

func TestJobClone(t *testing.T) {
	job := &Job{ID: "abc", Action: ActionReview, State: JobQueued}

	cp := job.Clone()
	cp.State = JobRunning
	cp.Target = "changed"

	assert.Equal(t, JobQueued, job.State)
	assert.Empty(t, job.Target)
}
