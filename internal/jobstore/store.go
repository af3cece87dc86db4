// Package jobstore is the process-wide registry of asynchronous job
// records. The raw map is never exposed; all access goes through the
// store's operations, which are internally synchronized.
package jobstore

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/pr-warden/internal/core"
)

// Store holds every live job record keyed by its id. A job is created by
// the runner at submission time, mutated only by the runner goroutine
// that owns its execution, read on client polls, and eventually removed
// by Sweep.
type Store struct {
	mu     sync.Mutex
	jobs   map[string]*core.Job
	logger *slog.Logger
}

// New creates an empty job store.
func New(logger *slog.Logger) *Store {
	return &Store{
		jobs:   make(map[string]*core.Job),
		logger: logger,
	}
}

// Create allocates a fresh job in the Queued state and returns a copy of
// the record. Ids are uuids, so concurrent creation never collides.
func (s *Store) Create(action core.ActionKind, target string) *core.Job {
	now := time.Now().UTC()
	job := &core.Job{
		ID:        uuid.NewString(),
		Action:    action,
		Target:    target,
		State:     core.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return job.Clone()
}

// Transition moves the job to next, recording the result or error that
// accompanies a terminal state. It fails with NotFound for an unknown id
// and with InvalidTransition when the move violates the monotonic
// Queued->Running->terminal order.
func (s *Store) Transition(id string, next core.JobState, result *core.Result, jobErr *core.Error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return core.Errf(core.ErrNotFound, "job %s not found", id)
	}
	if !job.State.CanTransitionTo(next) {
		return core.Errf(core.ErrInvalidTransition, "job %s cannot move from %s to %s", id, job.State, next)
	}

	job.State = next
	job.UpdatedAt = time.Now().UTC()
	switch next {
	case core.JobSucceeded:
		job.Result = result
		job.Err = nil
	case core.JobFailed:
		job.Err = jobErr
		job.Result = nil
	}
	return nil
}

// Get returns a copy of the job record, or a NotFound error.
func (s *Store) Get(id string) (*core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, core.Errf(core.ErrNotFound, "job %s not found", id)
	}
	return job.Clone(), nil
}

// Sweep removes terminal jobs whose last update is older than the
// threshold and returns the removed records so callers can archive them.
// Live jobs are never touched.
func (s *Store) Sweep(olderThan time.Duration) []*core.Job {
	cutoff := time.Now().UTC().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*core.Job
	for id, job := range s.jobs {
		if job.State.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			removed = append(removed, job)
			delete(s.jobs, id)
		}
	}

	if len(removed) > 0 {
		s.logger.Info("swept terminal jobs", "count", len(removed), "older_than", olderThan)
	}
	return removed
}

// Len reports the number of live records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
