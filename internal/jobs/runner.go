// Package jobs executes analysis actions, either synchronously or as
// background units of work tracked through the job store.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/gateway"
	"github.com/sevigo/pr-warden/internal/jobstore"
)

// task is one queued unit of work. onDone, when set, receives the final
// job record after the terminal transition; the batch orchestrator uses
// it to fill its result slots.
type task struct {
	jobID    string
	action   core.ActionKind
	target   string
	question string
	opts     core.OptionSet
	onDone   func(job *core.Job)
}

// Runner executes actions through a fixed pool of worker goroutines fed
// by a bounded queue. The pool is the single backpressure knob: when the
// queue is full, new submissions fail with a scheduling error instead of
// spawning unbounded analysis calls.
type Runner struct {
	gateway    *gateway.Gateway
	store      *jobstore.Store
	deadline   time.Duration
	maxWorkers int
	taskQueue  chan *task
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewRunner initializes the runner and starts its worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewRunner(gw *gateway.Gateway, store *jobstore.Store, maxWorkers, queueSize int, deadline time.Duration, logger *slog.Logger) *Runner {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	r := &Runner{
		gateway:    gw,
		store:      store,
		deadline:   deadline,
		maxWorkers: maxWorkers,
		taskQueue:  make(chan *task, queueSize),
		logger:     logger,
	}
	r.startWorkers()
	return r
}

func (r *Runner) startWorkers() {
	for i := range r.maxWorkers {
		r.wg.Add(1)
		go r.startWorker(i)
	}
}

// startWorker processes tasks from the queue until it's closed.
func (r *Runner) startWorker(workerID int) {
	defer r.wg.Done()
	r.logger.Info("starting analysis worker", "id", workerID)

	for t := range r.taskQueue {
		r.process(workerID, t)
	}

	r.logger.Info("shutting down analysis worker", "id", workerID)
}

// Submit creates a Queued job, schedules its execution, and returns the
// job id without waiting. If the queue is saturated the job is moved
// straight to Failed with a scheduling error; the id is still returned
// so the caller can observe the failure by polling.
func (r *Runner) Submit(action core.ActionKind, target, question string, opts core.OptionSet) string {
	return r.submit(action, target, question, opts, nil)
}

func (r *Runner) submit(action core.ActionKind, target, question string, opts core.OptionSet, onDone func(*core.Job)) string {
	job := r.store.Create(action, target)
	t := &task{
		jobID:    job.ID,
		action:   action,
		target:   target,
		question: question,
		opts:     opts,
		onDone:   onDone,
	}

	select {
	case r.taskQueue <- t:
		r.logger.Info("queued analysis job", "job_id", job.ID, "action", action, "target", target)
	default:
		r.failToSchedule(t)
	}
	return job.ID
}

// failToSchedule marks a job that never reached a worker as Failed.
func (r *Runner) failToSchedule(t *task) {
	schedErr := core.Errf(core.ErrSchedulingFailure, "job queue is full, cannot accept new analysis job")
	r.logger.Error("failed to schedule analysis job", "job_id", t.jobID, "action", t.action, "error", schedErr.Message)

	if err := r.store.Transition(t.jobID, core.JobFailed, nil, schedErr); err != nil {
		r.logger.Error("job state update rejected", "job_id", t.jobID, "error", err)
	}
	r.notifyDone(t)
}

// RunSync calls the analysis gateway directly and returns its outcome.
// It never touches the job store; the blocking API variants use it.
func (r *Runner) RunSync(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet, deadline time.Duration) (*core.Result, error) {
	if deadline <= 0 {
		deadline = r.deadline
	}
	return r.gateway.Invoke(ctx, action, target, question, opts, deadline)
}

// process runs one task to its terminal state. Exactly one execution
// attempt per job; a failed job stays failed until the caller resubmits.
func (r *Runner) process(workerID int, t *task) {
	r.logger.Info("worker processing job",
		"worker_id", workerID,
		"job_id", t.jobID,
		"action", t.action,
		"target", t.target,
	)

	if err := r.store.Transition(t.jobID, core.JobRunning, nil, nil); err != nil {
		// An invalid transition here means another writer touched the job,
		// which the job ownership rules forbid. Surface it and bail out.
		r.logger.Error("job state update rejected", "job_id", t.jobID, "error", err)
		return
	}

	result, err := r.gateway.Invoke(context.Background(), t.action, t.target, t.question, t.opts, r.deadline)
	if err != nil {
		if terr := r.store.Transition(t.jobID, core.JobFailed, nil, core.AsError(err)); terr != nil {
			r.logger.Error("job state update rejected", "job_id", t.jobID, "error", terr)
		}
		r.logger.Error("analysis job failed", "job_id", t.jobID, "target", t.target, "error", err)
		r.notifyDone(t)
		return
	}

	if terr := r.store.Transition(t.jobID, core.JobSucceeded, result, nil); terr != nil {
		r.logger.Error("job state update rejected", "job_id", t.jobID, "error", terr)
	}
	r.notifyDone(t)
}

func (r *Runner) notifyDone(t *task) {
	if t.onDone == nil {
		return
	}
	job, err := r.store.Get(t.jobID)
	if err != nil {
		r.logger.Error("completed job vanished from store", "job_id", t.jobID, "error", err)
		return
	}
	t.onDone(job)
}

// Stop gracefully shuts down the runner, waiting for queued jobs to finish.
func (r *Runner) Stop() {
	r.logger.Info("stopping job runner and waiting for jobs to finish")
	close(r.taskQueue)
	r.wg.Wait()
	r.logger.Info("all analysis jobs have finished")
}
