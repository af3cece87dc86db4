package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/pr-warden/internal/core"
)

// batchState tracks one in-flight batch. Each item owns a fixed result
// slot indexed by discovery order; the slot is written exactly once, by
// whichever worker finishes that item.
type batchState struct {
	mu     sync.Mutex
	result core.BatchResult
}

// complete writes the terminal outcome of item idx.
func (b *batchState) complete(idx int, job *core.Job) {
	b.mu.Lock()
	defer b.mu.Unlock()

	item := &b.result.Items[idx]
	item.State = job.State
	item.Result = job.Result
	item.Err = job.Err

	switch job.State {
	case core.JobSucceeded:
		b.result.SucceededCount++
	case core.JobFailed:
		b.result.FailedCount++
	}
}

// snapshot returns a copy of the aggregate, safe to hand to callers
// while workers are still writing sibling slots.
func (b *batchState) snapshot() *core.BatchResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := b.result
	cp.Items = make([]core.BatchItem, len(b.result.Items))
	copy(cp.Items, b.result.Items)
	return &cp
}

// Orchestrator expands one batch request into independent per-PR jobs
// submitted to the shared runner pool, and aggregates their outcomes.
// One item's failure never cancels or affects its siblings.
type Orchestrator struct {
	lister    core.PRLister
	runner    *Runner
	retention time.Duration
	logger    *slog.Logger

	mu      sync.RWMutex
	batches map[string]*batchState
}

// NewOrchestrator creates a batch orchestrator over the shared runner.
// Completed batches are kept for retention and pruned opportunistically
// on later RunBatch calls.
func NewOrchestrator(lister core.PRLister, runner *Runner, retention time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		lister:    lister,
		runner:    runner,
		retention: retention,
		logger:    logger,
		batches:   make(map[string]*batchState),
	}
}

// prune drops completed batches older than the retention window.
func (o *Orchestrator) prune() {
	cutoff := time.Now().UTC().Add(-o.retention)

	o.mu.Lock()
	defer o.mu.Unlock()
	for id, state := range o.batches {
		snap := state.snapshot()
		if snap.Done() && snap.CreatedAt.Before(cutoff) {
			delete(o.batches, id)
		}
	}
}

// RunBatch enumerates up to maxItems open PRs of the repository,
// preserving discovery order, and submits one job per PR. It returns the
// batch id as soon as every item is queued. A repository with zero
// discoverable PRs yields an empty, already-complete batch, not an error.
func (o *Orchestrator) RunBatch(ctx context.Context, repoRef string, action core.ActionKind, maxItems int, opts core.OptionSet) (string, error) {
	o.prune()

	// A zero item cap short-circuits to an empty, complete batch.
	var prs []string
	if maxItems > 0 {
		var err error
		prs, err = o.lister.ListOpenPRs(ctx, repoRef, maxItems)
		if err != nil {
			return "", core.AsError(err)
		}
	}

	state := &batchState{
		result: core.BatchResult{
			BatchID:       uuid.NewString(),
			Action:        action,
			RepoReference: repoRef,
			Total:         len(prs),
			Items:         make([]core.BatchItem, len(prs)),
			CreatedAt:     time.Now().UTC(),
		},
	}
	for i, pr := range prs {
		state.result.Items[i] = core.BatchItem{PRReference: pr, State: core.JobQueued}
	}

	o.mu.Lock()
	o.batches[state.result.BatchID] = state
	o.mu.Unlock()

	o.logger.Info("starting batch run",
		"batch_id", state.result.BatchID,
		"repo", repoRef,
		"action", action,
		"items", len(prs),
	)

	for i, pr := range prs {
		idx := i
		o.runner.submit(action, pr, "", opts, func(job *core.Job) {
			state.complete(idx, job)
		})
	}

	return state.result.BatchID, nil
}

// GetBatchStatus is a pure read of the current item states. It may be
// called while the batch is still in progress; items not yet started
// report as Queued.
func (o *Orchestrator) GetBatchStatus(batchID string) (*core.BatchResult, error) {
	o.mu.RLock()
	state, ok := o.batches[batchID]
	o.mu.RUnlock()

	if !ok {
		return nil, core.Errf(core.ErrNotFound, "batch %s not found", batchID)
	}
	return state.snapshot(), nil
}
