// Package dispatch validates inbound action requests and routes them to
// the blocking or asynchronous execution path.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/github"
	"github.com/sevigo/pr-warden/internal/jobs"
	"github.com/sevigo/pr-warden/internal/jobstore"
	"github.com/sevigo/pr-warden/internal/registry"
	"github.com/sevigo/pr-warden/internal/storage"
)

// Outcome is the dispatcher's answer to one request: either the direct
// result of a blocking call, or a handle the client polls.
type Outcome struct {
	Status  string       `json:"status"`
	Result  *core.Result `json:"result,omitempty"`
	JobID   string       `json:"job_id,omitempty"`
	BatchID string       `json:"batch_id,omitempty"`
}

const (
	// StatusSuccess marks a completed synchronous call.
	StatusSuccess = "success"
	// StatusQueued marks an accepted asynchronous submission.
	StatusQueued = "queued"
)

// Dispatcher is the entry point of the request layer. It owns no state;
// it validates request shape, resolves the action, and delegates.
type Dispatcher struct {
	registry *registry.Registry
	runner   *jobs.Runner
	batches  *jobs.Orchestrator
	store    *jobstore.Store
	history  storage.Store

	deadline      time.Duration
	batchDefault  int
	batchMaxItems int
	logger        *slog.Logger
}

// New creates a dispatcher. deadline bounds synchronous analysis calls;
// batchDefault and batchMaxItems shape the batch item cap. history may
// be nil when no archive is configured.
func New(reg *registry.Registry, runner *jobs.Runner, batches *jobs.Orchestrator, store *jobstore.Store, history storage.Store, deadline time.Duration, batchDefault, batchMaxItems int, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry:      reg,
		runner:        runner,
		batches:       batches,
		store:         store,
		history:       history,
		deadline:      deadline,
		batchDefault:  batchDefault,
		batchMaxItems: batchMaxItems,
		logger:        logger,
	}
}

// Handle validates the request and routes it. Malformed requests fail
// fast with a validation error before any downstream component is
// touched. async selects the fire-and-forget variant for actions that
// support one; batch requests are always asynchronous.
func (d *Dispatcher) Handle(ctx context.Context, req *core.ActionRequest, async bool) (*Outcome, error) {
	action, ok := d.registry.Resolve(string(req.Action))
	if !ok {
		return nil, core.Errf(core.ErrValidation, "unknown action %q", req.Action)
	}

	if action == core.ActionBatch {
		return d.handleBatch(ctx, req)
	}

	prRef, err := github.ParsePRRef(req.PRReference)
	if err != nil {
		return nil, core.Errf(core.ErrValidation, "invalid pr_reference: %v", err)
	}
	if err := validateOptions(action, req); err != nil {
		return nil, err
	}

	if async {
		if !d.registry.SupportsAsync(action) {
			return nil, core.Errf(core.ErrValidation, "action %q has no asynchronous variant", action)
		}
		jobID := d.runner.Submit(action, prRef.String(), req.Question, req.Options)
		return &Outcome{Status: StatusQueued, JobID: jobID}, nil
	}

	result, err := d.runner.RunSync(ctx, action, prRef.String(), req.Question, req.Options, d.deadline)
	if err != nil {
		return nil, err
	}
	return &Outcome{Status: StatusSuccess, Result: result}, nil
}

// handleBatch fans a repository request out through the orchestrator.
func (d *Dispatcher) handleBatch(ctx context.Context, req *core.ActionRequest) (*Outcome, error) {
	repoRef, err := github.ParseRepoRef(req.RepoReference)
	if err != nil {
		return nil, core.Errf(core.ErrValidation, "invalid repo_reference: %v", err)
	}

	inner, ok := d.registry.Resolve(string(req.BatchAction))
	if !ok || inner == core.ActionBatch {
		return nil, core.Errf(core.ErrValidation, "batch requires a per-PR action, got %q", req.BatchAction)
	}
	if inner == core.ActionAsk {
		return nil, core.Errf(core.ErrValidation, "ask cannot be used as a batch action")
	}
	if err := validateOptions(inner, req); err != nil {
		return nil, err
	}

	maxItems := d.batchDefault
	if req.MaxItems != nil {
		maxItems = *req.MaxItems
	}
	if maxItems < 0 {
		return nil, core.Errf(core.ErrValidation, "max_items must not be negative")
	}
	if maxItems > d.batchMaxItems {
		maxItems = d.batchMaxItems
	}

	batchID, err := d.batches.RunBatch(ctx, repoRef.String(), inner, maxItems, req.Options)
	if err != nil {
		return nil, err
	}
	return &Outcome{Status: StatusQueued, BatchID: batchID}, nil
}

// validateOptions checks the per-action request fields beyond the target.
func validateOptions(action core.ActionKind, req *core.ActionRequest) error {
	if action == core.ActionAsk && req.Question == "" {
		return core.Errf(core.ErrValidation, "ask requires a non-empty question")
	}
	if sev := req.Options.Severity; sev != "" {
		switch sev {
		case core.SeverityAll, core.SeverityCritical, core.SeverityMajor, core.SeverityMinor:
		default:
			return core.Errf(core.ErrValidation, "invalid severity %q", sev)
		}
	}
	if t := req.Options.Temperature; t != nil && (*t < 0 || *t > 2) {
		return core.Errf(core.ErrValidation, "ai_temperature must be between 0 and 2")
	}
	return nil
}

// GetJob returns the job record for a client poll. Jobs already swept
// from the live registry are looked up in the history archive.
func (d *Dispatcher) GetJob(ctx context.Context, id string) (*core.Job, error) {
	job, err := d.store.Get(id)
	if err == nil {
		return job, nil
	}
	if d.history != nil && core.IsKind(err, core.ErrNotFound) {
		return d.history.GetJob(ctx, id)
	}
	return nil, err
}

// GetBatch returns the aggregate state of a batch run.
func (d *Dispatcher) GetBatch(id string) (*core.BatchResult, error) {
	return d.batches.GetBatchStatus(id)
}

// Capabilities lists the supported actions for client self-discovery.
func (d *Dispatcher) Capabilities() []registry.Capability {
	return d.registry.Capabilities()
}
