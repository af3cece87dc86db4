package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/gateway"
	"github.com/sevigo/pr-warden/internal/jobstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// analyzerFunc adapts a plain function to the Analyzer contract.
type analyzerFunc func(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error)

func (f analyzerFunc) Analyze(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error) {
	return f(ctx, action, target, question, opts)
}

func newTestRunner(t *testing.T, analyzer core.Analyzer, maxWorkers, queueSize int) (*Runner, *jobstore.Store) {
	t.Helper()
	store := jobstore.New(testLogger())
	gw := gateway.New(analyzer, testLogger())
	runner := NewRunner(gw, store, maxWorkers, queueSize, time.Second, testLogger())
	return runner, store
}

func waitForTerminal(t *testing.T, store *jobstore.Store, jobID string) *core.Job {
	t.Helper()
	var job *core.Job
	require.Eventually(t, func() bool {
		got, err := store.Get(jobID)
		if err != nil {
			return false
		}
		job = got
		return job.State.IsTerminal()
	}, 2*time.Second, 5*time.Millisecond, "job %s never reached a terminal state", jobID)
	return job
}

func TestSubmitRunsJobToSuccess(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error) {
		return &core.Result{Action: action, Target: target, Summary: "all good"}, nil
	})
	runner, store := newTestRunner(t, analyzer, 2, 10)
	defer runner.Stop()

	jobID := runner.Submit(core.ActionReview, "github.com/octo/repo/1", "", core.OptionSet{})
	require.NotEmpty(t, jobID)

	job := waitForTerminal(t, store, jobID)
	assert.Equal(t, core.JobSucceeded, job.State)
	require.NotNil(t, job.Result)
	assert.Equal(t, "all good", job.Result.Summary)
	assert.Nil(t, job.Err)
}

func TestSubmitRunsJobToFailure(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error) {
		return nil, core.Errf(core.ErrUnauthorized, "bad credentials")
	})
	runner, store := newTestRunner(t, analyzer, 1, 10)
	defer runner.Stop()

	jobID := runner.Submit(core.ActionDescribe, "github.com/octo/repo/2", "", core.OptionSet{})

	job := waitForTerminal(t, store, jobID)
	assert.Equal(t, core.JobFailed, job.State)
	assert.Nil(t, job.Result)
	require.NotNil(t, job.Err)
	assert.Equal(t, core.ErrUnauthorized, job.Err.Kind)
}

func TestSubmitSaturatedQueueFailsScheduling(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	analyzer := analyzerFunc(func(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error) {
		started <- struct{}{}
		<-release
		return &core.Result{Summary: "done"}, nil
	})
	runner, store := newTestRunner(t, analyzer, 1, 1)

	// First job occupies the only worker, second fills the only queue slot.
	first := runner.Submit(core.ActionReview, "github.com/octo/repo/3", "", core.OptionSet{})
	<-started
	second := runner.Submit(core.ActionReview, "github.com/octo/repo/4", "", core.OptionSet{})

	third := runner.Submit(core.ActionReview, "github.com/octo/repo/5", "", core.OptionSet{})
	job, err := store.Get(third)
	require.NoError(t, err)
	assert.Equal(t, core.JobFailed, job.State)
	require.NotNil(t, job.Err)
	assert.Equal(t, core.ErrSchedulingFailure, job.Err.Kind)

	close(release)
	go func() {
		for range started {
		}
	}()
	runner.Stop()
	close(started)

	for _, id := range []string{first, second} {
		job, err := store.Get(id)
		require.NoError(t, err)
		assert.Equal(t, core.JobSucceeded, job.State)
	}
}

func TestRunSyncBypassesStore(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error) {
		return &core.Result{Action: action, Summary: "direct"}, nil
	})
	runner, store := newTestRunner(t, analyzer, 1, 10)
	defer runner.Stop()

	res, err := runner.RunSync(context.Background(), core.ActionAsk, "github.com/octo/repo/6", "why?", core.OptionSet{}, time.Second)

	require.NoError(t, err)
	assert.Equal(t, "direct", res.Summary)
	assert.Equal(t, 0, store.Len(), "synchronous calls must not create job records")
}

func TestRunSyncPropagatesErrors(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error) {
		return nil, core.Errf(core.ErrInvalidTarget, "not a pull request")
	})
	runner, _ := newTestRunner(t, analyzer, 1, 10)
	defer runner.Stop()

	_, err := runner.RunSync(context.Background(), core.ActionReview, "bogus", "", core.OptionSet{}, time.Second)

	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.ErrInvalidTarget))
}

func TestStopDrainsQueuedJobs(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error) {
		time.Sleep(5 * time.Millisecond)
		return &core.Result{Summary: "slow but done"}, nil
	})
	runner, store := newTestRunner(t, analyzer, 1, 10)

	var ids []string
	for range 4 {
		ids = append(ids, runner.Submit(core.ActionReview, "github.com/octo/repo/7", "", core.OptionSet{}))
	}
	runner.Stop()

	for _, id := range ids {
		job, err := store.Get(id)
		require.NoError(t, err)
		assert.Equal(t, core.JobSucceeded, job.State)
	}
}
