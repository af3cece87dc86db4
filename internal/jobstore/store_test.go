package jobstore

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/pr-warden/internal/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreate(t *testing.T) {
	store := New(testLogger())

	job := store.Create(core.ActionReview, "github.com/octo/repo/1")

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, core.JobQueued, job.State)
	assert.Equal(t, core.ActionReview, job.Action)
	assert.Equal(t, "github.com/octo/repo/1", job.Target)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Equal(t, 1, store.Len())
}

func TestCreateConcurrentIDsAreUnique(t *testing.T) {
	store := New(testLogger())

	const n = 64
	ids := make(chan string, n)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- store.Create(core.ActionDescribe, "github.com/octo/repo/2").ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate job id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, store.Len())
}

func TestTransitionLifecycle(t *testing.T) {
	store := New(testLogger())
	job := store.Create(core.ActionReview, "github.com/octo/repo/3")

	require.NoError(t, store.Transition(job.ID, core.JobRunning, nil, nil))

	result := &core.Result{Action: core.ActionReview, Summary: "fine"}
	require.NoError(t, store.Transition(job.ID, core.JobSucceeded, result, nil))

	got, err := store.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.JobSucceeded, got.State)
	require.NotNil(t, got.Result)
	assert.Equal(t, "fine", got.Result.Summary)
	assert.Nil(t, got.Err)
}

func TestTransitionRejectsInvalidMoves(t *testing.T) {
	store := New(testLogger())

	tests := []struct {
		name string
		run  func(t *testing.T, id string)
		next core.JobState
	}{
		{
			name: "queued cannot jump to succeeded",
			run:  func(t *testing.T, id string) {},
			next: core.JobSucceeded,
		},
		{
			name: "succeeded admits nothing",
			run: func(t *testing.T, id string) {
				require.NoError(t, store.Transition(id, core.JobRunning, nil, nil))
				require.NoError(t, store.Transition(id, core.JobSucceeded, &core.Result{}, nil))
			},
			next: core.JobRunning,
		},
		{
			name: "failed admits nothing",
			run: func(t *testing.T, id string) {
				require.NoError(t, store.Transition(id, core.JobRunning, nil, nil))
				require.NoError(t, store.Transition(id, core.JobFailed, nil, core.Errf(core.ErrTimeout, "slow")))
			},
			next: core.JobSucceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := store.Create(core.ActionImprove, "github.com/octo/repo/4")
			tt.run(t, job.ID)

			err := store.Transition(job.ID, tt.next, nil, nil)
			require.Error(t, err)
			assert.True(t, core.IsKind(err, core.ErrInvalidTransition))
		})
	}
}

func TestTransitionUnknownJob(t *testing.T) {
	store := New(testLogger())

	err := store.Transition("no-such-id", core.JobRunning, nil, nil)
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.ErrNotFound))
}

func TestGetReturnsCopy(t *testing.T) {
	store := New(testLogger())
	job := store.Create(core.ActionReview, "github.com/octo/repo/5")

	got, err := store.Get(job.ID)
	require.NoError(t, err)
	got.State = core.JobFailed

	again, err := store.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.JobQueued, again.State)
}

func TestGetUnknownJob(t *testing.T) {
	store := New(testLogger())

	_, err := store.Get("missing")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.ErrNotFound))
}

func TestSweep(t *testing.T) {
	store := New(testLogger())

	oldDone := store.Create(core.ActionReview, "github.com/octo/repo/6")
	require.NoError(t, store.Transition(oldDone.ID, core.JobRunning, nil, nil))
	require.NoError(t, store.Transition(oldDone.ID, core.JobSucceeded, &core.Result{}, nil))

	live := store.Create(core.ActionReview, "github.com/octo/repo/7")
	require.NoError(t, store.Transition(live.ID, core.JobRunning, nil, nil))

	queued := store.Create(core.ActionReview, "github.com/octo/repo/8")

	// Backdate the terminal job past the ttl.
	store.mu.Lock()
	store.jobs[oldDone.ID].UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
	store.mu.Unlock()

	removed := store.Sweep(time.Hour)

	require.Len(t, removed, 1)
	assert.Equal(t, oldDone.ID, removed[0].ID)
	assert.Equal(t, 2, store.Len())

	_, err := store.Get(oldDone.ID)
	assert.True(t, core.IsKind(err, core.ErrNotFound))
	_, err = store.Get(live.ID)
	assert.NoError(t, err)
	_, err = store.Get(queued.ID)
	assert.NoError(t, err)
}

func TestSweepKeepsRecentTerminalJobs(t *testing.T) {
	store := New(testLogger())

	job := store.Create(core.ActionReview, "github.com/octo/repo/9")
	require.NoError(t, store.Transition(job.ID, core.JobRunning, nil, nil))
	require.NoError(t, store.Transition(job.ID, core.JobFailed, nil, core.Errf(core.ErrTimeout, "slow")))

	removed := store.Sweep(time.Hour)

	assert.Empty(t, removed)
	assert.Equal(t, 1, store.Len())
}
