package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/dispatch"
	"github.com/sevigo/pr-warden/internal/gateway"
	"github.com/sevigo/pr-warden/internal/jobs"
	"github.com/sevigo/pr-warden/internal/jobstore"
	"github.com/sevigo/pr-warden/internal/registry"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, action core.ActionKind, target, question string, opts core.OptionSet) (*core.Result, error) {
	return &core.Result{Action: action, Target: target, Summary: "stub analysis"}, nil
}

type stubLister struct{ prs []string }

func (s stubLister) ListOpenPRs(ctx context.Context, repoRef string, maxItems int) ([]string, error) {
	if maxItems < len(s.prs) {
		return s.prs[:maxItems], nil
	}
	return s.prs, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0"},
		Jobs: config.JobsConfig{
			MaxWorkers:       2,
			QueueSize:        20,
			AnalysisDeadline: time.Second,
		},
		Batch: config.BatchConfig{DefaultItems: 2, MaxItems: 5, Retention: time.Hour},
		AI:    config.AIConfig{LLMProvider: "ollama", Model: "gemma3:latest"},
	}

	store := jobstore.New(logger)
	gw := gateway.New(stubAnalyzer{}, logger)
	runner := jobs.NewRunner(gw, store, cfg.Jobs.MaxWorkers, cfg.Jobs.QueueSize, cfg.Jobs.AnalysisDeadline, logger)
	t.Cleanup(runner.Stop)
	batches := jobs.NewOrchestrator(stubLister{prs: []string{
		"github.com/octo/repo/1",
		"github.com/octo/repo/2",
	}}, runner, cfg.Batch.Retention, logger)

	d := dispatch.New(registry.New(), runner, batches, store, nil,
		cfg.Jobs.AnalysisDeadline, cfg.Batch.DefaultItems, cfg.Batch.MaxItems, logger)

	srv := httptest.NewServer(NewRouter(cfg, d, logger))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK", string(body))
}

func TestSyncReviewEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/v1/review", map[string]any{
		"pr_url": "https://github.com/octo/repo/pull/42",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	result, ok := body["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "stub analysis", result["summary"])
	assert.Equal(t, "github.com/octo/repo/42", result["target"])
}

func TestAskEndpointRequiresQuestion(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/v1/ask", map[string]any{
		"pr_reference": "github.com/octo/repo/42",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "validation", errObj["kind"])
}

func TestInvalidJSONBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/review", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAsyncReviewLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/v1/review/async", map[string]any{
		"pr_reference": "github.com/octo/repo/42",
	})

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "queued", body["status"])
	jobID, ok := body["job_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/api/v1/jobs/" + jobID)
		if err != nil || resp.StatusCode != http.StatusOK {
			return false
		}
		var job map[string]any
		defer resp.Body.Close()
		if json.NewDecoder(resp.Body).Decode(&job) != nil {
			return false
		}
		return job["state"] == "succeeded"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetJobUnknownID(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/api/v1/jobs/no-such-job")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "not_found", errObj["kind"])
}

func TestBatchEndpointLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/v1/batch", map[string]any{
		"repo_url": "https://github.com/octo/repo",
		"action":   "review",
	})

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	batchID, ok := body["batch_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, batchID)

	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/api/v1/batch/" + batchID)
		if err != nil || resp.StatusCode != http.StatusOK {
			return false
		}
		var batch map[string]any
		defer resp.Body.Close()
		if json.NewDecoder(resp.Body).Decode(&batch) != nil {
			return false
		}
		return batch["succeeded_count"] == float64(2)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCapabilitiesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/api/v1/capabilities")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	caps, ok := body["capabilities"].([]any)
	require.True(t, ok)
	assert.Len(t, caps, 6)
}

func TestConfigEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/api/v1/config")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ollama", body["llm_provider"])
	assert.NotContains(t, body, "gemini_api_key")
}
