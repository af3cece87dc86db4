// Package handler provides the HTTP handlers for the PR-Warden API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/dispatch"
)

const maxBodyBytes = 1 << 20 // 1 MB

// ActionHandler serves the action endpoints by delegating to the
// dispatcher. It holds no state of its own.
type ActionHandler struct {
	dispatcher *dispatch.Dispatcher
	cfg        *config.Config
	logger     *slog.Logger
}

// NewActionHandler creates the handler.
func NewActionHandler(dispatcher *dispatch.Dispatcher, cfg *config.Config, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{dispatcher: dispatcher, cfg: cfg, logger: logger}
}

// requestBody is the JSON shape shared by every action endpoint. The
// pr_url/repo_url/max_prs aliases keep compatibility with older clients.
type requestBody struct {
	PRReference       string   `json:"pr_reference"`
	PRURL             string   `json:"pr_url"`
	RepoReference     string   `json:"repo_reference"`
	RepoURL           string   `json:"repo_url"`
	Action            string   `json:"action"`
	MaxItems          *int     `json:"max_items"`
	MaxPRs            *int     `json:"max_prs"`
	Question          string   `json:"question"`
	ExtraInstructions string   `json:"extra_instructions"`
	Severity          string   `json:"severity"`
	Temperature       *float64 `json:"ai_temperature"`
}

// toRequest folds the body into the dispatcher's request shape for the
// given action.
func (b *requestBody) toRequest(action core.ActionKind) *core.ActionRequest {
	req := &core.ActionRequest{
		Action:        action,
		PRReference:   b.PRReference,
		RepoReference: b.RepoReference,
		MaxItems:      b.MaxItems,
		Question:      b.Question,
		BatchAction:   core.ActionKind(b.Action),
		Options: core.OptionSet{
			ExtraInstructions: b.ExtraInstructions,
			Severity:          b.Severity,
			Temperature:       b.Temperature,
		},
	}
	if req.PRReference == "" {
		req.PRReference = b.PRURL
	}
	if req.RepoReference == "" {
		req.RepoReference = b.RepoURL
	}
	if req.MaxItems == nil {
		req.MaxItems = b.MaxPRs
	}
	return req
}

// Action returns a handler running the named action, synchronously or as
// a background job.
func (h *ActionHandler) Action(action core.ActionKind, async bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := h.decode(w, r)
		if !ok {
			return
		}

		outcome, err := h.dispatcher.Handle(r.Context(), body.toRequest(action), async)
		if err != nil {
			h.writeError(w, err)
			return
		}

		status := http.StatusOK
		if outcome.Status == dispatch.StatusQueued {
			status = http.StatusAccepted
		}
		h.writeJSON(w, status, outcome)
	}
}

// GetJob serves job status polls.
func (h *ActionHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.dispatcher.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, job)
}

// GetBatch serves batch status polls.
func (h *ActionHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.dispatcher.GetBatch(chi.URLParam(r, "batchID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, batch)
}

// Capabilities lists the supported actions.
func (h *ActionHandler) Capabilities(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"capabilities": h.dispatcher.Capabilities(),
	})
}

// Config exposes the non-secret runtime settings.
func (h *ActionHandler) Config(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"llm_provider":        h.cfg.AI.LLMProvider,
		"model":               h.cfg.AI.Model,
		"max_workers":         h.cfg.Jobs.MaxWorkers,
		"analysis_deadline":   h.cfg.Jobs.AnalysisDeadline.String(),
		"batch_default_items": h.cfg.Batch.DefaultItems,
		"batch_max_items":     h.cfg.Batch.MaxItems,
	})
}

func (h *ActionHandler) decode(w http.ResponseWriter, r *http.Request) (*requestBody, bool) {
	var body requestBody
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		h.writeError(w, core.Errf(core.ErrValidation, "invalid JSON body: %v", err))
		return nil, false
	}
	return &body, true
}

func (h *ActionHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *ActionHandler) writeError(w http.ResponseWriter, err error) {
	var ce *core.Error
	if !errors.As(err, &ce) {
		ce = core.AsError(err)
	}
	h.writeJSON(w, httpStatus(ce.Kind), map[string]any{"error": ce})
}

// httpStatus maps the service error taxonomy onto HTTP status codes.
func httpStatus(kind core.ErrKind) int {
	switch kind {
	case core.ErrValidation:
		return http.StatusBadRequest
	case core.ErrNotFound:
		return http.StatusNotFound
	case core.ErrUnauthorized:
		return http.StatusUnauthorized
	case core.ErrRateLimited:
		return http.StatusTooManyRequests
	case core.ErrTimeout:
		return http.StatusGatewayTimeout
	case core.ErrInvalidTarget:
		return http.StatusUnprocessableEntity
	case core.ErrSchedulingFailure:
		return http.StatusServiceUnavailable
	case core.ErrUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
