package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/dispatch"
	"github.com/sevigo/pr-warden/internal/server/handler"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(cfg *config.Config, dispatcher *dispatch.Dispatcher, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		h := handler.NewActionHandler(dispatcher, cfg, logger)

		// Synchronous calls block for the analysis; give them a generous
		// transport timeout on top of the gateway deadline.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.Jobs.AnalysisDeadline + 30*time.Second))
			r.Post("/review", h.Action(core.ActionReview, false))
			r.Post("/describe", h.Action(core.ActionDescribe, false))
			r.Post("/improve", h.Action(core.ActionImprove, false))
			r.Post("/issues", h.Action(core.ActionDetectIssues, false))
			r.Post("/ask", h.Action(core.ActionAsk, false))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Post("/review/async", h.Action(core.ActionReview, true))
			r.Post("/describe/async", h.Action(core.ActionDescribe, true))
			r.Post("/improve/async", h.Action(core.ActionImprove, true))
			r.Post("/batch", h.Action(core.ActionBatch, true))

			r.Get("/jobs/{jobID}", h.GetJob)
			r.Get("/batch/{batchID}", h.GetBatch)
			r.Get("/capabilities", h.Capabilities)
			r.Get("/config", h.Config)
		})
	})

	return r
}
