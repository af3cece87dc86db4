// Package app orchestrates the main components of the PR-Warden service:
// the HTTP server, the analysis worker pool, and the job sweeper.
package app

import (
	"context"
	"log/slog"

	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/jobs"
	"github.com/sevigo/pr-warden/internal/jobstore"
	"github.com/sevigo/pr-warden/internal/server"
)

// App holds the main application components.
type App struct {
	cfg     *config.Config
	server  *server.Server
	runner  *jobs.Runner
	sweeper *jobstore.Sweeper
	logger  *slog.Logger
}

// NewApp assembles the application from its already-wired components.
func NewApp(cfg *config.Config, srv *server.Server, runner *jobs.Runner, sweeper *jobstore.Sweeper, logger *slog.Logger) *App {
	return &App{
		cfg:     cfg,
		server:  srv,
		runner:  runner,
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start launches the sweeper and runs the HTTP server until shutdown.
func (a *App) Start(ctx context.Context) error {
	a.logger.Info("starting PR-Warden",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Jobs.MaxWorkers,
		"llm_provider", a.cfg.AI.LLMProvider,
	)

	a.sweeper.Start(ctx)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly: the HTTP server first so no
// new work arrives, then the worker pool, then the sweeper.
func (a *App) Stop() error {
	a.logger.Info("shutting down PR-Warden services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	a.runner.Stop()
	a.sweeper.Stop()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("PR-Warden stopped successfully")
	return nil
}
