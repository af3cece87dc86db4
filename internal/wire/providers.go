// Package wire assembles the application object graph.
package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/db"
	"github.com/sevigo/pr-warden/internal/dispatch"
	"github.com/sevigo/pr-warden/internal/engine"
	"github.com/sevigo/pr-warden/internal/gateway"
	"github.com/sevigo/pr-warden/internal/github"
	"github.com/sevigo/pr-warden/internal/jobs"
	"github.com/sevigo/pr-warden/internal/jobstore"
	"github.com/sevigo/pr-warden/internal/logger"
	"github.com/sevigo/pr-warden/internal/registry"
	"github.com/sevigo/pr-warden/internal/storage"
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.Logging.Output {
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	case "file":
		f, _ := os.OpenFile("pr-warden.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		return f
	default:
		return os.Stdout
	}
}

func provideSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	return logger.NewLogger(loggerConfig, writer)
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

// newModelHTTPClient creates an HTTP client with generous timeouts;
// local model servers can take a while to answer.
func newModelHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: 15 * time.Minute,
	}
}

func provideGeneratorLLM(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llms.Model, error) {
	switch cfg.AI.LLMProvider {
	case "gemini":
		if cfg.AI.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return gemini.New(ctx, gemini.WithModel(cfg.AI.Model), gemini.WithAPIKey(cfg.AI.GeminiAPIKey))
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.AI.OllamaHost),
			ollama.WithHTTPClient(newModelHTTPClient()),
			ollama.WithModel(cfg.AI.Model),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.AI.LLMProvider)
	}
}

func provideGitHubClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (github.Client, error) {
	return github.NewFromConfig(ctx, cfg, logger)
}

func provideAnalyzer(model llms.Model, gh github.Client, prompts *engine.PromptManager, logger *slog.Logger) core.Analyzer {
	return engine.New(model, gh, prompts, logger)
}

func providePRLister(gh github.Client) core.PRLister {
	return gh
}

func provideHistoryStore(database *db.DB) storage.Store {
	return storage.NewStore(database.DB)
}

func provideRunner(cfg *config.Config, gw *gateway.Gateway, store *jobstore.Store, logger *slog.Logger) *jobs.Runner {
	return jobs.NewRunner(gw, store, cfg.Jobs.MaxWorkers, cfg.Jobs.QueueSize, cfg.Jobs.AnalysisDeadline, logger)
}

func provideOrchestrator(cfg *config.Config, lister core.PRLister, runner *jobs.Runner, logger *slog.Logger) *jobs.Orchestrator {
	return jobs.NewOrchestrator(lister, runner, cfg.Batch.Retention, logger)
}

func provideSweeper(cfg *config.Config, store *jobstore.Store, history storage.Store, logger *slog.Logger) *jobstore.Sweeper {
	return jobstore.NewSweeper(store, cfg.Jobs.JobTTL, cfg.Jobs.SweepInterval, history.ArchiveJobs, logger)
}

func provideDispatcher(cfg *config.Config, reg *registry.Registry, runner *jobs.Runner, batches *jobs.Orchestrator, store *jobstore.Store, history storage.Store, logger *slog.Logger) *dispatch.Dispatcher {
	return dispatch.New(reg, runner, batches, store, history,
		cfg.Jobs.AnalysisDeadline, cfg.Batch.DefaultItems, cfg.Batch.MaxItems, logger)
}
