//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/sevigo/pr-warden/internal/app"
	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/db"
	"github.com/sevigo/pr-warden/internal/engine"
	"github.com/sevigo/pr-warden/internal/gateway"
	"github.com/sevigo/pr-warden/internal/jobstore"
	"github.com/sevigo/pr-warden/internal/registry"
	"github.com/sevigo/pr-warden/internal/server"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		server.NewServer,
		config.LoadConfig,
		db.NewDatabase,
		engine.NewPromptManager,
		gateway.New,
		jobstore.New,
		registry.New,
		provideAnalyzer,
		provideDBConfig,
		provideDispatcher,
		provideGeneratorLLM,
		provideGitHubClient,
		provideHistoryStore,
		provideLogWriter,
		provideLoggerConfig,
		provideOrchestrator,
		providePRLister,
		provideRunner,
		provideSlogLogger,
		provideSweeper,
	)
	return &app.App{}, nil, nil
}
