//go:build wireinject
// +build wireinject

package di

import (
	"FundLens/pkg/config"
	"FundLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCacheManager,
		ProvideHistoryStore,
		ProvideEventPublisher,

		// External services
		ProvideSnapshotProvider,
		ProvideNarrativeGenerator,

		// Use cases and transport
		ProvideAnalyzeUseCase,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
