//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"CosmicClock/pkg/config"
	"CosmicClock/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvidePostgresPool,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvidePatternArchive,
		ProvidePatternPublisher,

		// Domain services and use cases
		ProvideDetector,
		ProvidePredictor,
		ProvideForecastService,
		ProvidePatternHistory,
		ProvidePatternProcessor,
		ProvidePipeline,
		ProvideHub,
		ProvideClockSampler,
		ProvideKafkaConsumer,

		// Transport
		ProvidePatternsHandler,
		ProvideHTTPServer,

		// Application server
		ProvideResources,
		ProvideApp,
	)
	return &server.App{}, nil
}
