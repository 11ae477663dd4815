//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"socialhub/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideTracer,
	ProvideDynamicConfig,
	ProvideWatcher,
	ProvideAWSConfig,
	ProvideStorage,
	ProvideRedisClient,
	ProvideOutbox,
	ProvideEventPublisher,
	ProvideCache,
	ProvideRateLimiter,
	ProvideJWTValidator,
	ProvideErrorHandler,
	ProvideRegistry,
	ProvideHub,
	ProvideLocalSink,
	ProvideDispatcher,
	ProvideRelaySubscriber,
	ProvideServices,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideWebSocketServer,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
