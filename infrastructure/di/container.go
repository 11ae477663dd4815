package di

import (
	"context"
	"errors"

	"socialhub/application/commands/bus"
	"socialhub/application/fanout"
	"socialhub/application/ports"
	querybus "socialhub/application/queries/bus"
	"socialhub/infrastructure/config"
	"socialhub/infrastructure/messaging"
	redisrelay "socialhub/infrastructure/messaging/redis"
	"socialhub/interfaces/http/rest"
	"socialhub/interfaces/websocket"
	"socialhub/pkg/observability"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies. Redis, Outbox, Subscriber,
// Tracer and Watcher are nil when their feature is not configured.
type Container struct {
	Config     *config.Config
	Dynamic    *config.DynamicConfig
	Logger     *zap.Logger
	Metrics    *observability.Collector
	Tracer     *observability.Tracer
	Storage    *Storage
	Redis      *redis.Client
	Publisher  ports.EventPublisher
	Outbox     *messaging.Outbox
	Cache      ports.Cache
	Registry   *websocket.Registry
	Hub        *websocket.Hub
	Dispatcher *fanout.Dispatcher
	Subscriber *redisrelay.Subscriber
	Services   *Services
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	WebSocket  *websocket.Server
	Router     *rest.Router
	Watcher    *config.Watcher
}

// Start launches the background workers
func (c *Container) Start(ctx context.Context) {
	if c.Outbox != nil {
		c.Outbox.Start()
	}
	c.Dispatcher.Start(ctx)
	if c.Subscriber != nil {
		c.Subscriber.Start(ctx)
	}
}

// Shutdown drains the workers started by Start. Closing resources is left
// to the cleanup returned by InitializeContainer.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	if c.Subscriber != nil {
		c.Subscriber.Stop()
	}
	if err := c.Dispatcher.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if c.Outbox != nil {
		if err := c.Outbox.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}
