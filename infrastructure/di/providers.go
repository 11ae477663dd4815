package di

import (
	"context"
	"fmt"
	"time"

	"socialhub/application/commands/bus"
	cmdhandlers "socialhub/application/commands/handlers"
	"socialhub/application/fanout"
	"socialhub/application/ports"
	querybus "socialhub/application/queries/bus"
	qryhandlers "socialhub/application/queries/handlers"
	"socialhub/application/services"
	"socialhub/infrastructure/cache"
	"socialhub/infrastructure/config"
	"socialhub/infrastructure/messaging"
	"socialhub/infrastructure/messaging/eventbridge"
	redisrelay "socialhub/infrastructure/messaging/redis"
	"socialhub/infrastructure/persistence/dynamodb"
	"socialhub/infrastructure/persistence/memory"
	"socialhub/infrastructure/resilience"
	"socialhub/interfaces/http/rest"
	"socialhub/interfaces/websocket"
	"socialhub/pkg/auth"
	apperrors "socialhub/pkg/errors"
	"socialhub/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	serviceName    = "socialhub"
	devJWTSecret   = "development-secret-change-in-production"
	lockStripes    = 64
	redisKeyPrefix = "socialhub"
)

// Storage groups the repositories of the selected backend
type Storage struct {
	Identities    ports.IdentityStore
	Follows       ports.FollowRepository
	Posts         ports.PostRepository
	Notifications ports.NotificationRepository
	Locker        ports.PairLocker
	Ready         rest.ReadinessCheck
}

// Services groups the application services
type Services struct {
	Graph         *services.SocialGraphService
	Engagement    *services.EngagementService
	Feed          *services.FeedService
	Posts         *services.PostService
	Notifications *services.NotificationService
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zcfg.Build()
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(serviceName)
}

// ProvideTracer creates the OpenTelemetry tracer, or nil when tracing is off
func ProvideTracer(ctx context.Context, cfg *config.Config) (*observability.Tracer, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}
	tracer, err := observability.NewTracer(ctx, serviceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracer.Shutdown(ctx)
	}
	return tracer, cleanup, nil
}

// ProvideDynamicConfig seeds the runtime-tunable settings
func ProvideDynamicConfig(cfg *config.Config) *config.DynamicConfig {
	return config.NewDynamicConfig(cfg.Dynamic)
}

// ProvideWatcher hot-reloads the dynamic section when a config file is in use
func ProvideWatcher(cfg *config.Config, dynamic *config.DynamicConfig, logger *zap.Logger) (*config.Watcher, func(), error) {
	if cfg.File == "" || cfg.IsLambda {
		return nil, func() {}, nil
	}
	w, err := config.NewWatcher(cfg.File, dynamic, logger)
	if err != nil {
		return nil, nil, err
	}
	return w, w.Stop, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideStorage builds the repositories for cfg.Storage
func ProvideStorage(cfg *config.Config, awsCfg aws.Config, metrics *observability.Collector, logger *zap.Logger) (*Storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		identities := memory.NewIdentityStore()
		return &Storage{
			Identities:    identities,
			Follows:       memory.NewFollowRepository(),
			Posts:         memory.NewPostRepository(),
			Notifications: memory.NewNotificationRepository(),
			Locker:        memory.NewPairLocker(lockStripes),
			Ready:         func(context.Context) error { return nil },
		}, nil

	case config.StorageDynamoDB:
		table := &dynamodb.Table{
			Client:    awsdynamodb.NewFromConfig(awsCfg),
			Name:      cfg.DynamoDBTable,
			IndexName: cfg.IndexName,
			Logger:    logger,
			Metrics:   metrics,
		}
		identities := dynamodb.NewIdentityStore(table)

		var locker ports.PairLocker = memory.NewPairLocker(lockStripes)
		if cfg.Graph.DistributedLock {
			locker = dynamodb.NewPairLocker(locker, dynamodb.NewDistributedLock(table, cfg.Graph.LockTTL))
		}

		return &Storage{
			Identities:    identities,
			Follows:       dynamodb.NewFollowRepository(table),
			Posts:         dynamodb.NewPostRepository(table),
			Notifications: dynamodb.NewNotificationRepository(table),
			Locker:        locker,
			Ready: func(ctx context.Context) error {
				_, err := identities.Exists(ctx, "readiness-probe")
				return err
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}

// ProvideRedisClient connects to Redis when configured; otherwise it
// returns nil and every Redis-backed component falls back to in-process
func ProvideRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled() {
		return nil, func() {}, nil
	}
	rdb, err := redisrelay.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return rdb, func() { _ = rdb.Close() }, nil
}

// ProvideOutbox returns the async EventBridge publisher for DynamoDB
// deployments, or nil when events stay in-process
func ProvideOutbox(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) *messaging.Outbox {
	if cfg.Storage != config.StorageDynamoDB || cfg.EventBusName == "" {
		return nil
	}
	publisher := eventbridge.NewPublisher(
		awseventbridge.NewFromConfig(awsCfg),
		cfg.EventBusName,
		cfg.EventSource,
		resilience.NewBreaker(resilience.DefaultBreakerConfig("eventbridge"), logger),
		logger,
	)
	return messaging.NewOutbox(publisher, messaging.DefaultOutboxConfig(), logger)
}

// ProvideEventPublisher picks the outbox when present, else the log publisher
func ProvideEventPublisher(outbox *messaging.Outbox, logger *zap.Logger) ports.EventPublisher {
	if outbox != nil {
		return outbox
	}
	return messaging.NewLogPublisher(logger)
}

// ProvideCache returns a Redis cache when Redis is configured
func ProvideCache(rdb *redis.Client, logger *zap.Logger) (ports.Cache, func()) {
	if rdb != nil {
		return cache.NewRedisCache(rdb, redisKeyPrefix, logger), func() {}
	}
	c := cache.NewInMemoryCache()
	return c, func() { _ = c.Close() }
}

// ProvideRateLimiter shares limits through Redis when configured
func ProvideRateLimiter(cfg *config.Config, rdb *redis.Client) auth.RateLimiter {
	if rdb != nil {
		return auth.NewRedisRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	return auth.NewSlidingWindowLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
}

// ProvideJWTValidator creates the bearer token validator
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}
	return auth.NewJWTValidator(auth.JWTConfig{SecretKey: secret, Issuer: cfg.JWTIssuer})
}

// ProvideErrorHandler renders API errors; details are exposed outside production
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, !cfg.IsProduction())
}

// ProvideRegistry creates the process-wide session registry
func ProvideRegistry(metrics *observability.Collector) (*websocket.Registry, func()) {
	r := websocket.NewRegistry(metrics)
	return r, r.Close
}

// ProvideHub creates the websocket connection hub
func ProvideHub(logger *zap.Logger) (*websocket.Hub, func()) {
	h := websocket.NewHub(logger)
	return h, h.Close
}

// ProvideLocalSink pushes deliveries to sessions on this instance
func ProvideLocalSink(registry *websocket.Registry, hub *websocket.Hub, metrics *observability.Collector, logger *zap.Logger) *fanout.LocalSink {
	return fanout.NewLocalSink(registry, hub, logger, metrics)
}

// ProvideDispatcher creates the delivery worker pool. With Redis the
// workers publish to the relay channel instead of pushing locally.
func ProvideDispatcher(cfg *config.Config, rdb *redis.Client, local *fanout.LocalSink, metrics *observability.Collector, logger *zap.Logger) *fanout.Dispatcher {
	var sink fanout.Sink = local
	if rdb != nil {
		sink = redisrelay.NewRelaySink(rdb, cfg.Redis.Channel,
			resilience.NewBreaker(resilience.DefaultBreakerConfig("redis-relay"), logger), logger)
	}
	return fanout.NewDispatcher(sink, fanout.Config{
		Workers:   cfg.Fanout.Workers,
		QueueSize: cfg.Fanout.QueueSize,
	}, logger, metrics)
}

// ProvideRelaySubscriber receives relayed deliveries when Redis is configured
func ProvideRelaySubscriber(cfg *config.Config, rdb *redis.Client, local *fanout.LocalSink, logger *zap.Logger) *redisrelay.Subscriber {
	if rdb == nil {
		return nil
	}
	return redisrelay.NewSubscriber(rdb, cfg.Redis.Channel, local, logger)
}

// ProvideServices wires the application services together
func ProvideServices(
	storage *Storage,
	dispatcher *fanout.Dispatcher,
	publisher ports.EventPublisher,
	c ports.Cache,
	dynamic *config.DynamicConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Services {
	notifications := services.NewNotificationService(
		storage.Notifications, storage.Identities, storage.Posts,
		dispatcher, publisher, c, nil, logger, metrics,
	)
	graph := services.NewSocialGraphService(
		storage.Follows, storage.Identities, storage.Locker,
		notifications, publisher, nil, logger, metrics,
	)
	graph.OnIdentityRemoved(notifications.InvalidateIdentity)

	return &Services{
		Graph: graph,
		Engagement: services.NewEngagementService(
			storage.Posts, storage.Identities, notifications, publisher,
			dynamic, nil, nil, logger, metrics,
		),
		Feed:          services.NewFeedService(storage.Posts, storage.Follows, dynamic, logger),
		Posts:         services.NewPostService(storage.Posts, storage.Identities, publisher, nil, nil, nil, logger),
		Notifications: notifications,
	}
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(svc *Services, tracer *observability.Tracer, metrics *observability.Collector, logger *zap.Logger) (*bus.CommandBus, error) {
	middlewares := []bus.Middleware{bus.LoggingMiddleware(logger), bus.MetricsMiddleware(metrics)}
	if tracer != nil {
		middlewares = append(middlewares, bus.TracingMiddleware(tracer))
	}
	b := bus.NewCommandBus(middlewares...)

	err := cmdhandlers.Register(b, cmdhandlers.Services{
		Graph:         svc.Graph,
		Engagement:    svc.Engagement,
		Posts:         svc.Posts,
		Notifications: svc.Notifications,
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(svc *Services, tracer *observability.Tracer, metrics *observability.Collector) (*querybus.QueryBus, error) {
	middlewares := []querybus.Middleware{querybus.MetricsMiddleware(metrics)}
	if tracer != nil {
		middlewares = append(middlewares, querybus.TracingMiddleware(tracer))
	}
	b := querybus.NewQueryBus(middlewares...)

	err := qryhandlers.Register(b, qryhandlers.Services{
		Feed:          svc.Feed,
		Posts:         svc.Posts,
		Graph:         svc.Graph,
		Engagement:    svc.Engagement,
		Notifications: svc.Notifications,
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ProvideWebSocketServer creates the /ws upgrade handler
func ProvideWebSocketServer(
	cfg *config.Config,
	hub *websocket.Hub,
	registry *websocket.Registry,
	validator *auth.JWTValidator,
	dynamic *config.DynamicConfig,
	logger *zap.Logger,
) *websocket.Server {
	wsCfg := websocket.DefaultServerConfig()
	wsCfg.AllowedOrigins = cfg.AllowedOrigins
	wsCfg.RequireToken = cfg.WebsocketRequiresToken()
	return websocket.NewServer(hub, registry, validator, dynamic, wsCfg, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	validator *auth.JWTValidator,
	limiter auth.RateLimiter,
	ws *websocket.Server,
	metrics *observability.Collector,
	errorHandler *apperrors.ErrorHandler,
	storage *Storage,
	rdb *redis.Client,
	dynamic *config.DynamicConfig,
	logger *zap.Logger,
) *rest.Router {
	readiness := map[string]rest.ReadinessCheck{"storage": storage.Ready}
	if rdb != nil {
		readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	routerMetrics := metrics
	if !cfg.EnableMetrics {
		routerMetrics = nil
	}

	return rest.NewRouter(
		commandBus, queryBus, validator, limiter, ws, routerMetrics, errorHandler, readiness,
		rest.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			EnableCORS:     cfg.EnableCORS,
			RateLimit:      cfg.RateLimit.Requests,
			RateWindow:     cfg.RateLimit.Window,
			MaxPageSize:    dynamic.MaxPageSize,
		},
		logger,
	)
}
