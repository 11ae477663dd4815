package rest

import (
	"context"
	"net/http"
	"time"

	"socialhub/application/commands/bus"
	querybus "socialhub/application/queries/bus"
	"socialhub/interfaces/http/rest/handlers"
	"socialhub/interfaces/http/rest/middleware"
	v1 "socialhub/interfaces/http/rest/v1"
	"socialhub/pkg/auth"
	"socialhub/pkg/common"
	apperrors "socialhub/pkg/errors"
	"socialhub/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// InternalRole is the token role allowed to call /api/v1/internal
const InternalRole = "identity-service"

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	AllowedOrigins []string
	EnableCORS     bool
	RateLimit      int
	RateWindow     time.Duration
	MaxPageSize    func() int
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	validator    *auth.JWTValidator
	limiter      auth.RateLimiter
	websocket    http.Handler
	metrics      *observability.Collector
	errorHandler *apperrors.ErrorHandler
	readiness    map[string]ReadinessCheck
	cfg          RouterConfig
	logger       *zap.Logger
}

// NewRouter creates a new router instance. websocket, metrics and
// readiness may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	validator *auth.JWTValidator,
	limiter auth.RateLimiter,
	websocket http.Handler,
	metrics *observability.Collector,
	errorHandler *apperrors.ErrorHandler,
	readiness map[string]ReadinessCheck,
	cfg RouterConfig,
	logger *zap.Logger,
) *Router {
	if cfg.MaxPageSize == nil {
		cfg.MaxPageSize = func() int { return common.MaxPageSize }
	}
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		validator:    validator,
		limiter:      limiter,
		websocket:    websocket,
		metrics:      metrics,
		errorHandler: errorHandler,
		readiness:    readiness,
		cfg:          cfg,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}
	if rt.websocket != nil {
		router.Handle("/ws", rt.websocket)
	}

	h := v1.Handlers{
		Social:        handlers.NewSocialHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger),
		Posts:         handlers.NewPostHandler(rt.commandBus, rt.queryBus, rt.cfg.MaxPageSize, rt.errorHandler, rt.logger),
		Feed:          handlers.NewFeedHandler(rt.queryBus, rt.cfg.MaxPageSize, rt.errorHandler, rt.logger),
		Notifications: handlers.NewNotificationHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger),
	}

	router.Route("/api/v1", v1.Routes(h,
		middleware.Authenticate(rt.validator, rt.errorHandler, rt.logger),
		middleware.RateLimit(rt.limiter, rt.cfg.RateLimit, rt.cfg.RateWindow, rt.errorHandler, rt.logger),
		middleware.RequireRole(rt.errorHandler, InternalRole),
	))

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck runs every registered dependency check
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(rt.readiness))
	status := http.StatusOK
	for name, check := range rt.readiness {
		if err := check(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	common.RespondJSON(w, status, map[string]interface{}{"status": state, "checks": checks})
}
