package redis

import (
	"context"
	"fmt"

	"socialhub/infrastructure/config"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// NewClient connects to the configured Redis with tracing instrumentation
// and verifies the connection
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := redisotel.InstrumentTracing(rdb,
		redisotel.WithAttributes(attribute.String("db.system", "redis")),
	)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("instrument redis tracing: %w", err)
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
