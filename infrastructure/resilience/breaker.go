// Package resilience guards calls to remote dependencies.
package resilience

import (
	"context"
	"errors"
	"time"

	apperrors "socialhub/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for a circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration

	// The breaker trips once MinRequests have been seen in an interval and
	// the failure ratio reaches FailureThreshold
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the configuration used for remote publishers
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Breaker wraps a gobreaker circuit breaker around context-aware calls
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker that logs its state transitions
func NewBreaker(cfg BreakerConfig, logger *zap.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about the dependency's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Breaker{name: cfg.Name, cb: cb}
}

// Execute runs fn unless the breaker is open. Rejections surface as an
// Unavailable AppError.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.NewUnavailableError(b.name).WithCause(err)
	}
	return err
}

// State reports the breaker state for health checks
func (b *Breaker) State() string {
	return b.cb.State().String()
}
