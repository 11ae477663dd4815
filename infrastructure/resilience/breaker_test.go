package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBreaker_TripsAfterFailures(t *testing.T) {
	cfg := DefaultBreakerConfig("test")
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.5
	cfg.Timeout = time.Minute
	b := NewBreaker(cfg, zap.NewNop())

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(context.Background(), func(context.Context) error { return boom }), boom)
	}

	called := false
	err := b.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
	assert.Equal(t, "open", b.State())
}

func TestBreaker_CancellationIsNotAFailure(t *testing.T) {
	cfg := DefaultBreakerConfig("test")
	cfg.MinRequests = 1
	b := NewBreaker(cfg, zap.NewNop())

	for i := 0; i < 5; i++ {
		_ = b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	}
	assert.Equal(t, "closed", b.State())
}
