package bus

import (
	"context"
	"errors"
	"testing"

	"socialhub/pkg/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingCommand struct {
	Name string
}

func (c pingCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

func echo() CommandHandlerFunc {
	return func(_ context.Context, cmd Command) (interface{}, error) {
		return "pong " + cmd.(pingCommand).Name, nil
	}
}

func TestCommandBus_Send(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, echo()))

	result, err := b.Send(context.Background(), pingCommand{Name: "ada"})
	require.NoError(t, err)
	assert.Equal(t, "pong ada", result)
}

func TestCommandBus_ValidationFailsBeforeHandler(t *testing.T) {
	called := false
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		called = true
		return nil, nil
	})))

	_, err := b.Send(context.Background(), pingCommand{})
	require.Error(t, err)
	assert.False(t, called)
}

func TestCommandBus_UnknownCommand(t *testing.T) {
	b := NewCommandBus()
	_, err := b.Send(context.Background(), otherCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCommandBus_DuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, echo()))
	assert.Error(t, b.Register(pingCommand{}, echo()))
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	b := NewCommandBus(tag("outer"), tag("inner"), LoggingMiddleware(zap.NewNop()))
	require.NoError(t, b.Register(pingCommand{}, echo()))

	_, err := b.Send(context.Background(), pingCommand{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestCommandBus_MetricsMiddleware(t *testing.T) {
	metrics := observability.NewCollector("bus_test")
	failure := errors.New("boom")

	b := NewCommandBus(MetricsMiddleware(metrics))
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		return nil, failure
	})))

	_, err := b.Send(context.Background(), pingCommand{Name: "x"})
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.DispatchDuration))
}
