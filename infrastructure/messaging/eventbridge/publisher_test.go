package eventbridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialhub/domain/events"
	"socialhub/infrastructure/resilience"
	apperrors "socialhub/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

func followEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewFollowCreated("alice", "bob", time.Now())
	}
	return out
}

func TestPublisher_ChunksBatches(t *testing.T) {
	api := &mockAPI{}
	api.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) == 10
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()
	api.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) == 3 && aws.ToString(in.Entries[0].DetailType) == events.TypeFollowCreated
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	p := NewPublisher(api, "bus", "socialhub", nil, zap.NewNop())
	require.NoError(t, p.PublishBatch(context.Background(), followEvents(13)))
	api.AssertExpectations(t)
}

func TestPublisher_ReportsFailedEntries(t *testing.T) {
	api := &mockAPI{}
	api.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
	}, nil)

	p := NewPublisher(api, "bus", "socialhub", nil, zap.NewNop())
	assert.Error(t, p.Publish(context.Background(), followEvents(1)[0]))
}

func TestPublisher_BreakerOpensOnRepeatedFailure(t *testing.T) {
	api := &mockAPI{}
	api.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("network down")).Times(5)

	breaker := resilience.NewBreaker(resilience.DefaultBreakerConfig("eventbridge"), zap.NewNop())
	p := NewPublisher(api, "bus", "socialhub", breaker, zap.NewNop())

	for i := 0; i < 5; i++ {
		require.Error(t, p.Publish(context.Background(), followEvents(1)[0]))
	}
	err := p.Publish(context.Background(), followEvents(1)[0])
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
	api.AssertExpectations(t)
}
