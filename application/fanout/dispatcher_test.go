package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/pkg/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu    sync.Mutex
	got   []Delivery
	block chan struct{}
}

func (s *recordingSink) Deliver(ctx context.Context, d Delivery) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, d)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestNewDeliveryPayload(t *testing.T) {
	n, err := entities.NewNotification(entities.NotificationFollow, "bob", "alice", nil, time.Now())
	require.NoError(t, err)

	d, err := NewDelivery(n)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.IdentityID("alice"), d.Recipient)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(d.Payload, &msg))
	assert.Equal(t, "newNotification", msg["type"])
	assert.Equal(t, "You have a new notification", msg["message"])
	assert.Equal(t, string(n.ID), msg["notification"].(map[string]interface{})["id"])
}

func TestDispatcherDeliversAndDrainsOnStop(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, Config{Workers: 2, QueueSize: 10}, zap.NewNop(), nil)
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		assert.True(t, d.Enqueue(Delivery{Recipient: "alice"}))
	}

	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 5, sink.count())
	assert.False(t, d.Enqueue(Delivery{Recipient: "alice"}))
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	metrics := observability.NewCollector("test")
	d := NewDispatcher(sink, Config{Workers: 1, QueueSize: 1}, zap.NewNop(), metrics)

	// not started: the single queue slot fills and the next enqueue drops
	assert.True(t, d.Enqueue(Delivery{Recipient: "a"}))
	assert.False(t, d.Enqueue(Delivery{Recipient: "b"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DeliveriesDropped))

	close(sink.block)
	d.Start(context.Background())
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 1, sink.count())
}

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) Push(ctx context.Context, connectionID string, payload []byte) error {
	return m.Called(ctx, connectionID, payload).Error(0)
}

type staticSessions map[valueobjects.IdentityID][]string

func (s staticSessions) SessionsFor(id valueobjects.IdentityID) []string { return s[id] }

func TestLocalSinkPushesEverySessionAndSwallowsErrors(t *testing.T) {
	pusher := &mockPusher{}
	pusher.On("Push", mock.Anything, "c1", []byte("x")).Return(errors.New("gone"))
	pusher.On("Push", mock.Anything, "c2", []byte("x")).Return(nil)

	metrics := observability.NewCollector("test")
	sink := NewLocalSink(staticSessions{"alice": {"c1", "c2"}}, pusher, zap.NewNop(), metrics)

	err := sink.Deliver(context.Background(), Delivery{Recipient: "alice", Payload: []byte("x")})
	require.NoError(t, err)
	pusher.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PushAttempts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PushAttempts.WithLabelValues("delivered")))

	require.NoError(t, sink.Deliver(context.Background(), Delivery{Recipient: "nobody"}))
}
