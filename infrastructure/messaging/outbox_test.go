package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"socialhub/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu       sync.Mutex
	failures int
	batches  [][]events.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{e})
}

func (p *recordingPublisher) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("unavailable")
	}
	p.batches = append(p.batches, append([]events.DomainEvent(nil), batch...))
	return nil
}

func (p *recordingPublisher) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.batches {
		n += len(b)
	}
	return n
}

func testConfig() OutboxConfig {
	return OutboxConfig{
		BufferSize:         16,
		BatchSize:          3,
		ProcessingInterval: 10 * time.Millisecond,
		MaxRetries:         3,
		RetryDelay:         time.Millisecond,
	}
}

func likeEvent() events.DomainEvent {
	return events.NewPostLiked("post-1", "bob", 1, time.Now())
}

func TestOutbox_ForwardsInBatches(t *testing.T) {
	downstream := &recordingPublisher{}
	o := NewOutbox(downstream, testConfig(), zap.NewNop())
	o.Start()

	for i := 0; i < 7; i++ {
		require.NoError(t, o.Publish(context.Background(), likeEvent()))
	}

	require.Eventually(t, func() bool { return downstream.total() == 7 }, time.Second, 5*time.Millisecond)
	require.NoError(t, o.Stop(context.Background()))

	for _, b := range downstream.batches {
		assert.LessOrEqual(t, len(b), 3)
	}
}

func TestOutbox_RetriesFailedBatch(t *testing.T) {
	downstream := &recordingPublisher{failures: 2}
	o := NewOutbox(downstream, testConfig(), zap.NewNop())
	o.Start()

	require.NoError(t, o.Publish(context.Background(), likeEvent()))
	require.Eventually(t, func() bool { return downstream.total() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, o.Stop(context.Background()))
}

func TestOutbox_StopFlushesQueue(t *testing.T) {
	downstream := &recordingPublisher{}
	cfg := testConfig()
	cfg.ProcessingInterval = time.Hour
	cfg.BatchSize = 100
	o := NewOutbox(downstream, cfg, zap.NewNop())
	o.Start()

	require.NoError(t, o.PublishBatch(context.Background(), []events.DomainEvent{likeEvent(), likeEvent()}))
	require.NoError(t, o.Stop(context.Background()))

	assert.Equal(t, 2, downstream.total())
}

func TestOutbox_FullBufferDrops(t *testing.T) {
	cfg := testConfig()
	cfg.BufferSize = 1
	o := NewOutbox(&recordingPublisher{}, cfg, zap.NewNop())

	require.NoError(t, o.Publish(context.Background(), likeEvent()))
	require.NoError(t, o.Publish(context.Background(), likeEvent()))
	assert.Len(t, o.queue, 1)
}
