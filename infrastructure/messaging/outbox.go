// Package messaging moves domain events from request handlers to external
// consumers.
package messaging

import (
	"context"
	"sync"
	"time"

	"socialhub/application/ports"
	"socialhub/domain/events"

	"go.uber.org/zap"
)

// OutboxConfig tunes batching and retry
type OutboxConfig struct {
	BufferSize         int
	BatchSize          int
	ProcessingInterval time.Duration
	MaxRetries         int
	RetryDelay         time.Duration
}

// DefaultOutboxConfig returns the production settings
func DefaultOutboxConfig() OutboxConfig {
	return OutboxConfig{
		BufferSize:         4096,
		BatchSize:          50,
		ProcessingInterval: time.Second,
		MaxRetries:         3,
		RetryDelay:         200 * time.Millisecond,
	}
}

// Outbox is an asynchronous ports.EventPublisher. Publish only queues the
// event; a background loop forwards queued events to the downstream
// publisher in batches, retrying failed batches.
type Outbox struct {
	downstream ports.EventPublisher
	cfg        OutboxConfig
	logger     *zap.Logger

	queue    chan events.DomainEvent
	stopChan chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewOutbox creates an outbox in front of downstream
func NewOutbox(downstream ports.EventPublisher, cfg OutboxConfig, logger *zap.Logger) *Outbox {
	return &Outbox{
		downstream: downstream,
		cfg:        cfg,
		logger:     logger,
		queue:      make(chan events.DomainEvent, cfg.BufferSize),
		stopChan:   make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Publish queues event. A full buffer drops the event with a warning.
func (o *Outbox) Publish(_ context.Context, event events.DomainEvent) error {
	select {
	case o.queue <- event:
	default:
		o.logger.Warn("Outbox full, dropping event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
		)
	}
	return nil
}

// PublishBatch queues every event
func (o *Outbox) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		_ = o.Publish(ctx, event)
	}
	return nil
}

// Start begins the background processing loop
func (o *Outbox) Start() {
	o.logger.Info("Starting event outbox",
		zap.Int("batchSize", o.cfg.BatchSize),
		zap.Duration("interval", o.cfg.ProcessingInterval),
	)
	go o.processLoop()
}

// Stop flushes whatever is queued and stops the loop. ctx bounds the final
// flush.
func (o *Outbox) Stop(ctx context.Context) error {
	o.stopOnce.Do(func() { close(o.stopChan) })

	select {
	case <-o.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Outbox) processLoop() {
	defer close(o.stopped)

	ticker := time.NewTicker(o.cfg.ProcessingInterval)
	defer ticker.Stop()

	batch := make([]events.DomainEvent, 0, o.cfg.BatchSize)
	for {
		select {
		case event := <-o.queue:
			batch = append(batch, event)
			if len(batch) >= o.cfg.BatchSize {
				o.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				o.processBatch(batch)
				batch = batch[:0]
			}
		case <-o.stopChan:
			for {
				select {
				case event := <-o.queue:
					batch = append(batch, event)
				default:
					if len(batch) > 0 {
						o.processBatch(batch)
					}
					o.logger.Info("Event outbox stopped")
					return
				}
			}
		}
	}
}

// processBatch forwards one batch, retrying up to MaxRetries times
func (o *Outbox) processBatch(batch []events.DomainEvent) {
	ctx := context.Background()

	var err error
	for attempt := 1; attempt <= o.cfg.MaxRetries; attempt++ {
		if err = o.downstream.PublishBatch(ctx, batch); err == nil {
			o.logger.Debug("Published outbox batch", zap.Int("eventCount", len(batch)))
			return
		}

		o.logger.Debug("Outbox batch failed, will retry",
			zap.Int("attempt", attempt),
			zap.Int("eventCount", len(batch)),
			zap.Error(err),
		)
		if attempt < o.cfg.MaxRetries {
			time.Sleep(o.cfg.RetryDelay * time.Duration(attempt))
		}
	}

	o.logger.Error("Outbox batch permanently failed after max retries",
		zap.Int("attempts", o.cfg.MaxRetries),
		zap.Int("eventCount", len(batch)),
		zap.Error(err),
	)
}

// LogPublisher writes events to the log. It stands in for EventBridge when
// no event bus is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a log-only publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Debug("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

func (p *LogPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		_ = p.Publish(ctx, event)
	}
	return nil
}
