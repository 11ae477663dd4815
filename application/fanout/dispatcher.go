// Package fanout moves persisted notifications to live sessions off the
// request path.
package fanout

import (
	"context"
	"encoding/json"
	"sync"

	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/pkg/observability"

	"go.uber.org/zap"
)

// PushMessage is the frame sent to a recipient's sessions
type PushMessage struct {
	Type         string                 `json:"type"`
	Message      string                 `json:"message"`
	Notification *entities.Notification `json:"notification"`
}

// Delivery is one notification addressed to every session of Recipient
type Delivery struct {
	Recipient      valueobjects.IdentityID     `json:"recipient"`
	NotificationID valueobjects.NotificationID `json:"notificationId"`
	Payload        []byte                      `json:"payload"`
}

// NewDelivery encodes the push frame for n
func NewDelivery(n *entities.Notification) (Delivery, error) {
	payload, err := json.Marshal(PushMessage{
		Type:         "newNotification",
		Message:      "You have a new notification",
		Notification: n,
	})
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{Recipient: n.Recipient, NotificationID: n.ID, Payload: payload}, nil
}

// Sink performs a delivery. Errors are logged by the dispatcher and dropped.
type Sink interface {
	Deliver(ctx context.Context, d Delivery) error
}

// Config tunes the dispatcher
type Config struct {
	Workers   int
	QueueSize int
}

// DefaultConfig returns the default dispatcher configuration
func DefaultConfig() Config {
	return Config{Workers: 4, QueueSize: 1024}
}

// Dispatcher drains a bounded queue of deliveries with a fixed worker pool.
// Enqueue never blocks; a full queue drops the delivery.
type Dispatcher struct {
	sink    Sink
	logger  *zap.Logger
	metrics *observability.Collector

	workers int
	queue   chan Delivery

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. metrics may be nil.
func NewDispatcher(sink Sink, cfg Config, logger *zap.Logger, metrics *observability.Collector) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	return &Dispatcher{
		sink:    sink,
		logger:  logger,
		metrics: metrics,
		workers: cfg.Workers,
		queue:   make(chan Delivery, cfg.QueueSize),
	}
}

// Start launches the workers. Deliveries run under ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	d.logger.Info("Starting notification dispatcher",
		zap.Int("workers", d.workers),
		zap.Int("queueSize", cap(d.queue)),
	)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Enqueue hands off a delivery and reports whether it was accepted
func (d *Dispatcher) Enqueue(del Delivery) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return false
	}

	select {
	case d.queue <- del:
		return true
	default:
		d.logger.Warn("Dispatch queue full, dropping delivery",
			zap.String("recipient", del.Recipient.String()),
			zap.String("notificationID", del.NotificationID.String()),
		)
		if d.metrics != nil {
			d.metrics.DeliveriesDropped.Inc()
		}
		return false
	}
}

// Stop closes the queue and waits for queued deliveries to drain or for ctx
// to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	for del := range d.queue {
		if err := d.sink.Deliver(ctx, del); err != nil {
			d.logger.Warn("Delivery failed",
				zap.Int("worker", id),
				zap.String("recipient", del.Recipient.String()),
				zap.Error(err),
			)
		}
	}
}
