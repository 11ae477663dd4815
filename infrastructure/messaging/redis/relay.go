// Package redis relays notification deliveries between API instances over a
// Redis pub/sub channel. Every instance publishes its deliveries and every
// instance pushes the ones it receives to its own connected sessions.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"socialhub/application/fanout"
	"socialhub/infrastructure/resilience"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const receiveBackoff = time.Second

// Publisher is the part of the redis client used by RelaySink
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RelaySink implements fanout.Sink by publishing to a channel
type RelaySink struct {
	client  Publisher
	channel string
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// NewRelaySink creates a relay sink. breaker may be nil.
func NewRelaySink(client Publisher, channel string, breaker *resilience.Breaker, logger *zap.Logger) *RelaySink {
	return &RelaySink{client: client, channel: channel, breaker: breaker, logger: logger}
}

// Deliver implements fanout.Sink
func (s *RelaySink) Deliver(ctx context.Context, d fanout.Delivery) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode delivery: %w", err)
	}

	publish := func(ctx context.Context) error {
		return s.client.Publish(ctx, s.channel, raw).Err()
	}
	if s.breaker != nil {
		err = s.breaker.Execute(ctx, publish)
	} else {
		err = publish(ctx)
	}
	if err != nil {
		return fmt.Errorf("relay publish to %s: %w", s.channel, err)
	}
	return nil
}

// Subscriber receives relayed deliveries and hands them to a local sink
type Subscriber struct {
	client  redis.UniversalClient
	channel string
	local   fanout.Sink
	logger  *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSubscriber creates a subscriber for channel
func NewSubscriber(client redis.UniversalClient, channel string, local fanout.Sink, logger *zap.Logger) *Subscriber {
	return &Subscriber{client: client, channel: channel, local: local, logger: logger}
}

// Start runs the receive loop in the background until Stop or ctx ends
func (s *Subscriber) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.run(ctx)
	}()
}

// Stop ends the receive loop and waits for it to exit
func (s *Subscriber) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Subscriber) run(ctx context.Context) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	s.logger.Info("Subscribed to delivery relay", zap.String("channel", s.channel))

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("Relay receive failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(receiveBackoff):
			}
			continue
		}
		s.handle(ctx, msg.Payload)
	}
}

func (s *Subscriber) handle(ctx context.Context, payload string) {
	var d fanout.Delivery
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		s.logger.Warn("Dropping malformed relay message", zap.Error(err))
		return
	}
	if err := s.local.Deliver(ctx, d); err != nil {
		s.logger.Warn("Local delivery failed",
			zap.String("recipient", d.Recipient.String()),
			zap.Error(err),
		)
	}
}
