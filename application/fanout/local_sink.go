package fanout

import (
	"context"

	"socialhub/application/ports"
	"socialhub/pkg/observability"

	"go.uber.org/zap"
)

// LocalSink pushes a delivery to every session of the recipient that is
// connected to this process. Push errors are counted and logged, never
// returned.
type LocalSink struct {
	sessions ports.SessionDirectory
	pusher   ports.Pusher
	logger   *zap.Logger
	metrics  *observability.Collector
}

// NewLocalSink creates a sink over a session directory and pusher
func NewLocalSink(sessions ports.SessionDirectory, pusher ports.Pusher, logger *zap.Logger, metrics *observability.Collector) *LocalSink {
	return &LocalSink{sessions: sessions, pusher: pusher, logger: logger, metrics: metrics}
}

// Deliver implements Sink
func (s *LocalSink) Deliver(ctx context.Context, d Delivery) error {
	for _, connID := range s.sessions.SessionsFor(d.Recipient) {
		outcome := "delivered"
		if err := s.pusher.Push(ctx, connID, d.Payload); err != nil {
			outcome = "failed"
			s.logger.Debug("Push failed",
				zap.String("connectionID", connID),
				zap.String("recipient", d.Recipient.String()),
				zap.Error(err),
			)
		}
		if s.metrics != nil {
			s.metrics.PushAttempts.WithLabelValues(outcome).Inc()
		}
	}
	return nil
}
