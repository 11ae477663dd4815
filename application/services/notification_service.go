package services

import (
	"context"
	"encoding/json"
	"time"

	"socialhub/application/fanout"
	"socialhub/application/ports"
	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/domain/events"
	apperrors "socialhub/pkg/errors"
	"socialhub/pkg/observability"
	"socialhub/pkg/utils"

	"go.uber.org/zap"
)

const identityCacheTTL = 5 * time.Minute

// Trigger is the event that causes a notification
type Trigger struct {
	Type          entities.NotificationType
	Sender        valueobjects.IdentityID
	Recipient     valueobjects.IdentityID
	SubjectPostID *valueobjects.PostID
}

// Notifier accepts triggers from the write path
type Notifier interface {
	Emit(ctx context.Context, trigger Trigger) (*entities.Notification, error)
}

// DeliveryQueue accepts deliveries without blocking
type DeliveryQueue interface {
	Enqueue(d fanout.Delivery) bool
}

// NotificationService persists notifications exactly once per trigger and
// hands each one to the delivery queue.
type NotificationService struct {
	notifications ports.NotificationRepository
	identities    ports.IdentityStore
	posts         ports.PostRepository
	queue         DeliveryQueue
	publisher     ports.EventPublisher
	cache         ports.Cache
	clock         utils.Clock
	logger        *zap.Logger
	metrics       *observability.Collector
}

// NewNotificationService creates the service. publisher, cache and metrics
// may be nil.
func NewNotificationService(
	notifications ports.NotificationRepository,
	identities ports.IdentityStore,
	posts ports.PostRepository,
	queue DeliveryQueue,
	publisher ports.EventPublisher,
	cache ports.Cache,
	clock utils.Clock,
	logger *zap.Logger,
	metrics *observability.Collector,
) *NotificationService {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &NotificationService{
		notifications: notifications,
		identities:    identities,
		posts:         posts,
		queue:         queue,
		publisher:     publisher,
		cache:         cache,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
	}
}

// Emit persists one notification for trigger and enqueues its delivery.
// Persistence is attempted once; delivery problems never surface here.
func (s *NotificationService) Emit(ctx context.Context, trigger Trigger) (*entities.Notification, error) {
	n, err := entities.NewNotification(trigger.Type, trigger.Sender, trigger.Recipient, trigger.SubjectPostID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, apperrors.Wrap(err, "failed to persist notification")
	}
	if s.metrics != nil {
		s.metrics.NotificationsPersisted.WithLabelValues(string(n.Type)).Inc()
	}

	s.logger.Debug("Notification persisted",
		zap.String("notificationID", n.ID.String()),
		zap.String("type", string(n.Type)),
		zap.String("recipient", n.Recipient.String()),
	)

	if delivery, err := fanout.NewDelivery(n); err != nil {
		s.logger.Error("Failed to encode delivery", zap.String("notificationID", n.ID.String()), zap.Error(err))
	} else if s.queue != nil {
		s.queue.Enqueue(delivery)
	}

	publish(ctx, s.publisher, s.logger, events.NewNotificationCreated(
		n.ID.String(), string(n.Type), n.Sender.String(), n.Recipient.String(), n.CreatedAt))

	return n, nil
}

// ListNotifications returns the recipient's notifications newest first,
// joined with sender and subject post summaries. A subject post that no
// longer exists is omitted from its notification.
func (s *NotificationService) ListNotifications(ctx context.Context, recipient valueobjects.IdentityID) ([]NotificationView, error) {
	records, err := s.notifications.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list notifications")
	}

	senders := s.senderSummaries(ctx, records)
	posts := make(map[valueobjects.PostID]*PostSummary)

	views := make([]NotificationView, 0, len(records))
	for _, n := range records {
		view := NotificationView{
			ID:        n.ID,
			Type:      n.Type,
			Sender:    senders[n.Sender],
			Recipient: n.Recipient,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
		if n.SubjectPostID != nil {
			view.Post = s.postSummary(ctx, *n.SubjectPostID, posts)
		}
		views = append(views, view)
	}
	return views, nil
}

// MarkRead sets the read flag. Only the recipient may mark a notification,
// and marking twice is harmless.
func (s *NotificationService) MarkRead(ctx context.Context, id valueobjects.NotificationID, caller valueobjects.IdentityID) (*entities.Notification, error) {
	n, err := s.notifications.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Recipient != caller {
		return nil, apperrors.NewForbiddenError("only the recipient can mark this notification").
			WithCode(apperrors.CodeNotRecipient)
	}
	if n.IsRead {
		return n, nil
	}
	return s.notifications.MarkRead(ctx, id)
}

// UnreadCount returns how many of the recipient's notifications are unread
func (s *NotificationService) UnreadCount(ctx context.Context, recipient valueobjects.IdentityID) (int, error) {
	return s.notifications.CountUnread(ctx, recipient)
}

// InvalidateIdentity drops a cached sender summary
func (s *NotificationService) InvalidateIdentity(ctx context.Context, id valueobjects.IdentityID) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, identityCacheKey(id))
	}
}

func (s *NotificationService) senderSummaries(ctx context.Context, records []*entities.Notification) map[valueobjects.IdentityID]entities.IdentitySummary {
	out := make(map[valueobjects.IdentityID]entities.IdentitySummary)
	var missing []valueobjects.IdentityID

	for _, n := range records {
		if _, seen := out[n.Sender]; seen {
			continue
		}
		out[n.Sender] = entities.IdentitySummary{ID: n.Sender}
		if summary, ok := s.cachedSummary(ctx, n.Sender); ok {
			out[n.Sender] = summary
			continue
		}
		missing = append(missing, n.Sender)
	}
	if len(missing) == 0 {
		return out
	}

	found, err := s.identities.GetIdentities(ctx, missing)
	if err != nil {
		s.logger.Warn("Failed to load notification senders", zap.Error(err))
		return out
	}
	for id, identity := range found {
		summary := identity.Summary()
		out[id] = summary
		s.cacheSummary(ctx, summary)
	}
	return out
}

func (s *NotificationService) postSummary(ctx context.Context, id valueobjects.PostID, memo map[valueobjects.PostID]*PostSummary) *PostSummary {
	if summary, ok := memo[id]; ok {
		return summary
	}
	var summary *PostSummary
	post, err := s.posts.Get(ctx, id)
	switch {
	case err == nil:
		summary = &PostSummary{ID: post.ID(), Title: post.Title(), Content: post.Content()}
	case !apperrors.IsNotFound(err):
		s.logger.Warn("Failed to load notification post", zap.String("postID", id.String()), zap.Error(err))
	}
	memo[id] = summary
	return summary
}

func (s *NotificationService) cachedSummary(ctx context.Context, id valueobjects.IdentityID) (entities.IdentitySummary, bool) {
	if s.cache == nil {
		return entities.IdentitySummary{}, false
	}
	raw, ok := s.cache.Get(ctx, identityCacheKey(id))
	if !ok {
		return entities.IdentitySummary{}, false
	}
	var summary entities.IdentitySummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return entities.IdentitySummary{}, false
	}
	return summary, true
}

func (s *NotificationService) cacheSummary(ctx context.Context, summary entities.IdentitySummary) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, identityCacheKey(summary.ID), raw, identityCacheTTL); err != nil {
		s.logger.Debug("Failed to cache identity summary", zap.Error(err))
	}
}

func identityCacheKey(id valueobjects.IdentityID) string {
	return "identity:summary:" + id.String()
}

// publish sends domain events to external consumers. Failures are logged;
// the state change they describe has already committed.
func publish(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, evts ...events.DomainEvent) {
	if publisher == nil || len(evts) == 0 {
		return
	}
	var err error
	if len(evts) == 1 {
		err = publisher.Publish(ctx, evts[0])
	} else {
		err = publisher.PublishBatch(ctx, evts)
	}
	if err != nil {
		logger.Warn("Failed to publish domain events", zap.Int("count", len(evts)), zap.Error(err))
	}
}
