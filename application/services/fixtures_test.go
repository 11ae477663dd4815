package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"socialhub/application/fanout"
	"socialhub/application/ports"
	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/domain/events"
	"socialhub/infrastructure/persistence/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stepClock advances by one second on every reading so creation order is
// strictly increasing.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	return m.Called(ctx, evts).Error(0)
}

type recordingQueue struct {
	mu         sync.Mutex
	deliveries []fanout.Delivery
}

func (q *recordingQueue) Enqueue(d fanout.Delivery) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deliveries = append(q.deliveries, d)
	return true
}

func (q *recordingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.deliveries)
}

type fixture struct {
	identities    *memory.IdentityStore
	follows       *memory.FollowRepository
	posts         *memory.PostRepository
	notifications *memory.NotificationRepository
	queue         *recordingQueue
	publisher     *mockPublisher
	clock         *stepClock

	notificationSvc *NotificationService
	graph           *SocialGraphService
	engagement      *EngagementService
	feed            *FeedService
	postSvc         *PostService
}

func newFixture(t *testing.T, settings ports.Settings, users ...string) *fixture {
	t.Helper()
	logger := zap.NewNop()

	f := &fixture{
		identities:    memory.NewIdentityStore(),
		follows:       memory.NewFollowRepository(),
		posts:         memory.NewPostRepository(),
		notifications: memory.NewNotificationRepository(),
		queue:         &recordingQueue{},
		publisher:     &mockPublisher{},
		clock:         newStepClock(),
	}
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil).Maybe()

	for _, u := range users {
		require.NoError(t, f.identities.SaveIdentity(context.Background(), &entities.Identity{
			ID:        valueobjects.IdentityID(u),
			Username:  u,
			FirstName: "First " + u,
			LastName:  "Last " + u,
		}))
	}

	f.notificationSvc = NewNotificationService(f.notifications, f.identities, f.posts, f.queue, f.publisher, nil, f.clock, logger, nil)
	f.graph = NewSocialGraphService(f.follows, f.identities, memory.NewPairLocker(16), f.notificationSvc, f.publisher, f.clock, logger, nil)
	f.engagement = NewEngagementService(f.posts, f.identities, f.notificationSvc, f.publisher, settings, nil, f.clock, logger, nil)
	f.feed = NewFeedService(f.posts, f.follows, settings, logger)
	f.postSvc = NewPostService(f.posts, f.identities, f.publisher, nil, nil, f.clock, logger)
	return f
}

func (f *fixture) post(t *testing.T, author string) valueobjects.PostID {
	t.Helper()
	view, err := f.postSvc.CreatePost(context.Background(), valueobjects.IdentityID(author), "title by "+author, "content", nil)
	require.NoError(t, err)
	return view.ID
}

func (f *fixture) notificationsFor(t *testing.T, id string) []*entities.Notification {
	t.Helper()
	list, err := f.notifications.ListByRecipient(context.Background(), valueobjects.IdentityID(id))
	require.NoError(t, err)
	return list
}
