package services

import (
	"context"
	"testing"

	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/infrastructure/cache"
	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmitWithoutSessionsPersistsOnce(t *testing.T) {
	f := newFixture(t, nil, "alice", "bob")
	ctx := context.Background()
	postID := f.post(t, "alice")

	n, err := f.notificationSvc.Emit(ctx, Trigger{
		Type:          entities.NotificationLike,
		Sender:        "bob",
		Recipient:     "alice",
		SubjectPostID: &postID,
	})
	require.NoError(t, err)

	stored := f.notificationsFor(t, "alice")
	require.Len(t, stored, 1)
	assert.Equal(t, n.ID, stored[0].ID)
	assert.False(t, stored[0].IsRead)
	assert.Equal(t, 1, f.queue.len())
}

func TestMarkReadIdempotentAndRecipientOnly(t *testing.T) {
	f := newFixture(t, nil, "alice", "bob")
	ctx := context.Background()

	n, err := f.notificationSvc.Emit(ctx, Trigger{Type: entities.NotificationFollow, Sender: "bob", Recipient: "alice"})
	require.NoError(t, err)

	_, err = f.notificationSvc.MarkRead(ctx, n.ID, "bob")
	assert.True(t, apperrors.IsForbidden(err))

	for i := 0; i < 2; i++ {
		got, err := f.notificationSvc.MarkRead(ctx, n.ID, "alice")
		require.NoError(t, err)
		assert.True(t, got.IsRead)
	}

	_, err = f.notificationSvc.MarkRead(ctx, valueobjects.NewNotificationID(), "alice")
	assert.True(t, apperrors.IsNotFound(err))

	unread, err := f.notificationSvc.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, unread)
}

func TestListNotificationsJoinsSummaries(t *testing.T) {
	f := newFixture(t, nil, "alice", "bob")
	ctx := context.Background()
	kept := f.post(t, "alice")
	gone := f.post(t, "alice")

	_, err := f.engagement.Like(ctx, kept, "bob")
	require.NoError(t, err)
	_, err = f.engagement.Like(ctx, gone, "bob")
	require.NoError(t, err)
	_, err = f.graph.Follow(ctx, "bob", "alice")
	require.NoError(t, err)
	require.NoError(t, f.postSvc.DeletePost(ctx, gone, "alice"))

	views, err := f.notificationSvc.ListNotifications(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, views, 3)

	// newest first
	assert.Equal(t, entities.NotificationFollow, views[0].Type)
	assert.Nil(t, views[0].Post)
	assert.Nil(t, views[1].Post, "deleted post summary is omitted")
	require.NotNil(t, views[2].Post)
	assert.Equal(t, kept, views[2].Post.ID)

	for _, v := range views {
		assert.Equal(t, "bob", v.Sender.Username)
		assert.Equal(t, "First bob", v.Sender.FirstName)
	}
}

func TestListNotificationsUsesCache(t *testing.T) {
	f := newFixture(t, nil, "alice", "bob")
	ctx := context.Background()
	c := cache.NewInMemoryCache()
	defer c.Close()

	svc := NewNotificationService(f.notifications, f.identities, f.posts, f.queue, nil, c, f.clock, zap.NewNop(), nil)
	_, err := svc.Emit(ctx, Trigger{Type: entities.NotificationFollow, Sender: "bob", Recipient: "alice"})
	require.NoError(t, err)

	_, err = svc.ListNotifications(ctx, "alice")
	require.NoError(t, err)

	// sender removed from the store: the cached summary still serves
	require.NoError(t, f.identities.DeleteIdentity(ctx, "bob"))
	views, err := svc.ListNotifications(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", views[0].Sender.Username)

	svc.InvalidateIdentity(ctx, "bob")
	views, err = svc.ListNotifications(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.IdentityID("bob"), views[0].Sender.ID)
	assert.Empty(t, views[0].Sender.Username)
}
