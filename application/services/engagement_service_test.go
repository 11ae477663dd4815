package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"socialhub/application/ports"
	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeParityAndNotification(t *testing.T) {
	f := newFixture(t, nil, "author", "fan")
	ctx := context.Background()
	postID := f.post(t, "author")

	for n := 1; n <= 5; n++ {
		res, err := f.engagement.ToggleLike(ctx, postID, "fan")
		require.NoError(t, err)
		assert.Equal(t, n%2 == 1, res.Liked)

		post, _ := f.posts.Get(ctx, postID)
		assert.Equal(t, len(post.Likers()), res.LikesCount)
	}

	notes := f.notificationsFor(t, "author")
	assert.Len(t, notes, 3)
	for _, n := range notes {
		assert.Equal(t, entities.NotificationLike, n.Type)
		assert.Equal(t, postID, *n.SubjectPostID)
	}
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	f := newFixture(t, nil, "author")
	postID := f.post(t, "author")

	res, err := f.engagement.ToggleLike(context.Background(), postID, "author")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Empty(t, f.notificationsFor(t, "author"))
}

func TestLikeIsIdempotent(t *testing.T) {
	f := newFixture(t, nil, "author", "fan")
	ctx := context.Background()
	postID := f.post(t, "author")

	for i := 0; i < 3; i++ {
		res, err := f.engagement.Like(ctx, postID, "fan")
		require.NoError(t, err)
		assert.Equal(t, 1, res.LikesCount)
	}
	assert.Len(t, f.notificationsFor(t, "author"), 1)

	res, err := f.engagement.Unlike(ctx, postID, "fan")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.LikesCount)
}

func TestLikeUnknownPostOrIdentity(t *testing.T) {
	f := newFixture(t, nil, "author", "fan")
	ctx := context.Background()
	postID := f.post(t, "author")

	_, err := f.engagement.ToggleLike(ctx, valueobjects.NewPostID(), "fan")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.engagement.ToggleLike(ctx, postID, "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestConcurrentLikesFromDistinctIdentities(t *testing.T) {
	users := []string{"author"}
	for i := 0; i < 25; i++ {
		users = append(users, "u"+strings.Repeat("x", i))
	}
	f := newFixture(t, nil, users...)
	ctx := context.Background()
	postID := f.post(t, "author")

	var wg sync.WaitGroup
	for _, u := range users[1:] {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := f.engagement.ToggleLike(ctx, postID, valueobjects.IdentityID(u))
			assert.NoError(t, err)
		}(u)
	}
	wg.Wait()

	counts, err := f.engagement.Counts(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, 25, counts.LikesCount)
}

func TestAddCommentRejectsBlankText(t *testing.T) {
	f := newFixture(t, nil, "author", "fan")
	ctx := context.Background()
	postID := f.post(t, "author")

	for _, text := range []string{"", " ", strings.Repeat("a", 501)} {
		_, err := f.engagement.AddComment(ctx, postID, "fan", text)
		assert.True(t, apperrors.IsInvalidArgument(err))
	}

	counts, _ := f.engagement.Counts(ctx, postID)
	assert.Equal(t, 0, counts.CommentsCount)
	assert.Empty(t, f.notificationsFor(t, "author"))
}

func TestAddCommentAppendsInOrderAndNotifies(t *testing.T) {
	f := newFixture(t, nil, "author", "fan")
	ctx := context.Background()
	postID := f.post(t, "author")

	first, err := f.engagement.AddComment(ctx, postID, "fan", "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", first.Text)
	_, err = f.engagement.AddComment(ctx, postID, "fan", "second")
	require.NoError(t, err)

	post, _ := f.posts.Get(ctx, postID)
	comments := post.Comments()
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)

	notes := f.notificationsFor(t, "author")
	require.Len(t, notes, 2)
	assert.Equal(t, entities.NotificationComment, notes[0].Type)
}

func TestSelfCommentNotificationSetting(t *testing.T) {
	tests := []struct {
		name     string
		settings ports.Settings
		want     int
	}{
		{"default notifies", nil, 1},
		{"disabled", ports.StaticSettings{SelfCommentNotifications: false}, 0},
		{"enabled", ports.StaticSettings{SelfCommentNotifications: true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.settings, "author")
			postID := f.post(t, "author")

			_, err := f.engagement.AddComment(context.Background(), postID, "author", "note to self")
			require.NoError(t, err)
			assert.Len(t, f.notificationsFor(t, "author"), tt.want)
		})
	}
}

func TestDeleteCommentRequiresAuthor(t *testing.T) {
	f := newFixture(t, nil, "author", "fan", "mallory")
	ctx := context.Background()
	postID := f.post(t, "author")

	comment, err := f.engagement.AddComment(ctx, postID, "fan", "hello")
	require.NoError(t, err)

	_, err = f.engagement.DeleteComment(ctx, postID, comment.ID, "mallory")
	assert.True(t, apperrors.IsForbidden(err))
	counts, _ := f.engagement.Counts(ctx, postID)
	assert.Equal(t, 1, counts.CommentsCount)

	_, err = f.engagement.DeleteComment(ctx, postID, valueobjects.NewCommentID(), "fan")
	assert.True(t, apperrors.IsNotFound(err))

	view, err := f.engagement.DeleteComment(ctx, postID, comment.ID, "fan")
	require.NoError(t, err)
	assert.Equal(t, 0, view.CommentsCount)
}
