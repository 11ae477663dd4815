package aggregates

import (
	"testing"
	"time"

	"socialhub/domain/core/valueobjects"
	"socialhub/domain/events"
	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPost(t *testing.T) *Post {
	t.Helper()
	content, err := valueobjects.NewPostContent("Title", "Body", []string{"go"})
	require.NoError(t, err)
	p, err := NewPost("author", content, time.Now())
	require.NoError(t, err)
	p.MarkEventsAsCommitted()
	return p
}

func TestToggleLikeParity(t *testing.T) {
	p := newTestPost(t)
	now := time.Now()

	for i := 1; i <= 5; i++ {
		liked := p.ToggleLike("bob", now)
		assert.Equal(t, i%2 == 1, liked)
		assert.Equal(t, p.LikesCount(), len(p.Likers()))
	}
	assert.True(t, p.HasLiked("bob"))
	assert.Equal(t, 1, p.LikesCount())
}

func TestAddLikeIsIdempotent(t *testing.T) {
	p := newTestPost(t)
	v := p.Version()

	assert.True(t, p.AddLike("bob", time.Now()))
	assert.False(t, p.AddLike("bob", time.Now()))
	assert.Equal(t, 1, p.LikesCount())
	assert.Equal(t, v+1, p.Version())

	assert.False(t, p.RemoveLike("carol", time.Now()))
	assert.Len(t, p.GetUncommittedEvents(), 1)
	assert.Equal(t, events.TypePostLiked, p.GetUncommittedEvents()[0].GetEventType())
}

func TestCommentsKeepCommitOrder(t *testing.T) {
	p := newTestPost(t)
	for _, s := range []string{"first", "second", "third"} {
		text, err := valueobjects.NewCommentText(s)
		require.NoError(t, err)
		p.AddComment("bob", text, time.Now())
	}

	comments := p.Comments()
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "third", comments[2].Text)
	assert.Equal(t, 3, p.CommentsCount())
}

func TestDeleteComment(t *testing.T) {
	p := newTestPost(t)
	text, _ := valueobjects.NewCommentText("hello")
	c := p.AddComment("bob", text, time.Now())

	err := p.DeleteComment(c.ID, "mallory", time.Now())
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, 1, p.CommentsCount())

	err = p.DeleteComment(valueobjects.NewCommentID(), "bob", time.Now())
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, p.DeleteComment(c.ID, "bob", time.Now()))
	assert.Equal(t, 0, p.CommentsCount())
}

func TestCloneIsIndependent(t *testing.T) {
	p := newTestPost(t)
	p.AddLike("bob", time.Now())

	c := p.Clone()
	c.AddLike("carol", time.Now())
	text, _ := valueobjects.NewCommentText("x")
	c.AddComment("carol", text, time.Now())

	assert.Equal(t, 1, p.LikesCount())
	assert.Equal(t, 0, p.CommentsCount())
	assert.Empty(t, p.GetUncommittedEvents())
}

func TestReconstructCollapsesDuplicateLikers(t *testing.T) {
	p := ReconstructPost(PostSnapshot{
		ID:     valueobjects.NewPostID(),
		Author: "author",
		Likes:  []valueobjects.IdentityID{"a", "b", "a"},
	})
	assert.Equal(t, 2, p.LikesCount())
	assert.NotNil(t, p.Comments())
}

func TestMarkDeletedRequiresAuthor(t *testing.T) {
	p := newTestPost(t)
	assert.True(t, apperrors.IsForbidden(p.MarkDeleted("bob", time.Now())))
	assert.NoError(t, p.MarkDeleted("author", time.Now()))
}

func TestEditByAuthor(t *testing.T) {
	p := newTestPost(t)
	v := p.Version()

	content, err := valueobjects.NewPostContent("New title", "Body", []string{"Rust", "go"})
	require.NoError(t, err)
	require.NoError(t, p.Edit("author", content, time.Now()))

	assert.Equal(t, "New title", p.Title())
	assert.Equal(t, []string{"go", "rust"}, p.Tags())
	assert.Equal(t, v+1, p.Version())
	require.Len(t, p.GetUncommittedEvents(), 1)
	assert.Equal(t, events.TypePostUpdated, p.GetUncommittedEvents()[0].GetEventType())
}

func TestEditUnchangedKeepsVersion(t *testing.T) {
	p := newTestPost(t)
	v := p.Version()

	content, err := valueobjects.NewPostContent("Title", "Body", []string{"GO"})
	require.NoError(t, err)
	require.NoError(t, p.Edit("author", content, time.Now()))

	assert.Equal(t, v, p.Version())
	assert.Empty(t, p.GetUncommittedEvents())
}

func TestEditByOtherIdentityForbidden(t *testing.T) {
	p := newTestPost(t)

	content, err := valueobjects.NewPostContent("Hijacked", "Body", nil)
	require.NoError(t, err)
	err = p.Edit("mallory", content, time.Now())

	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, "Title", p.Title())
	assert.Empty(t, p.GetUncommittedEvents())
}
