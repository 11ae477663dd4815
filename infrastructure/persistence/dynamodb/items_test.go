package dynamodb

import (
	"testing"
	"time"

	"socialhub/domain/core/aggregates"
	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestPost(t *testing.T) *aggregates.Post {
	t.Helper()
	content, err := valueobjects.NewPostContent("Hello", "First post", []string{"Go", "news"})
	require.NoError(t, err)
	post, err := aggregates.NewPost("alice", content, t0)
	require.NoError(t, err)
	return post
}

func TestPostItem_LikesStoredAsStringSet(t *testing.T) {
	post := newTestPost(t)
	post.AddLike("bob", t0)
	post.AddLike("carol", t0)

	av, err := attributevalue.MarshalMap(newPostItem(post))
	require.NoError(t, err)

	likes, ok := av["Likes"].(*types.AttributeValueMemberSS)
	require.True(t, ok, "likes should be a string set")
	assert.ElementsMatch(t, []string{"bob", "carol"}, likes.Value)
	assert.Equal(t, "AUTHOR#alice", av["GSI1PK"].(*types.AttributeValueMemberS).Value)

	var item postItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &item))
	restored := item.toAggregate()

	assert.Equal(t, 2, restored.LikesCount())
	assert.True(t, restored.HasLiked("bob"))
	assert.Equal(t, post.Version(), restored.Version())
	assert.Equal(t, post.Tags(), restored.Tags())
}

func TestPostItem_EmptyLikesOmitted(t *testing.T) {
	av, err := attributevalue.MarshalMap(newPostItem(newTestPost(t)))
	require.NoError(t, err)

	_, present := av["Likes"]
	assert.False(t, present)

	var item postItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &item))
	assert.Equal(t, 0, item.toAggregate().LikesCount())
}

func TestNotificationItem_FollowHasNoSubject(t *testing.T) {
	n := &entities.Notification{
		ID:        valueobjects.NewNotificationID(),
		Type:      entities.NotificationFollow,
		Sender:    "bob",
		Recipient: "alice",
		CreatedAt: t0,
	}

	item := newNotificationItem(n)
	assert.Equal(t, "RECIPIENT#alice", item.GSI1PK)
	assert.Empty(t, item.SubjectPostID)
	assert.Nil(t, item.toEntity().SubjectPostID)
}

func TestSortKey_OrdersChronologically(t *testing.T) {
	earlier := sortKey(t0, "b")
	later := sortKey(t0.Add(time.Millisecond), "a")
	assert.Less(t, earlier, later)
}
