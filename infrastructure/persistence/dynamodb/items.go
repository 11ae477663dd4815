package dynamodb

import (
	"fmt"
	"strings"
	"time"

	"socialhub/domain/core/aggregates"
	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Entity types stored in the EntityType attribute
const (
	entityIdentity     = "IDENTITY"
	entityFollow       = "FOLLOW"
	entityPost         = "POST"
	entityNotification = "NOTIFICATION"
)

const (
	skProfile  = "PROFILE"
	skMetadata = "METADATA"

	prefixUser         = "USER#"
	prefixFollowing    = "FOLLOWING#"
	prefixFollower     = "FOLLOWER#"
	prefixPost         = "POST#"
	prefixAuthor       = "AUTHOR#"
	prefixNotification = "NOTIFICATION#"
	prefixRecipient    = "RECIPIENT#"
)

func userPK(id valueobjects.IdentityID) string { return prefixUser + id.String() }

func postPK(id valueobjects.PostID) string { return prefixPost + id.String() }

func notificationPK(id valueobjects.NotificationID) string {
	return prefixNotification + id.String()
}

// sortKey orders items by creation time, then id
func sortKey(t time.Time, id string) string {
	return fmt.Sprintf("%s#%s", utils.SortableTimestamp(t), id)
}

func key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// identityItem is USER#id / PROFILE. The counters are maintained by the
// follow transactions and are never written by SaveIdentity.
type identityItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	EntityType     string `dynamodbav:"EntityType"`
	ID             string `dynamodbav:"ID"`
	Username       string `dynamodbav:"Username"`
	FirstName      string `dynamodbav:"FirstName"`
	LastName       string `dynamodbav:"LastName"`
	FollowerCount  int    `dynamodbav:"FollowerCount"`
	FollowingCount int    `dynamodbav:"FollowingCount"`
}

func (i identityItem) toEntity() *entities.Identity {
	return &entities.Identity{
		ID:        valueobjects.IdentityID(i.ID),
		Username:  i.Username,
		FirstName: i.FirstName,
		LastName:  i.LastName,
	}
}

// edgeItem is USER#follower / FOLLOWING#followee; GSI1 gives the reverse view
type edgeItem struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	GSI1PK     string    `dynamodbav:"GSI1PK"`
	GSI1SK     string    `dynamodbav:"GSI1SK"`
	EntityType string    `dynamodbav:"EntityType"`
	Follower   string    `dynamodbav:"Follower"`
	Followee   string    `dynamodbav:"Followee"`
	CreatedAt  time.Time `dynamodbav:"CreatedAt"`
}

func newEdgeItem(edge entities.FollowEdge) edgeItem {
	return edgeItem{
		PK:         userPK(edge.Follower),
		SK:         prefixFollowing + edge.Followee.String(),
		GSI1PK:     userPK(edge.Followee),
		GSI1SK:     prefixFollower + edge.Follower.String(),
		EntityType: entityFollow,
		Follower:   edge.Follower.String(),
		Followee:   edge.Followee.String(),
		CreatedAt:  edge.CreatedAt,
	}
}

// postItem is POST#id / METADATA with GSI1 AUTHOR#id / createdAt#id.
// Likes is a string set; DynamoDB cannot store an empty set, so it is
// omitted when nobody likes the post.
type postItem struct {
	PK         string             `dynamodbav:"PK"`
	SK         string             `dynamodbav:"SK"`
	GSI1PK     string             `dynamodbav:"GSI1PK"`
	GSI1SK     string             `dynamodbav:"GSI1SK"`
	EntityType string             `dynamodbav:"EntityType"`
	ID         string             `dynamodbav:"ID"`
	Author     string             `dynamodbav:"Author"`
	Title      string             `dynamodbav:"Title"`
	Content    string             `dynamodbav:"Content"`
	Tags       []string           `dynamodbav:"Tags"`
	Likes      []string           `dynamodbav:"Likes,stringset,omitempty"`
	Comments   []entities.Comment `dynamodbav:"Comments"`
	CreatedAt  time.Time          `dynamodbav:"CreatedAt"`
	UpdatedAt  time.Time          `dynamodbav:"UpdatedAt"`
	Version    int                `dynamodbav:"Version"`
}

func newPostItem(post *aggregates.Post) postItem {
	s := post.Snapshot()
	likes := make([]string, len(s.Likes))
	for i, id := range s.Likes {
		likes[i] = id.String()
	}
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	comments := s.Comments
	if comments == nil {
		comments = []entities.Comment{}
	}
	return postItem{
		PK:         postPK(s.ID),
		SK:         skMetadata,
		GSI1PK:     prefixAuthor + s.Author.String(),
		GSI1SK:     sortKey(s.CreatedAt, s.ID.String()),
		EntityType: entityPost,
		ID:         s.ID.String(),
		Author:     s.Author.String(),
		Title:      s.Title,
		Content:    s.Content,
		Tags:       tags,
		Likes:      likes,
		Comments:   comments,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		Version:    s.Version,
	}
}

func (p postItem) toAggregate() *aggregates.Post {
	likes := make([]valueobjects.IdentityID, len(p.Likes))
	for i, id := range p.Likes {
		likes[i] = valueobjects.IdentityID(id)
	}
	return aggregates.ReconstructPost(aggregates.PostSnapshot{
		ID:        valueobjects.PostID(p.ID),
		Author:    valueobjects.IdentityID(p.Author),
		Title:     p.Title,
		Content:   p.Content,
		Tags:      p.Tags,
		Likes:     likes,
		Comments:  p.Comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Version:   p.Version,
	})
}

// notificationItem is NOTIFICATION#id / METADATA with GSI1
// RECIPIENT#id / createdAt#id
type notificationItem struct {
	PK            string    `dynamodbav:"PK"`
	SK            string    `dynamodbav:"SK"`
	GSI1PK        string    `dynamodbav:"GSI1PK"`
	GSI1SK        string    `dynamodbav:"GSI1SK"`
	EntityType    string    `dynamodbav:"EntityType"`
	ID            string    `dynamodbav:"ID"`
	Type          string    `dynamodbav:"Type"`
	Sender        string    `dynamodbav:"Sender"`
	Recipient     string    `dynamodbav:"Recipient"`
	SubjectPostID string    `dynamodbav:"SubjectPostID,omitempty"`
	IsRead        bool      `dynamodbav:"IsRead"`
	CreatedAt     time.Time `dynamodbav:"CreatedAt"`
}

func newNotificationItem(n *entities.Notification) notificationItem {
	item := notificationItem{
		PK:         notificationPK(n.ID),
		SK:         skMetadata,
		GSI1PK:     prefixRecipient + n.Recipient.String(),
		GSI1SK:     sortKey(n.CreatedAt, n.ID.String()),
		EntityType: entityNotification,
		ID:         n.ID.String(),
		Type:       string(n.Type),
		Sender:     n.Sender.String(),
		Recipient:  n.Recipient.String(),
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
	if n.SubjectPostID != nil {
		item.SubjectPostID = n.SubjectPostID.String()
	}
	return item
}

func (n notificationItem) toEntity() *entities.Notification {
	out := &entities.Notification{
		ID:        valueobjects.NotificationID(n.ID),
		Type:      entities.NotificationType(n.Type),
		Sender:    valueobjects.IdentityID(n.Sender),
		Recipient: valueobjects.IdentityID(n.Recipient),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.SubjectPostID != "" {
		id := valueobjects.PostID(n.SubjectPostID)
		out.SubjectPostID = &id
	}
	return out
}

// idFromSK strips a key prefix such as FOLLOWING#
func idFromSK(sk, prefix string) valueobjects.IdentityID {
	return valueobjects.IdentityID(strings.TrimPrefix(sk, prefix))
}
