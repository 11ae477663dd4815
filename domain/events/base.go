package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypeFollowCreated       = "follow.created"
	TypeFollowRemoved       = "follow.removed"
	TypePostCreated         = "post.created"
	TypePostUpdated         = "post.updated"
	TypePostDeleted         = "post.deleted"
	TypePostLiked           = "post.liked"
	TypePostUnliked         = "post.unliked"
	TypeCommentAdded        = "comment.added"
	TypeCommentDeleted      = "comment.deleted"
	TypeIdentityRemoved     = "identity.removed"
	TypeNotificationCreated = "notification.created"
)

func base(aggregateID, eventType string, at time.Time) BaseEvent {
	return BaseEvent{AggregateID: aggregateID, EventType: eventType, Timestamp: at, Version: 1}
}

// Follow Events

// FollowChanged is raised when a follow edge is created or removed.
// The aggregate is the follower.
type FollowChanged struct {
	BaseEvent
	Follower string `json:"follower"`
	Followee string `json:"followee"`
}

// NewFollowCreated creates a follow.created event
func NewFollowCreated(follower, followee string, at time.Time) FollowChanged {
	return FollowChanged{BaseEvent: base(follower, TypeFollowCreated, at), Follower: follower, Followee: followee}
}

// NewFollowRemoved creates a follow.removed event
func NewFollowRemoved(follower, followee string, at time.Time) FollowChanged {
	return FollowChanged{BaseEvent: base(follower, TypeFollowRemoved, at), Follower: follower, Followee: followee}
}

// IdentityRemoved is raised after every edge of a deleted identity has been removed
type IdentityRemoved struct {
	BaseEvent
	IdentityID   string `json:"identity_id"`
	EdgesRemoved int    `json:"edges_removed"`
}

// NewIdentityRemoved creates an identity.removed event
func NewIdentityRemoved(identityID string, edges int, at time.Time) IdentityRemoved {
	return IdentityRemoved{BaseEvent: base(identityID, TypeIdentityRemoved, at), IdentityID: identityID, EdgesRemoved: edges}
}

// Post Events

// PostCreated is raised when a post is published
type PostCreated struct {
	BaseEvent
	PostID string   `json:"post_id"`
	Author string   `json:"author"`
	Tags   []string `json:"tags,omitempty"`
}

// NewPostCreated creates a post.created event
func NewPostCreated(postID, author string, tags []string, at time.Time) PostCreated {
	return PostCreated{BaseEvent: base(postID, TypePostCreated, at), PostID: postID, Author: author, Tags: tags}
}

// PostUpdated is raised when the author edits a post's title, content or tags
type PostUpdated struct {
	BaseEvent
	PostID string   `json:"post_id"`
	Author string   `json:"author"`
	Tags   []string `json:"tags,omitempty"`
}

// NewPostUpdated creates a post.updated event
func NewPostUpdated(postID, author string, tags []string, at time.Time) PostUpdated {
	return PostUpdated{BaseEvent: base(postID, TypePostUpdated, at), PostID: postID, Author: author, Tags: tags}
}

// PostDeleted is raised when a post is removed by its author
type PostDeleted struct {
	BaseEvent
	PostID string `json:"post_id"`
	Author string `json:"author"`
}

// NewPostDeleted creates a post.deleted event
func NewPostDeleted(postID, author string, at time.Time) PostDeleted {
	return PostDeleted{BaseEvent: base(postID, TypePostDeleted, at), PostID: postID, Author: author}
}

// LikeChanged is raised when an identity enters or leaves a post's like set
type LikeChanged struct {
	BaseEvent
	PostID     string `json:"post_id"`
	IdentityID string `json:"identity_id"`
	LikesCount int    `json:"likes_count"`
}

// NewPostLiked creates a post.liked event
func NewPostLiked(postID, identityID string, likes int, at time.Time) LikeChanged {
	return LikeChanged{BaseEvent: base(postID, TypePostLiked, at), PostID: postID, IdentityID: identityID, LikesCount: likes}
}

// NewPostUnliked creates a post.unliked event
func NewPostUnliked(postID, identityID string, likes int, at time.Time) LikeChanged {
	return LikeChanged{BaseEvent: base(postID, TypePostUnliked, at), PostID: postID, IdentityID: identityID, LikesCount: likes}
}

// CommentChanged is raised when a comment is appended to or removed from a post
type CommentChanged struct {
	BaseEvent
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
	Author    string `json:"author"`
}

// NewCommentAdded creates a comment.added event
func NewCommentAdded(postID, commentID, author string, at time.Time) CommentChanged {
	return CommentChanged{BaseEvent: base(postID, TypeCommentAdded, at), PostID: postID, CommentID: commentID, Author: author}
}

// NewCommentDeleted creates a comment.deleted event
func NewCommentDeleted(postID, commentID, author string, at time.Time) CommentChanged {
	return CommentChanged{BaseEvent: base(postID, TypeCommentDeleted, at), PostID: postID, CommentID: commentID, Author: author}
}

// Notification Events

// NotificationCreated is raised once per persisted notification
type NotificationCreated struct {
	BaseEvent
	NotificationID string `json:"notification_id"`
	Type           string `json:"type"`
	Sender         string `json:"sender"`
	Recipient      string `json:"recipient"`
}

// NewNotificationCreated creates a notification.created event
func NewNotificationCreated(id, notifType, sender, recipient string, at time.Time) NotificationCreated {
	return NotificationCreated{
		BaseEvent:      base(id, TypeNotificationCreated, at),
		NotificationID: id,
		Type:           notifType,
		Sender:         sender,
		Recipient:      recipient,
	}
}
