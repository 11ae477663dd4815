// Package queries defines the read-side requests served by the query bus.
package queries

import "socialhub/pkg/utils"

// GetFeedQuery requests a page of the viewer's feed
type GetFeedQuery struct {
	ViewerID string `json:"viewer_id" validate:"required"`
	Sort     string `json:"sort"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

func (q GetFeedQuery) Validate() error { return utils.ValidateStruct(q) }

// ListPostsQuery lists posts, optionally by author or tag
type ListPostsQuery struct {
	AuthorID string   `json:"author_id"`
	Tags     []string `json:"tags"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

func (q ListPostsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetPostQuery fetches a single post
type GetPostQuery struct {
	PostID string `json:"post_id" validate:"required,uuid"`
}

func (q GetPostQuery) Validate() error { return utils.ValidateStruct(q) }

// GetPostCountsQuery fetches a post's like and comment counts
type GetPostCountsQuery struct {
	PostID string `json:"post_id" validate:"required,uuid"`
}

func (q GetPostCountsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetFollowCountsQuery fetches follower and following counts
type GetFollowCountsQuery struct {
	IdentityID string `json:"identity_id" validate:"required"`
}

func (q GetFollowCountsQuery) Validate() error { return utils.ValidateStruct(q) }

// Follow list directions
const (
	DirectionFollowers = "followers"
	DirectionFollowing = "following"
)

// ListConnectionsQuery lists the identities on one side of the follow graph
type ListConnectionsQuery struct {
	IdentityID string `json:"identity_id" validate:"required"`
	Direction  string `json:"direction" validate:"required,oneof=followers following"`
}

func (q ListConnectionsQuery) Validate() error { return utils.ValidateStruct(q) }

// ListNotificationsQuery lists a recipient's notifications newest first
type ListNotificationsQuery struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

func (q ListNotificationsQuery) Validate() error { return utils.ValidateStruct(q) }

// UnreadCountQuery counts a recipient's unread notifications
type UnreadCountQuery struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

func (q UnreadCountQuery) Validate() error { return utils.ValidateStruct(q) }
