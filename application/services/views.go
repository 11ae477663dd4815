package services

import (
	"time"

	"socialhub/domain/core/aggregates"
	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
)

// PostView is a post with its derived engagement counts
type PostView struct {
	ID            valueobjects.PostID       `json:"id"`
	Author        valueobjects.IdentityID   `json:"author"`
	Title         string                    `json:"title"`
	Content       string                    `json:"content"`
	Tags          []string                  `json:"tags"`
	Likes         []valueobjects.IdentityID `json:"likes"`
	Comments      []entities.Comment        `json:"comments"`
	LikesCount    int                       `json:"likesCount"`
	CommentsCount int                       `json:"commentsCount"`
	CreatedAt     time.Time                 `json:"createdAt"`
}

// NewPostView projects a post
func NewPostView(p *aggregates.Post) PostView {
	return PostView{
		ID:            p.ID(),
		Author:        p.Author(),
		Title:         p.Title(),
		Content:       p.Content(),
		Tags:          p.Tags(),
		Likes:         p.Likers(),
		Comments:      p.Comments(),
		LikesCount:    p.LikesCount(),
		CommentsCount: p.CommentsCount(),
		CreatedAt:     p.CreatedAt(),
	}
}

// PostSummary is the {id, title, content} projection attached to notifications
type PostSummary struct {
	ID      valueobjects.PostID `json:"id"`
	Title   string              `json:"title"`
	Content string              `json:"content"`
}

// NotificationView is a notification joined with its sender and subject post
type NotificationView struct {
	ID        valueobjects.NotificationID `json:"id"`
	Type      entities.NotificationType   `json:"type"`
	Sender    entities.IdentitySummary    `json:"sender"`
	Recipient valueobjects.IdentityID     `json:"recipient"`
	Post      *PostSummary                `json:"post,omitempty"`
	IsRead    bool                        `json:"isRead"`
	CreatedAt time.Time                   `json:"createdAt"`
}

// FollowResult is returned by follow mutations
type FollowResult struct {
	NowFollowing   bool `json:"nowFollowing"`
	FollowerCount  int  `json:"followerCount"`
	FollowingCount int  `json:"followingCount"`
}

// LikeResult is returned by like mutations
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// EngagementCounts are the derived counts of one post
type EngagementCounts struct {
	LikesCount    int `json:"likesCount"`
	CommentsCount int `json:"commentsCount"`
}
