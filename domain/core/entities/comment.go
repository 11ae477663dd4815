package entities

import (
	"time"

	"socialhub/domain/core/valueobjects"
)

// Comment is one entry in a post's comment list
type Comment struct {
	ID        valueobjects.CommentID  `json:"id" dynamodbav:"ID"`
	Author    valueobjects.IdentityID `json:"author" dynamodbav:"Author"`
	Text      string                  `json:"text" dynamodbav:"Text"`
	CreatedAt time.Time               `json:"createdAt" dynamodbav:"CreatedAt"`
}

// NewComment creates a comment from already validated text
func NewComment(author valueobjects.IdentityID, text valueobjects.CommentText, now time.Time) Comment {
	return Comment{
		ID:        valueobjects.NewCommentID(),
		Author:    author,
		Text:      text.String(),
		CreatedAt: now,
	}
}
