package commands

import "socialhub/pkg/utils"

// CreatePostCommand publishes a new post
type CreatePostCommand struct {
	AuthorID string   `json:"author_id" validate:"required"`
	Title    string   `json:"title" validate:"required,max=200"`
	Content  string   `json:"content" validate:"required,max=5000"`
	Tags     []string `json:"tags" validate:"max=10"`
}

func (c CreatePostCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdatePostCommand edits a post on behalf of its author. Nil fields are
// left unchanged.
type UpdatePostCommand struct {
	PostID      string    `json:"post_id" validate:"required,uuid"`
	RequesterID string    `json:"requester_id" validate:"required"`
	Title       *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Content     *string   `json:"content,omitempty" validate:"omitempty,max=5000"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,max=10"`
}

func (c UpdatePostCommand) Validate() error { return utils.ValidateStruct(c) }

// DeletePostCommand removes a post on behalf of its author
type DeletePostCommand struct {
	PostID      string `json:"post_id" validate:"required,uuid"`
	RequesterID string `json:"requester_id" validate:"required"`
}

func (c DeletePostCommand) Validate() error { return utils.ValidateStruct(c) }

// ToggleLikeCommand flips an identity's like on a post
type ToggleLikeCommand struct {
	PostID     string `json:"post_id" validate:"required,uuid"`
	IdentityID string `json:"identity_id" validate:"required"`
}

func (c ToggleLikeCommand) Validate() error { return utils.ValidateStruct(c) }

// SetLikeCommand makes an identity's like present (Like) or absent
type SetLikeCommand struct {
	PostID     string `json:"post_id" validate:"required,uuid"`
	IdentityID string `json:"identity_id" validate:"required"`
	Like       bool   `json:"like"`
}

func (c SetLikeCommand) Validate() error { return utils.ValidateStruct(c) }

// AddCommentCommand appends a comment. Text rules are enforced by the
// comment value object so the failure carries a specific code.
type AddCommentCommand struct {
	PostID     string `json:"post_id" validate:"required,uuid"`
	IdentityID string `json:"identity_id" validate:"required"`
	Text       string `json:"text"`
}

func (c AddCommentCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteCommentCommand removes a comment on behalf of its author
type DeleteCommentCommand struct {
	PostID      string `json:"post_id" validate:"required,uuid"`
	CommentID   string `json:"comment_id" validate:"required,uuid"`
	RequesterID string `json:"requester_id" validate:"required"`
}

func (c DeleteCommentCommand) Validate() error { return utils.ValidateStruct(c) }
