package commands

import "socialhub/pkg/utils"

// ToggleFollowCommand flips the follow edge follower -> followee
type ToggleFollowCommand struct {
	FollowerID string `json:"follower_id" validate:"required"`
	FolloweeID string `json:"followee_id" validate:"required"`
}

func (c ToggleFollowCommand) Validate() error { return utils.ValidateStruct(c) }

// SetFollowCommand makes the follow edge present (Follow) or absent
type SetFollowCommand struct {
	FollowerID string `json:"follower_id" validate:"required"`
	FolloweeID string `json:"followee_id" validate:"required"`
	Follow     bool   `json:"follow"`
}

func (c SetFollowCommand) Validate() error { return utils.ValidateStruct(c) }

// RemoveIdentityCommand removes every edge referencing a deleted identity
type RemoveIdentityCommand struct {
	IdentityID string `json:"identity_id" validate:"required"`
}

func (c RemoveIdentityCommand) Validate() error { return utils.ValidateStruct(c) }
