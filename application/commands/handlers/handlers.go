// Package handlers binds commands to the application services.
package handlers

import (
	"context"
	"fmt"

	"socialhub/application/commands"
	"socialhub/application/commands/bus"
	"socialhub/application/services"
	"socialhub/domain/core/valueobjects"
)

// Services groups the services that command handlers call
type Services struct {
	Graph         *services.SocialGraphService
	Engagement    *services.EngagementService
	Posts         *services.PostService
	Notifications *services.NotificationService
}

// Register binds every command to its handler
func Register(b *bus.CommandBus, svc Services) error {
	bindings := []struct {
		cmd     bus.Command
		handler bus.CommandHandlerFunc
	}{
		{commands.ToggleFollowCommand{}, toggleFollow(svc.Graph)},
		{commands.SetFollowCommand{}, setFollow(svc.Graph)},
		{commands.RemoveIdentityCommand{}, removeIdentity(svc.Graph)},
		{commands.CreatePostCommand{}, createPost(svc.Posts)},
		{commands.UpdatePostCommand{}, updatePost(svc.Posts)},
		{commands.DeletePostCommand{}, deletePost(svc.Posts)},
		{commands.ToggleLikeCommand{}, toggleLike(svc.Engagement)},
		{commands.SetLikeCommand{}, setLike(svc.Engagement)},
		{commands.AddCommentCommand{}, addComment(svc.Engagement)},
		{commands.DeleteCommentCommand{}, deleteComment(svc.Engagement)},
		{commands.MarkNotificationReadCommand{}, markRead(svc.Notifications)},
	}

	for _, binding := range bindings {
		if err := b.Register(binding.cmd, binding.handler); err != nil {
			return fmt.Errorf("failed to register command handler: %w", err)
		}
	}
	return nil
}

// RemoveIdentityResult reports how many edges a removal deleted
type RemoveIdentityResult struct {
	IdentityID   string `json:"identityId"`
	EdgesRemoved int    `json:"edgesRemoved"`
}

func toggleFollow(svc *services.SocialGraphService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.ToggleFollowCommand)
		return svc.ToggleFollow(ctx, valueobjects.IdentityID(cmd.FollowerID), valueobjects.IdentityID(cmd.FolloweeID))
	}
}

func setFollow(svc *services.SocialGraphService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.SetFollowCommand)
		follower, followee := valueobjects.IdentityID(cmd.FollowerID), valueobjects.IdentityID(cmd.FolloweeID)
		if cmd.Follow {
			return svc.Follow(ctx, follower, followee)
		}
		return svc.Unfollow(ctx, follower, followee)
	}
}

func removeIdentity(svc *services.SocialGraphService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.RemoveIdentityCommand)
		removed, err := svc.RemoveIdentity(ctx, valueobjects.IdentityID(cmd.IdentityID))
		if err != nil {
			return nil, err
		}
		return &RemoveIdentityResult{IdentityID: cmd.IdentityID, EdgesRemoved: removed}, nil
	}
}

func createPost(svc *services.PostService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.CreatePostCommand)
		return svc.CreatePost(ctx, valueobjects.IdentityID(cmd.AuthorID), cmd.Title, cmd.Content, cmd.Tags)
	}
}

func updatePost(svc *services.PostService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.UpdatePostCommand)
		return svc.UpdatePost(ctx, valueobjects.PostID(cmd.PostID), valueobjects.IdentityID(cmd.RequesterID), services.PostEdit{
			Title:   cmd.Title,
			Content: cmd.Content,
			Tags:    cmd.Tags,
		})
	}
}

func deletePost(svc *services.PostService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.DeletePostCommand)
		return nil, svc.DeletePost(ctx, valueobjects.PostID(cmd.PostID), valueobjects.IdentityID(cmd.RequesterID))
	}
}

func toggleLike(svc *services.EngagementService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.ToggleLikeCommand)
		return svc.ToggleLike(ctx, valueobjects.PostID(cmd.PostID), valueobjects.IdentityID(cmd.IdentityID))
	}
}

func setLike(svc *services.EngagementService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.SetLikeCommand)
		post, identity := valueobjects.PostID(cmd.PostID), valueobjects.IdentityID(cmd.IdentityID)
		if cmd.Like {
			return svc.Like(ctx, post, identity)
		}
		return svc.Unlike(ctx, post, identity)
	}
}

func addComment(svc *services.EngagementService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.AddCommentCommand)
		return svc.AddComment(ctx, valueobjects.PostID(cmd.PostID), valueobjects.IdentityID(cmd.IdentityID), cmd.Text)
	}
}

func deleteComment(svc *services.EngagementService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.DeleteCommentCommand)
		return svc.DeleteComment(ctx,
			valueobjects.PostID(cmd.PostID),
			valueobjects.CommentID(cmd.CommentID),
			valueobjects.IdentityID(cmd.RequesterID),
		)
	}
}

func markRead(svc *services.NotificationService) bus.CommandHandlerFunc {
	return func(ctx context.Context, c bus.Command) (interface{}, error) {
		cmd := c.(commands.MarkNotificationReadCommand)
		return svc.MarkRead(ctx, valueobjects.NotificationID(cmd.NotificationID), valueobjects.IdentityID(cmd.CallerID))
	}
}
