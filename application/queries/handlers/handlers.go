// Package handlers binds queries to the application services.
package handlers

import (
	"context"
	"fmt"

	"socialhub/application/ports"
	"socialhub/application/queries"
	"socialhub/application/queries/bus"
	"socialhub/application/services"
	"socialhub/domain/core/valueobjects"
	"socialhub/pkg/common"
)

// Services groups the services that query handlers read from
type Services struct {
	Feed          *services.FeedService
	Posts         *services.PostService
	Graph         *services.SocialGraphService
	Engagement    *services.EngagementService
	Notifications *services.NotificationService
}

// ConnectionsResult is the response for a follower or following listing
type ConnectionsResult struct {
	IdentityID string   `json:"identityId"`
	Direction  string   `json:"direction"`
	Identities []string `json:"identities"`
}

// UnreadCountResult wraps the unread notification count
type UnreadCountResult struct {
	Unread int `json:"unread"`
}

// Register binds every query to its handler
func Register(b *bus.QueryBus, svc Services) error {
	bindings := []struct {
		query   bus.Query
		handler bus.QueryHandlerFunc
	}{
		{queries.GetFeedQuery{}, getFeed(svc.Feed)},
		{queries.ListPostsQuery{}, listPosts(svc.Feed)},
		{queries.GetPostQuery{}, getPost(svc.Posts)},
		{queries.GetPostCountsQuery{}, getPostCounts(svc.Engagement)},
		{queries.GetFollowCountsQuery{}, getFollowCounts(svc.Graph)},
		{queries.ListConnectionsQuery{}, listConnections(svc.Graph)},
		{queries.ListNotificationsQuery{}, listNotifications(svc.Notifications)},
		{queries.UnreadCountQuery{}, unreadCount(svc.Notifications)},
	}

	for _, binding := range bindings {
		if err := b.Register(binding.query, binding.handler); err != nil {
			return fmt.Errorf("failed to register query handler: %w", err)
		}
	}
	return nil
}

func getFeed(svc *services.FeedService) bus.QueryHandlerFunc {
	return func(ctx context.Context, q bus.Query) (interface{}, error) {
		query := q.(queries.GetFeedQuery)
		mode, err := valueobjects.ParseSortMode(query.Sort)
		if err != nil {
			return nil, err
		}
		return svc.GetFeed(ctx, valueobjects.IdentityID(query.ViewerID), mode, pageParams(query.Page, query.PageSize))
	}
}

func listPosts(svc *services.FeedService) bus.QueryHandlerFunc {
	return func(ctx context.Context, q bus.Query) (interface{}, error) {
		query := q.(queries.ListPostsQuery)
		filter := ports.PostFilter{Tags: query.Tags}
		if query.AuthorID != "" {
			author := valueobjects.IdentityID(query.AuthorID)
			filter.Author = &author
		}
		return svc.GetPosts(ctx, filter, pageParams(query.Page, query.PageSize))
	}
}

func getPost(svc *services.PostService) bus.QueryHandlerFunc {
	return func(ctx context.Context, q bus.Query) (interface{}, error) {
		return svc.GetPost(ctx, valueobjects.PostID(q.(queries.GetPostQuery).PostID))
	}
}

func getPostCounts(svc *services.EngagementService) bus.QueryHandlerFunc {
	return func(ctx context.Context, q bus.Query) (interface{}, error) {
		return svc.Counts(ctx, valueobjects.PostID(q.(queries.GetPostCountsQuery).PostID))
	}
}

func getFollowCounts(svc *services.SocialGraphService) bus.QueryHandlerFunc {
	return func(ctx context.Context, q bus.Query) (interface{}, error) {
		return svc.GetCounts(ctx, valueobjects.IdentityID(q.(queries.GetFollowCountsQuery).IdentityID))
	}
}

func listConnections(svc *services.SocialGraphService) bus.QueryHandlerFunc {
	return func(ctx context.Context, q bus.Query) (interface{}, error) {
		query := q.(queries.ListConnectionsQuery)
		id := valueobjects.IdentityID(query.IdentityID)

		var (
			ids []valueobjects.IdentityID
			err error
		)
		if query.Direction == queries.DirectionFollowers {
			ids, err = svc.Followers(ctx, id)
		} else {
			ids, err = svc.Following(ctx, id)
		}
		if err != nil {
			return nil, err
		}

		out := make([]string, len(ids))
		for i, v := range ids {
			out[i] = v.String()
		}
		return &ConnectionsResult{IdentityID: query.IdentityID, Direction: query.Direction, Identities: out}, nil
	}
}

func listNotifications(svc *services.NotificationService) bus.QueryHandlerFunc {
	return func(ctx context.Context, q bus.Query) (interface{}, error) {
		return svc.ListNotifications(ctx, valueobjects.IdentityID(q.(queries.ListNotificationsQuery).RecipientID))
	}
}

func unreadCount(svc *services.NotificationService) bus.QueryHandlerFunc {
	return func(ctx context.Context, q bus.Query) (interface{}, error) {
		n, err := svc.UnreadCount(ctx, valueobjects.IdentityID(q.(queries.UnreadCountQuery).RecipientID))
		if err != nil {
			return nil, err
		}
		return &UnreadCountResult{Unread: n}, nil
	}
}

// pageParams fills defaults for omitted values; explicit bad values are
// left for the service to reject.
func pageParams(page, size int) common.PaginationParams {
	params := common.DefaultPaginationParams()
	if page != 0 {
		params.Page = page
	}
	if size != 0 {
		params.PageSize = size
	}
	return params
}
