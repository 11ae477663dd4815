// Package v1 declares the /api/v1 route table.
package v1

import (
	"net/http"

	"socialhub/interfaces/http/rest/handlers"

	"github.com/go-chi/chi/v5"
)

// Handlers groups the endpoint handlers served under /api/v1
type Handlers struct {
	Social        *handlers.SocialHandler
	Posts         *handlers.PostHandler
	Feed          *handlers.FeedHandler
	Notifications *handlers.NotificationHandler
}

// Routes returns the v1 route table. authenticate guards every route;
// internal additionally guards the identity-store callbacks.
func Routes(h Handlers, authenticate, rateLimit, internal func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(versionHeaders)
		r.Use(authenticate)
		r.Use(rateLimit)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Post("/follow", h.Social.ToggleFollow)
			r.Put("/follow", h.Social.Follow)
			r.Delete("/follow", h.Social.Unfollow)
			r.Get("/counts", h.Social.GetCounts)
			r.Get("/followers", h.Social.ListFollowers)
			r.Get("/following", h.Social.ListFollowing)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", h.Posts.CreatePost)
			r.Get("/", h.Posts.ListPosts)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Posts.GetPost)
				r.Patch("/", h.Posts.UpdatePost)
				r.Delete("/", h.Posts.DeletePost)
				r.Post("/like", h.Posts.ToggleLike)
				r.Put("/like", h.Posts.Like)
				r.Delete("/like", h.Posts.Unlike)
				r.Get("/counts", h.Posts.GetCounts)
				r.Post("/comments", h.Posts.AddComment)
				r.Delete("/comments/{commentID}", h.Posts.DeleteComment)
			})
		})

		r.Get("/feed", h.Feed.GetFeed)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notifications.List)
			r.Get("/unread-count", h.Notifications.UnreadCount)
			r.Patch("/{id}/read", h.Notifications.MarkRead)
		})

		r.Route("/internal", func(r chi.Router) {
			r.Use(internal)
			r.Delete("/identities/{id}", h.Social.RemoveIdentity)
		})
	}
}

func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		next.ServeHTTP(w, r)
	})
}
