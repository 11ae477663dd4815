package handlers

import (
	"net/http"

	"socialhub/application/commands"
	"socialhub/application/commands/bus"
	"socialhub/application/queries"
	querybus "socialhub/application/queries/bus"
	apperrors "socialhub/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SocialHandler serves the follow graph endpoints
type SocialHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewSocialHandler creates a new social graph handler
func NewSocialHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *SocialHandler {
	return &SocialHandler{
		responder:  responder{errors: errorHandler, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// ToggleFollow handles POST /users/{id}/follow
func (h *SocialHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	follower, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.ToggleFollowCommand{
		FollowerID: follower,
		FolloweeID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// Follow handles PUT /users/{id}/follow
func (h *SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, true)
}

// Unfollow handles DELETE /users/{id}/follow
func (h *SocialHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, false)
}

func (h *SocialHandler) setFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	follower, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.SetFollowCommand{
		FollowerID: follower,
		FolloweeID: chi.URLParam(r, "id"),
		Follow:     follow,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// GetCounts handles GET /users/{id}/counts
func (h *SocialHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetFollowCountsQuery{IdentityID: chi.URLParam(r, "id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// ListFollowers handles GET /users/{id}/followers
func (h *SocialHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	h.listConnections(w, r, queries.DirectionFollowers)
}

// ListFollowing handles GET /users/{id}/following
func (h *SocialHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	h.listConnections(w, r, queries.DirectionFollowing)
}

func (h *SocialHandler) listConnections(w http.ResponseWriter, r *http.Request, direction string) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListConnectionsQuery{
		IdentityID: chi.URLParam(r, "id"),
		Direction:  direction,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// RemoveIdentity handles DELETE /internal/identities/{id}, the callback the
// identity store fires after deleting an account
func (h *SocialHandler) RemoveIdentity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.commandBus.Send(r.Context(), commands.RemoveIdentityCommand{IdentityID: id})
	if err != nil {
		h.logger.Error("Identity removal failed", zap.String("identityID", id), zap.Error(err))
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}
