package handlers

import (
	"net/http"
	"strings"

	"socialhub/application/commands"
	"socialhub/application/commands/bus"
	"socialhub/application/queries"
	querybus "socialhub/application/queries/bus"
	"socialhub/application/services"
	"socialhub/pkg/common"
	apperrors "socialhub/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PostHandler serves posts and their engagement
type PostHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	maxPage    func() int
}

// NewPostHandler creates a new post handler. maxPage caps page_size.
func NewPostHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, maxPage func() int, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		responder:  responder{errors: errorHandler, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
		maxPage:    maxPage,
	}
}

// CreatePostRequest is the body of POST /posts
type CreatePostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// UpdatePostRequest is the body of PATCH /posts/{id}. Omitted fields are
// left unchanged.
type UpdatePostRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

// AddCommentRequest is the body of POST /posts/{id}/comments
type AddCommentRequest struct {
	Text string `json:"text"`
}

// CreatePost handles POST /posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	author, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req CreatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreatePostCommand{
		AuthorID: author,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, result)
}

// ListPosts handles GET /posts?author=&tag=&page=&page_size=
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	params, err := common.ExtractPaginationParams(r, h.maxPage())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var tags []string
	for _, raw := range r.URL.Query()["tag"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListPostsQuery{
		AuthorID: r.URL.Query().Get("author"),
		Tags:     tags,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := result.(*common.Page[services.PostView])
	h.respondPage(w, page.Items, page.Info())
}

// GetPost handles GET /posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPostQuery{PostID: chi.URLParam(r, "id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// UpdatePost handles PATCH /posts/{id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.UpdatePostCommand{
		PostID:      chi.URLParam(r, "id"),
		RequesterID: requester,
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// DeletePost handles DELETE /posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.caller(w, r)
	if !ok {
		return
	}

	_, err := h.commandBus.Send(r.Context(), commands.DeletePostCommand{
		PostID:      chi.URLParam(r, "id"),
		RequesterID: requester,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike handles POST /posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.ToggleLikeCommand{
		PostID:     chi.URLParam(r, "id"),
		IdentityID: identity,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// Like handles PUT /posts/{id}/like
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, true)
}

// Unlike handles DELETE /posts/{id}/like
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, false)
}

func (h *PostHandler) setLike(w http.ResponseWriter, r *http.Request, like bool) {
	identity, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.SetLikeCommand{
		PostID:     chi.URLParam(r, "id"),
		IdentityID: identity,
		Like:       like,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// GetCounts handles GET /posts/{id}/counts
func (h *PostHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPostCountsQuery{PostID: chi.URLParam(r, "id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// AddComment handles POST /posts/{id}/comments
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req AddCommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.AddCommentCommand{
		PostID:     chi.URLParam(r, "id"),
		IdentityID: identity,
		Text:       req.Text,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, result)
}

// DeleteComment handles DELETE /posts/{id}/comments/{commentID}
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.DeleteCommentCommand{
		PostID:      chi.URLParam(r, "id"),
		CommentID:   chi.URLParam(r, "commentID"),
		RequesterID: requester,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}
