package handlers

import (
	"net/http"

	"socialhub/application/queries"
	querybus "socialhub/application/queries/bus"
	"socialhub/application/services"
	"socialhub/pkg/common"
	apperrors "socialhub/pkg/errors"

	"go.uber.org/zap"
)

// FeedHandler serves the viewer's feed
type FeedHandler struct {
	responder
	queryBus *querybus.QueryBus
	maxPage  func() int
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(queryBus *querybus.QueryBus, maxPage func() int, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		responder: responder{errors: errorHandler, logger: logger},
		queryBus:  queryBus,
		maxPage:   maxPage,
	}
}

// GetFeed handles GET /feed?sort=recent|popular&page=&page_size=
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.caller(w, r)
	if !ok {
		return
	}
	params, err := common.ExtractPaginationParams(r, h.maxPage())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetFeedQuery{
		ViewerID: viewer,
		Sort:     r.URL.Query().Get("sort"),
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
