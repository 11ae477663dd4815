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

// NotificationHandler serves the caller's notifications
type NotificationHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		responder:  responder{errors: errorHandler, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// List handles GET /notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	recipient, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListNotificationsQuery{RecipientID: recipient})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipient, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.UnreadCountQuery{RecipientID: recipient})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// MarkRead handles PATCH /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.MarkNotificationReadCommand{
		NotificationID: chi.URLParam(r, "id"),
		CallerID:       caller,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}
