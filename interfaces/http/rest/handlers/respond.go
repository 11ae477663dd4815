// Package handlers translates HTTP requests into bus commands and queries.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"socialhub/pkg/auth"
	"socialhub/pkg/common"
	apperrors "socialhub/pkg/errors"

	"go.uber.org/zap"
)

const maxBodyBytes = 64 * 1024

// responder carries what every handler needs to reply
type responder struct {
	errors *apperrors.ErrorHandler
	logger *zap.Logger
}

func (h responder) respond(w http.ResponseWriter, status int, data interface{}) {
	common.RespondJSON(w, status, data)
}

func (h responder) respondPage(w http.ResponseWriter, data interface{}, info *common.PaginationInfo) {
	common.RespondWithMeta(w, http.StatusOK, data, &common.MetaInfo{Pagination: info})
}

func (h responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.errors.Handle(w, r, err)
}

// caller returns the authenticated identity or writes a 401
func (h responder) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.fail(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return "", false
	}
	return user.UserID, true
}

// decode reads a JSON body into v; an empty body leaves v untouched
func (h responder) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := common.ParseJSONBody(r, v, maxBodyBytes)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	h.fail(w, r, apperrors.NewInvalidArgumentError("invalid request body: "+err.Error()).
		WithCode(apperrors.CodeInvalidBody))
	return false
}
