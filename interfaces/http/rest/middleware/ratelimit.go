package middleware

import (
	"net/http"
	"strconv"
	"time"

	"socialhub/pkg/auth"
	apperrors "socialhub/pkg/errors"

	"go.uber.org/zap"
)

// RateLimit throttles requests per authenticated identity, falling back to
// the client address for anonymous requests. Limiter errors let the
// request through.
func RateLimit(limiter auth.RateLimiter, limit int, window time.Duration, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	users := auth.NewUserRateLimiter(limiter)
	ips := auth.NewIPRateLimiter(limiter)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				allowed bool
				err     error
			)
			if user, uerr := auth.GetUserFromContext(r.Context()); uerr == nil {
				allowed, err = users.Allow(r.Context(), user.UserID)
			} else {
				allowed, err = ips.Allow(r.Context(), clientIP(r))
			}

			if err != nil {
				logger.Warn("Rate limiter error", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				errorHandler.Handle(w, r, apperrors.NewRateLimitError(limit, window.String()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
