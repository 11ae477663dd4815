package middleware

import (
	"errors"
	"net"
	"net/http"
	"slices"
	"strings"

	"socialhub/pkg/auth"
	"socialhub/pkg/common"
	apperrors "socialhub/pkg/errors"

	"go.uber.org/zap"
)

// Authenticate validates the bearer token and stores the caller in the
// request context
func Authenticate(validator *auth.JWTValidator, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing authentication token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Debug("Invalid token",
					zap.Error(err),
					zap.String("ip", clientIP(r)),
					zap.String("path", r.URL.Path),
				)
				errorHandler.Handle(w, r, apperrors.NewUnauthorizedError(tokenMessage(err)))
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID:   claims.UserID,
				Username: claims.Username,
				Roles:    claims.Roles,
			})
			ctx = common.WithUserID(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid token signature"
	default:
		return "invalid token"
	}
}

// RequireRole rejects callers holding none of roles
func RequireRole(errorHandler *apperrors.ErrorHandler, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			if err != nil {
				errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("authentication required"))
				return
			}

			if !slices.ContainsFunc(user.Roles, func(role string) bool { return slices.Contains(roles, role) }) {
				errorHandler.Handle(w, r, apperrors.NewForbiddenError("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the bearer token from the Authorization header, then
// the auth_token cookie
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// clientIP returns the request's remote host. chi's RealIP middleware has
// already applied X-Forwarded-For and X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
