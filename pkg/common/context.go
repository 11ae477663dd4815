package common

import "context"

type contextKey struct{ name string }

var userIDKey = &contextKey{"user_id"}

// WithUserID adds the acting identity id to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the acting identity id from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
