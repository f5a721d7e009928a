package utils

import (
	"context"
	"time"
)

type contextKey string

const (
	ContextUserIDKey    contextKey = "userID"
	ContextAccountIDKey contextKey = "accountID"
	ContextRoleKey      contextKey = "role"
)

// SessionData is what the session middleware needs to know about a bearer token.
type SessionData struct {
	UserID    string
	AccountID string
	Role      string
	ExpiresAt time.Time
}

// WithSession stores the session identity on ctx.
func WithSession(ctx context.Context, s SessionData) context.Context {
	ctx = context.WithValue(ctx, ContextUserIDKey, s.UserID)
	ctx = context.WithValue(ctx, ContextAccountIDKey, s.AccountID)
	return context.WithValue(ctx, ContextRoleKey, s.Role)
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID := ctx.Value(ContextUserIDKey)
	userIDStr, ok := userID.(string)
	return userIDStr, ok && userIDStr != ""
}

func GetAccountIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextAccountIDKey).(string)
	return v, ok && v != ""
}

func GetRoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ContextRoleKey).(string)
	return v
}
