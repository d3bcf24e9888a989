package middleware

import (
	"context"

	"github.com/angelmondragon/invoicecapture-backend/internal/access"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxRole    contextKey = "actor_role"
	ctxProfile contextKey = "profile"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ProfileFromContext returns the authenticated profile or nil for anonymous requests.
func ProfileFromContext(ctx context.Context) *access.Profile {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxProfile).(*access.Profile); ok {
		return v
	}
	return nil
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithProfile stores the profile along with its user id and role.
func WithProfile(ctx context.Context, profile *access.Profile) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if profile == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxProfile, profile)
	ctx = context.WithValue(ctx, ctxUserID, profile.ID.String())
	return context.WithValue(ctx, ctxRole, string(profile.Role))
}
