package domain

import "context"

type contextKey string

const ownerIDKey contextKey = "owner_id"

// WithOwnerID stores the authenticated owner in the context
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// GetOwnerIDFromContext returns the authenticated owner, or "" when absent
func GetOwnerIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ownerIDKey).(string); ok {
		return v
	}
	return ""
}
