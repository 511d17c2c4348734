package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/pkg/auth"
)

// TenantIDFromContext returns the tenant of the authenticated actor.
func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok || actor.TenantID == uuid.Nil {
		return uuid.Nil, false
	}
	return actor.TenantID, true
}

func UserIDFromContext(ctx context.Context) string {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		return ""
	}
	return actor.UserID.String()
}

func RoleFromContext(ctx context.Context) string {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		return ""
	}
	return string(actor.Role)
}
