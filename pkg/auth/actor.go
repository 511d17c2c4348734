package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/pkg/enums"
)

type actorKey struct{}

// Actor is the authenticated staff member behind a request.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     enums.Role
}

// WithActor stores the actor on the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by the auth middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
