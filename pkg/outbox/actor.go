package outbox

import (
	"context"

	"github.com/angelmondragon/workshop-backend/pkg/auth"
)

// ActorFromContext converts the authenticated actor into an envelope
// reference. Background jobs have no actor and get nil.
func ActorFromContext(ctx context.Context) *ActorRef {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		return nil
	}
	return &ActorRef{UserID: actor.UserID, TenantID: actor.TenantID, Role: actor.Role.String()}
}
