package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/store/model"
)

type actorKeyType struct{}

var actorKey actorKeyType

// Actor identifies who is performing a call. It is supplied by the
// authentication layer and trusted as-is, the core performs no credential
// verification.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) IsEmployer() bool {
	return a.Role == model.RoleEmployer
}

func (a Actor) IsJobSeeker() bool {
	return a.Role == model.RoleJobSeeker
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	val := ctx.Value(actorKey)
	if val == nil {
		return Actor{}, false
	}
	return val.(Actor), true
}

func MustHaveActor(ctx context.Context) Actor {
	actor, found := ActorFromContext(ctx)
	if !found {
		panic("no actor found in context")
	}
	return actor
}

func NewActorContext(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}
