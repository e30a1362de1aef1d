package service

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const actorKey ctxKey = "actor_user_id"

// WithActor stores the acting user on the context. Activity rows written
// while handling the request carry this user as their actor.
func WithActor(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey, userID)
}

// ActorFromContext returns the acting user, or nil for system initiated work
func ActorFromContext(ctx context.Context) *uuid.UUID {
	userID, ok := ctx.Value(actorKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return nil
	}
	return &userID
}
