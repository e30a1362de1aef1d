package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses per user and key
type IdempotencyRepository interface {
	// GetLive returns the key only while it has not expired at now
	GetLive(ctx context.Context, key string, userID uuid.UUID, now time.Time) (*entity.IdempotencyKey, error)
	// Create returns ErrDuplicate when the user already stored the key
	Create(ctx context.Context, stored *entity.IdempotencyKey) error
	DeleteExpired(ctx context.Context, before time.Time) error
}
