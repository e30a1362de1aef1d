package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetLive(ctx context.Context, key string, userID uuid.UUID, now time.Time) (*entity.IdempotencyKey, error) {
	var stored entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND user_id = ? AND expires_at > ?", key, userID, now).
		First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stored, err
}

func (r *idempotencyRepository) Create(ctx context.Context, stored *entity.IdempotencyKey) error {
	return translateCreateError(r.db.WithContext(ctx).Create(stored).Error)
}

// DeleteExpired hard deletes keys that expired before the cutoff
func (r *idempotencyRepository) DeleteExpired(ctx context.Context, before time.Time) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("expires_at < ?", before).
		Delete(&entity.IdempotencyKey{}).Error
}
