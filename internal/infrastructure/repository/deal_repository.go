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

type dealRepository struct {
	db *gorm.DB
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db *gorm.DB) domainRepo.DealRepository {
	return &dealRepository{db: db}
}

func (r *dealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *dealRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Deal, error) {
	var deal entity.Deal
	err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &deal, err
}

func (r *dealRepository) UpdateStage(ctx context.Context, id, stageID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Deal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stage_id":   stageID,
			"updated_at": time.Now(),
		}).Error
}

func (r *dealRepository) ListIDsByStage(ctx context.Context, stageID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Deal{}).
		Where("stage_id = ?", stageID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}
