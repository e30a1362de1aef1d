package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"gorm.io/gorm"
)

type pipelineRepository struct {
	db *gorm.DB
}

// NewPipelineRepository creates a new pipeline repository
func NewPipelineRepository(db *gorm.DB) domainRepo.PipelineRepository {
	return &pipelineRepository{db: db}
}

// Create stores the pipeline together with its stages
func (r *pipelineRepository) Create(ctx context.Context, pipeline *entity.Pipeline) error {
	return r.db.WithContext(ctx).Create(pipeline).Error
}

func (r *pipelineRepository) GetStage(ctx context.Context, id uuid.UUID) (*entity.Stage, error) {
	var stage entity.Stage
	err := r.db.WithContext(ctx).First(&stage, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stage, err
}

func (r *pipelineRepository) ListStages(ctx context.Context, pipelineID *uuid.UUID) ([]entity.Stage, error) {
	var stages []entity.Stage
	query := r.db.WithContext(ctx).Model(&entity.Stage{})
	if pipelineID != nil {
		query = query.Where("pipeline_id = ?", *pipelineID)
	}
	err := query.Order("position ASC").Order("id ASC").Find(&stages).Error
	return stages, err
}
