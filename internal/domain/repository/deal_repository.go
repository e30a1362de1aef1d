package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
)

// DealRepository defines the interface for deal data operations
type DealRepository interface {
	Create(ctx context.Context, deal *entity.Deal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Deal, error)
	// UpdateStage sets the deal's stage and bumps updated_at
	UpdateStage(ctx context.Context, id, stageID uuid.UUID) error
	// ListIDsByStage returns the ids of active deals currently in stageID
	ListIDsByStage(ctx context.Context, stageID uuid.UUID) ([]uuid.UUID, error)
}
