package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
)

// PipelineRepository defines the interface for pipeline and stage lookups
type PipelineRepository interface {
	Create(ctx context.Context, pipeline *entity.Pipeline) error
	GetStage(ctx context.Context, id uuid.UUID) (*entity.Stage, error)
	// ListStages returns stages ordered by position then id. A nil
	// pipelineID lists the stages of every pipeline.
	ListStages(ctx context.Context, pipelineID *uuid.UUID) ([]entity.Stage, error)
}
