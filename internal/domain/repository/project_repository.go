package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
)

// ProjectRepository defines the interface for project data operations
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	// GetByDealID returns the first active project of a deal, or nil
	GetByDealID(ctx context.Context, dealID uuid.UUID) (*entity.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.ProjectStatus) error
}
