package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
)

// LineItemRepository defines the interface for document line rows
type LineItemRepository interface {
	Create(ctx context.Context, line *entity.LineItem) error
	// ListByParent returns the lines of one document ordered by position
	ListByParent(ctx context.Context, parentType enum.ParentType, parentID uuid.UUID) ([]entity.LineItem, error)
	DeleteByParent(ctx context.Context, parentType enum.ParentType, parentID uuid.UUID) error
}
