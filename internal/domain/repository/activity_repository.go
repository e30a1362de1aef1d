package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/pkg/pagination"
)

// ActivityRepository defines the interface for the append-only activity log
type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	ListByDeal(ctx context.Context, dealID uuid.UUID, params *pagination.PaginationParams) ([]entity.Activity, int64, error)
}
