package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/pkg/pagination"
	"gorm.io/datatypes"
)

// ActivityService writes and reads the per-deal activity log
type ActivityService struct {
	activityRepo repository.ActivityRepository
}

// NewActivityService creates a new activity service
func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Record appends an activity for dealID. The acting user is taken from ctx.
// Callers treat a failed write as a best-effort side effect.
func (s *ActivityService) Record(ctx context.Context, activityType enum.ActivityType, dealID *uuid.UUID, meta map[string]interface{}) error {
	activity := &entity.Activity{
		Type:        activityType,
		DealID:      dealID,
		ActorUserID: ActorFromContext(ctx),
		Meta:        datatypes.JSONMap(meta),
	}
	return s.activityRepo.Create(ctx, activity)
}

// ListByDeal returns a page of a deal's activities, newest first
func (s *ActivityService) ListByDeal(ctx context.Context, dealID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Activity], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	activities, total, err := s.activityRepo.ListByDeal(ctx, dealID, params)
	if err != nil {
		return nil, err
	}
	return pagination.Of(activities, params, total), nil
}
