package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"gorm.io/gorm"
)

type lineItemRepository struct {
	db *gorm.DB
}

// NewLineItemRepository creates a new line item repository
func NewLineItemRepository(db *gorm.DB) domainRepo.LineItemRepository {
	return &lineItemRepository{db: db}
}

func (r *lineItemRepository) Create(ctx context.Context, line *entity.LineItem) error {
	return translateCreateError(r.db.WithContext(ctx).Create(line).Error)
}

func (r *lineItemRepository) ListByParent(ctx context.Context, parentType enum.ParentType, parentID uuid.UUID) ([]entity.LineItem, error) {
	var lines []entity.LineItem
	err := r.db.WithContext(ctx).
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Order("position ASC").
		Find(&lines).Error
	return lines, err
}

func (r *lineItemRepository) DeleteByParent(ctx context.Context, parentType enum.ParentType, parentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&entity.LineItem{}, "parent_type = ? AND parent_id = ?", parentType, parentID).Error
}
