package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
)

// QuoteRepository defines the interface for quote header operations.
// Lines are handled by LineItemRepository.
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error)
	// ListActiveByDeal returns the non-deleted quotes of a deal
	ListActiveByDeal(ctx context.Context, dealID uuid.UUID) ([]entity.Quote, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.QuoteStatus) error
	// SoftDelete marks the quote deleted; HardDelete removes the row.
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}
