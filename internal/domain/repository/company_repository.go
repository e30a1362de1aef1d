package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
)

// CompanyRepository defines the interface for company data operations
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
}
