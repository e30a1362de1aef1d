package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
)

// InvoiceRepository defines the interface for invoice header operations
type InvoiceRepository interface {
	// Create returns ErrDuplicate when an invoice already exists for the order
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entity.Invoice, error)
	// UpdatePayment stores paid and balance amounts together with the status
	UpdatePayment(ctx context.Context, id uuid.UUID, paidMinor, balanceMinor int64, status enum.InvoiceStatus) error
}
