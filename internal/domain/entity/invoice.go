package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Invoice represents a bill issued for an order. BalanceMinor is kept equal
// to TotalMinor - PaidMinor by payment recording.
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Number        string             `gorm:"size:100;uniqueIndex;not null" json:"number"`
	CompanyID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"company_id"`
	ContactID     *uuid.UUID         `gorm:"type:uuid" json:"contact_id,omitempty"`
	DealID        *uuid.UUID         `gorm:"type:uuid;index" json:"deal_id,omitempty"`
	OrderID       *uuid.UUID         `gorm:"type:uuid;uniqueIndex" json:"order_id,omitempty"`
	Status        enum.InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	Currency      string             `gorm:"size:3;not null" json:"currency"`
	IssueDate     time.Time          `gorm:"not null" json:"issue_date"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	SubtotalMinor int64              `gorm:"default:0" json:"subtotal_minor"`
	TaxMinor      int64              `gorm:"default:0" json:"tax_minor"`
	TotalMinor    int64              `gorm:"default:0" json:"total_minor"`
	PaidMinor     int64              `gorm:"default:0" json:"paid_minor"`
	BalanceMinor  int64              `gorm:"default:0" json:"balance_minor"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`

	Lines []LineItem `gorm:"-" json:"lines,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}
