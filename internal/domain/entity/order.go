package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Order represents a sales order. QuoteID points back at the quote it was
// converted from; the index on it is unique so a quote converts at most once.
type Order struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Number        string           `gorm:"size:100;uniqueIndex;not null" json:"number"`
	CompanyID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"company_id"`
	ContactID     *uuid.UUID       `gorm:"type:uuid" json:"contact_id,omitempty"`
	DealID        *uuid.UUID       `gorm:"type:uuid;index" json:"deal_id,omitempty"`
	QuoteID       *uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"quote_id,omitempty"`
	Status        enum.OrderStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	Currency      string           `gorm:"size:3;not null" json:"currency"`
	OrderDate     time.Time        `gorm:"not null" json:"order_date"`
	Notes         *string          `gorm:"type:text" json:"notes,omitempty"`
	SubtotalMinor int64            `gorm:"default:0" json:"subtotal_minor"`
	TaxMinor      int64            `gorm:"default:0" json:"tax_minor"`
	TotalMinor    int64            `gorm:"default:0" json:"total_minor"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`

	Lines []LineItem `gorm:"-" json:"lines,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
