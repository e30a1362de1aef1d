package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Quote represents a price proposal sent to a company
type Quote struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Number        string           `gorm:"size:100;uniqueIndex;not null" json:"number"`
	CompanyID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"company_id"`
	ContactID     *uuid.UUID       `gorm:"type:uuid" json:"contact_id,omitempty"`
	DealID        *uuid.UUID       `gorm:"type:uuid;index" json:"deal_id,omitempty"`
	Status        enum.QuoteStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	Currency      string           `gorm:"size:3;not null" json:"currency"`
	IssueDate     time.Time        `gorm:"not null" json:"issue_date"`
	ValidUntil    *time.Time       `json:"valid_until,omitempty"`
	Notes         *string          `gorm:"type:text" json:"notes,omitempty"`
	SubtotalMinor int64            `gorm:"default:0" json:"subtotal_minor"`
	TaxMinor      int64            `gorm:"default:0" json:"tax_minor"`
	TotalMinor    int64            `gorm:"default:0" json:"total_minor"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`

	// Lines live in line_items and are loaded separately
	Lines []LineItem `gorm:"-" json:"lines,omitempty"`
}

// BeforeCreate generates a UUID before creating a new quote
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Quote model
func (Quote) TableName() string {
	return "quotes"
}
