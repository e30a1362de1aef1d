package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineItem is a document line stored as its own row, tagged with the owning
// document's type and id. Position orders the lines of one document.
type LineItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ParentType     enum.ParentType `gorm:"size:20;not null;uniqueIndex:idx_line_items_parent_position" json:"parent_type"`
	ParentID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_line_items_parent_position" json:"parent_id"`
	Position       int             `gorm:"not null;uniqueIndex:idx_line_items_parent_position" json:"position"`
	Description    string          `gorm:"type:text" json:"description"`
	SKU            *string         `gorm:"size:100" json:"sku,omitempty"`
	Qty            decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"qty"`
	UnitMinor      int64           `gorm:"not null;default:0" json:"unit_minor"`
	TaxRatePct     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate_pct"`
	DiscountPct    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_pct"`
	LineTotalMinor int64           `gorm:"not null;default:0" json:"line_total_minor"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new line item
func (l *LineItem) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LineItem model
func (LineItem) TableName() string {
	return "line_items"
}
