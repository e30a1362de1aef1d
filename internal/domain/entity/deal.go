package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deal represents a sales opportunity moving through a pipeline
type Deal struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Title              string         `gorm:"size:255;not null" json:"title"`
	CompanyID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	ContactID          *uuid.UUID     `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	StageID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"stage_id"`
	Currency           string         `gorm:"size:3;not null;default:'SEK'" json:"currency"`
	ExpectedValueMinor int64          `gorm:"default:0" json:"expected_value_minor"`
	CloseDate          *time.Time     `json:"close_date,omitempty"`
	Probability        *float64       `json:"probability,omitempty"`
	OwnerUserID        *uuid.UUID     `gorm:"type:uuid;index" json:"owner_user_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new deal
func (d *Deal) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Deal model
func (Deal) TableName() string {
	return "deals"
}
