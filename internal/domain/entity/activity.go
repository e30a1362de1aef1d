package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity is an append-only business event in a deal's history
type Activity struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	Type        enum.ActivityType `gorm:"size:50;not null;index" json:"type"`
	DealID      *uuid.UUID        `gorm:"type:uuid;index" json:"deal_id,omitempty"`
	ActorUserID *uuid.UUID        `gorm:"type:uuid" json:"actor_user_id,omitempty"`
	Meta        datatypes.JSONMap `json:"meta,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new activity
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Activity model
func (Activity) TableName() string {
	return "activities"
}
