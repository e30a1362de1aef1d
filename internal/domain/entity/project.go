package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Project is the delivery project of a won deal. One per deal by convention.
type Project struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	DealID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"deal_id"`
	Name      string             `gorm:"size:255;not null" json:"name"`
	Status    enum.ProjectStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	DeletedAt gorm.DeletedAt     `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new project
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Project model
func (Project) TableName() string {
	return "projects"
}
