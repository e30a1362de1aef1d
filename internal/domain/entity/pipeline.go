package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pipeline is an ordered sequence of stages a deal moves through
type Pipeline struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Stages []Stage `gorm:"foreignKey:PipelineID" json:"stages,omitempty"`
}

// BeforeCreate generates a UUID before creating a new pipeline
func (p *Pipeline) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Pipeline model
func (Pipeline) TableName() string {
	return "pipelines"
}

// Stage is one named phase of a pipeline. Names are expected, but not
// required, to be unique within a pipeline.
type Stage struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PipelineID uuid.UUID `gorm:"type:uuid;not null;index" json:"pipeline_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new stage
func (s *Stage) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Stage model
func (Stage) TableName() string {
	return "stages"
}
