package database

import (
	"context"
	"fmt"

	"github.com/sangkips/dealflow-api/internal/config"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPipelineName is the pipeline seeded on an empty database
const DefaultPipelineName = "Sales"

// DefaultStageNames are the stages of the seeded pipeline, in order.
// The automation rule table addresses stages by these names.
var DefaultStageNames = []string{
	"Prospecting",
	"Qualification",
	"Proposal",
	"Negotiation",
	"Won",
	"Lost",
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}

// Models lists every table managed by AutoMigrate
func Models() []interface{} {
	return []interface{}{
		// CRM entities
		&entity.Company{},
		&entity.Pipeline{},
		&entity.Stage{},
		&entity.Deal{},
		&entity.Project{},

		// Document chain
		&entity.Quote{},
		&entity.Order{},
		&entity.Invoice{},
		&entity.LineItem{},

		// System entities
		&entity.Activity{},
		&entity.IdempotencyKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultData creates the default sales pipeline when no pipeline exists
func SeedDefaultData(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.Pipeline{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count pipelines: %w", err)
	}
	if count > 0 {
		return nil
	}

	pipeline := entity.Pipeline{Name: DefaultPipelineName}
	for i, name := range DefaultStageNames {
		pipeline.Stages = append(pipeline.Stages, entity.Stage{Name: name, Position: i})
	}
	if err := db.WithContext(ctx).Create(&pipeline).Error; err != nil {
		return fmt.Errorf("failed to seed default pipeline: %w", err)
	}

	log.Info("Seeded default pipeline",
		zap.String("pipeline_id", pipeline.ID.String()),
		zap.Int("stages", len(pipeline.Stages)),
	)
	return nil
}
