// Package bootstrap builds the Entity Store and the service graph shared by
// the API server and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/sangkips/dealflow-api/internal/application/service"
	"github.com/sangkips/dealflow-api/internal/config"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/internal/infrastructure/database"
	"github.com/sangkips/dealflow-api/internal/infrastructure/postgrest"
	"github.com/sangkips/dealflow-api/internal/infrastructure/repository"
	"go.uber.org/zap"
)

// Services is the wired application layer
type Services struct {
	Resolver   *service.StageResolver
	Activities *service.ActivityService
	Automation *service.DealAutomationService
	Conversion *service.ConversionService
	Quotes     *service.QuoteService
	Orders     *service.OrderService
	Invoices   *service.InvoiceService
}

// OpenStore connects the Entity Store selected by cfg.Store.Driver. The
// postgres driver also migrates the schema and seeds the default pipeline.
// The returned function releases the connection.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*domainRepo.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgREST:
		client := postgrest.NewClient(cfg.Store.PostgRESTURL, cfg.Store.PostgRESTToken, cfg.Store.Timeout, log)
		log.Info("Using PostgREST entity store", zap.String("url", cfg.Store.PostgRESTURL))
		return postgrest.NewStore(client), func() {}, nil

	case config.StoreDriverPostgres, "":
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			return nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if err := database.SeedDefaultData(ctx, db, log); err != nil {
			log.Warn("Failed to seed default data", zap.Error(err))
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		log.Info("Using postgres entity store", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
		return repository.NewStore(db), closeFn, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// LoadRules returns the rule table at path, or the default table when path
// is empty
func LoadRules(path string, log *zap.Logger) (service.Rules, error) {
	if path == "" {
		return service.DefaultRules(), nil
	}
	rules, err := service.LoadRulesFile(path)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded automation rules", zap.String("path", path), zap.Int("rules", len(rules)))
	return rules, nil
}

// NewServices wires every service on store
func NewServices(store *domainRepo.Store, cfg config.AutomationConfig, rules service.Rules, log *zap.Logger) *Services {
	s := &Services{}
	s.Resolver = service.NewStageResolver(store.Pipelines)
	s.Activities = service.NewActivityService(store.Activities)
	s.Automation = service.NewDealAutomationService(store.Deals, store.Projects, s.Resolver, s.Activities, log, rules)
	s.Conversion = service.NewConversionService(store, s.Automation, s.Activities, cfg, log)
	s.Quotes = service.NewQuoteService(store, s.Conversion, s.Automation, s.Activities, log)
	s.Orders = service.NewOrderService(store, s.Conversion, s.Automation, s.Activities, log)
	s.Invoices = service.NewInvoiceService(store, s.Automation, s.Activities, log)
	return s
}
