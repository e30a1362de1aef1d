package service

import (
	"testing"

	"github.com/sangkips/dealflow-api/internal/config"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv wires every service on one sqlite database
type testEnv struct {
	db         *gorm.DB
	store      *domainRepo.Store
	pipeline   *entity.Pipeline
	company    *entity.Company
	resolver   *StageResolver
	activities *ActivityService
	automation *DealAutomationService
	conversion *ConversionService
	quotes     *QuoteService
	orders     *OrderService
	invoices   *InvoiceService
}

var testAutomationConfig = config.AutomationConfig{
	DefaultPaymentDays: 14,
	DefaultTaxRatePct:  25,
}

func newTestEnv(t *testing.T, rules Rules) *testEnv {
	t.Helper()
	db, store := testutil.SetupStore(t)
	return newTestEnvWithStore(t, db, store, rules)
}

func newTestEnvWithStore(t *testing.T, db *gorm.DB, store *domainRepo.Store, rules Rules) *testEnv {
	t.Helper()
	log := zap.NewNop()

	env := &testEnv{
		db:       db,
		store:    store,
		pipeline: testutil.SeedSalesPipeline(t, db),
		company:  testutil.SeedCompany(t, db, 30),
	}
	env.resolver = NewStageResolver(store.Pipelines)
	env.activities = NewActivityService(store.Activities)
	env.automation = NewDealAutomationService(store.Deals, store.Projects, env.resolver, env.activities, log, rules)
	env.conversion = NewConversionService(store, env.automation, env.activities, testAutomationConfig, log)
	env.quotes = NewQuoteService(store, env.conversion, env.automation, env.activities, log)
	env.orders = NewOrderService(store, env.conversion, env.automation, env.activities, log)
	env.invoices = NewInvoiceService(store, env.automation, env.activities, log)
	return env
}

func (e *testEnv) seedDeal(t *testing.T, stage string, expectedValueMinor int64) *entity.Deal {
	t.Helper()
	return testutil.SeedDeal(t, e.db, e.company.ID, testutil.StageID(t, e.pipeline, stage), expectedValueMinor)
}

func (e *testEnv) dealStage(t *testing.T, deal *entity.Deal) string {
	t.Helper()
	var current entity.Deal
	if err := e.db.First(&current, "id = ?", deal.ID).Error; err != nil {
		t.Fatalf("reload deal: %v", err)
	}
	for _, stage := range e.pipeline.Stages {
		if stage.ID == current.StageID {
			return stage.Name
		}
	}
	return ""
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	tx := e.db.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
