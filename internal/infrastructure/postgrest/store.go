package postgrest

import (
	"time"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
)

// Table names
const (
	tableCompanies       = "companies"
	tableDeals           = "deals"
	tablePipelines       = "pipelines"
	tableStages          = "stages"
	tableQuotes          = "quotes"
	tableOrders          = "orders"
	tableInvoices        = "invoices"
	tableLineItems       = "line_items"
	tableProjects        = "projects"
	tableActivities      = "activities"
	tableIdempotencyKeys = "idempotency_keys"
)

// NewStore builds every repository on top of one PostgREST client
func NewStore(c *Client) *domainRepo.Store {
	return &domainRepo.Store{
		Companies:   &companyRepository{c: c},
		Deals:       &dealRepository{c: c},
		Pipelines:   &pipelineRepository{c: c},
		Quotes:      &quoteRepository{c: c},
		Orders:      &orderRepository{c: c},
		Invoices:    &invoiceRepository{c: c},
		LineItems:   &lineItemRepository{c: c},
		Projects:    &projectRepository{c: c},
		Activities:  &activityRepository{c: c},
		Idempotency: &idempotencyRepository{c: c},
	}
}

// prepare assigns the id and timestamps the database would otherwise fill in
func prepare(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now().UTC()
	if createdAt != nil && createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt != nil {
		*updatedAt = now
	}
}
