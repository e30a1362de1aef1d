package repository

import (
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"gorm.io/gorm"
)

// NewStore builds every gorm-backed repository on one connection
func NewStore(db *gorm.DB) *domainRepo.Store {
	return &domainRepo.Store{
		Companies:   NewCompanyRepository(db),
		Deals:       NewDealRepository(db),
		Pipelines:   NewPipelineRepository(db),
		Quotes:      NewQuoteRepository(db),
		Orders:      NewOrderRepository(db),
		Invoices:    NewInvoiceRepository(db),
		LineItems:   NewLineItemRepository(db),
		Projects:    NewProjectRepository(db),
		Activities:  NewActivityRepository(db),
		Idempotency: NewIdempotencyRepository(db),
	}
}
