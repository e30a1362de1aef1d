package repository

// Store bundles one implementation of every repository. Both the gorm and the
// PostgREST backends build one of these.
type Store struct {
	Companies   CompanyRepository
	Deals       DealRepository
	Pipelines   PipelineRepository
	Quotes      QuoteRepository
	Orders      OrderRepository
	Invoices    InvoiceRepository
	LineItems   LineItemRepository
	Projects    ProjectRepository
	Activities  ActivityRepository
	Idempotency IdempotencyRepository
}
