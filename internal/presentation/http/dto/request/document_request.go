package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateQuoteRequest represents a quote creation request
type CreateQuoteRequest struct {
	CompanyID  uuid.UUID     `json:"company_id" binding:"required"`
	ContactID  *uuid.UUID    `json:"contact_id"`
	DealID     *uuid.UUID    `json:"deal_id"`
	Currency   string        `json:"currency" binding:"omitempty,len=3"`
	IssueDate  string        `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	ValidUntil string        `json:"valid_until" binding:"omitempty,datetime=2006-01-02"`
	Notes      *string       `json:"notes"`
	Lines      []LineRequest `json:"lines" binding:"dive"`
}

// LineRequest represents one document line. Quantities and rates accept
// JSON numbers or decimal strings.
type LineRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	SKU         *string         `json:"sku" binding:"omitempty,max=100"`
	Qty         decimal.Decimal `json:"qty"`
	UnitMinor   int64           `json:"unit_minor" binding:"min=0"`
	TaxRatePct  decimal.Decimal `json:"tax_rate_pct"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
}

// UpdateStatusRequest represents a document status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AutomationRequest fires one trigger for a deal
type AutomationRequest struct {
	Trigger string `json:"trigger" binding:"required"`
}

// BatchAutomationRequest fires triggers for several deals in order
type BatchAutomationRequest struct {
	Items []BatchAutomationItem `json:"items" binding:"required,min=1,max=500,dive"`
}

// BatchAutomationItem is one deal/trigger pair of a batch
type BatchAutomationItem struct {
	DealID  uuid.UUID `json:"deal_id" binding:"required"`
	Trigger string    `json:"trigger" binding:"required"`
}

// RecordPaymentRequest represents a payment against an invoice
type RecordPaymentRequest struct {
	AmountMinor int64 `json:"amount_minor" binding:"required"`
}
