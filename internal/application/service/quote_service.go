package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultCurrency is used when neither the request nor the deal names one
const DefaultCurrency = "SEK"

// StatusChangeResult is the outcome of a document status update. Conversion
// is set when the new status materialized the next document.
type StatusChangeResult struct {
	ID          uuid.UUID         `json:"id"`
	Status      string            `json:"status"`
	Changed     bool              `json:"changed"`
	Conversion  *ConversionResult `json:"conversion,omitempty"`
	SideEffects SideEffects       `json:"side_effects,omitempty"`
}

// QuoteService handles quote-related operations
type QuoteService struct {
	quoteRepo   repository.QuoteRepository
	companyRepo repository.CompanyRepository
	dealRepo    repository.DealRepository
	conversion  *ConversionService
	automation  *DealAutomationService
	activities  *ActivityService
	log         *zap.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	store *repository.Store,
	conversion *ConversionService,
	automation *DealAutomationService,
	activities *ActivityService,
	log *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:   store.Quotes,
		companyRepo: store.Companies,
		dealRepo:    store.Deals,
		conversion:  conversion,
		automation:  automation,
		activities:  activities,
		log:         log,
	}
}

// CreateQuoteInput represents the input for creating a quote
type CreateQuoteInput struct {
	CompanyID  uuid.UUID
	ContactID  *uuid.UUID
	DealID     *uuid.UUID
	Currency   string
	IssueDate  *time.Time
	ValidUntil *time.Time
	Notes      *string
	Lines      []LineInput
}

// LineInput represents a document line input
type LineInput struct {
	Description string
	SKU         *string
	Qty         decimal.Decimal
	UnitMinor   int64
	TaxRatePct  decimal.Decimal
	DiscountPct decimal.Decimal
}

// CreateQuote creates a quote with explicit lines. Totals are computed from
// the lines.
func (s *QuoteService) CreateQuote(ctx context.Context, input *CreateQuoteInput) (*QuoteResult, error) {
	company, err := s.companyRepo.GetByID(ctx, input.CompanyID)
	if err != nil {
		return nil, apperror.Wrap(errCreateQuote, err)
	}
	if company == nil {
		return nil, apperror.NewNotFoundError("Company")
	}

	currency := input.Currency
	if input.DealID != nil {
		deal, err := s.dealRepo.GetByID(ctx, *input.DealID)
		if err != nil {
			return nil, apperror.Wrap(errCreateQuote, err)
		}
		if deal == nil {
			return nil, apperror.NewNotFoundError("Deal")
		}
		if currency == "" {
			currency = deal.Currency
		}
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	lines := make([]entity.LineItem, 0, len(input.Lines))
	for i, in := range input.Lines {
		if !in.Qty.IsPositive() {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("Line %d: quantity must be positive", i+1))
		}
		if in.UnitMinor < 0 || in.TaxRatePct.IsNegative() || in.DiscountPct.IsNegative() || in.DiscountPct.GreaterThan(hundred) {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("Line %d: amounts and percentages are out of range", i+1))
		}
		lines = append(lines, entity.LineItem{
			Description: in.Description,
			SKU:         in.SKU,
			Qty:         in.Qty,
			UnitMinor:   in.UnitMinor,
			TaxRatePct:  in.TaxRatePct,
			DiscountPct: in.DiscountPct,
		})
	}

	issueDate := s.conversion.today()
	if input.IssueDate != nil {
		issueDate = *input.IssueDate
	}

	quote := &entity.Quote{
		CompanyID:  company.ID,
		ContactID:  input.ContactID,
		DealID:     input.DealID,
		Status:     enum.QuoteStatusDraft,
		Currency:   currency,
		IssueDate:  issueDate,
		ValidUntil: input.ValidUntil,
		Notes:      input.Notes,
	}

	return s.conversion.createQuote(ctx, quote, lines, errCreateQuote)
}

// GetQuote retrieves a quote with its lines
func (s *QuoteService) GetQuote(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return s.conversion.loadQuote(ctx, id)
}

// UpdateQuoteStatus moves a quote to status. Accepting converts the quote to
// an order (which removes the quote); declining fires quote_declined.
func (s *QuoteService) UpdateQuoteStatus(ctx context.Context, id uuid.UUID, status enum.QuoteStatus) (*StatusChangeResult, error) {
	if !status.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid quote status")
	}

	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}

	result := &StatusChangeResult{ID: quote.ID, Status: status.String()}
	if quote.Status == status {
		// An accepted quote still present has not been converted yet
		if status == enum.QuoteStatusAccepted {
			conversion, err := s.conversion.EnsureOrderForQuote(ctx, quote.ID)
			if err != nil {
				return nil, err
			}
			result.Conversion = conversion
		}
		return result, nil
	}
	if !quote.Status.CanTransitionTo(status) {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Cannot change quote status from %s to %s", quote.Status, status))
	}

	if err := s.quoteRepo.UpdateStatus(ctx, quote.ID, status); err != nil {
		return nil, err
	}
	result.Changed = true
	previous := quote.Status
	quote.Status = status

	fields := []zap.Field{zap.String("quote_id", quote.ID.String()), zap.String("status", status.String())}
	result.SideEffects.run(s.log, EffectActivityLog, func() error {
		return s.activities.Record(ctx, enum.ActivityQuoteStatusChanged, quote.DealID, map[string]interface{}{
			"quote_id":     quote.ID.String(),
			"quote_number": quote.Number,
			"from_status":  previous.String(),
			"to_status":    status.String(),
		})
	}, fields...)

	switch status {
	case enum.QuoteStatusAccepted:
		if quote.DealID != nil {
			result.SideEffects.run(s.log, EffectStageAutomation, func() error {
				_, err := s.automation.automateSafely(ctx, enum.TriggerQuoteAccepted, *quote.DealID, quote)
				return err
			}, fields...)
		}
		conversion, err := s.conversion.EnsureOrderForQuote(ctx, quote.ID)
		if err != nil {
			return nil, err
		}
		result.Conversion = conversion
	case enum.QuoteStatusDeclined:
		if quote.DealID != nil {
			result.SideEffects.run(s.log, EffectStageAutomation, func() error {
				_, err := s.automation.automateSafely(ctx, enum.TriggerQuoteDeclined, *quote.DealID, quote)
				return err
			}, fields...)
		}
	}

	return result, nil
}

// DeleteQuote soft-deletes a quote. Converted quotes are already gone.
func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if quote == nil {
		return apperror.NewNotFoundError("Quote")
	}
	return s.quoteRepo.SoftDelete(ctx, id)
}
