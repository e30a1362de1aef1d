package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/config"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/pkg/apperror"
	"github.com/sangkips/dealflow-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Error prefixes of hard conversion failures
const (
	errCreateOrderFromQuote   = "Failed to create order from quote: "
	errCreateInvoiceFromOrder = "Failed to create invoice from order: "
	errCreateQuoteFromDeal    = "Failed to create quote from deal: "
	errCreateQuote            = "Failed to create quote: "
)

// DealHasQuoteMessage is returned when a deal already has an active quote
const DealHasQuoteMessage = "This deal already has a quote. Open the existing quote instead of creating a new one."

// DefaultQuoteValidityDays is how long a quote made from a deal stays valid
const DefaultQuoteValidityDays = 30

// ConversionResult identifies the document a conversion produced. Existing
// is set when the document was already there and nothing was created.
type ConversionResult struct {
	ID          uuid.UUID   `json:"id"`
	Number      string      `json:"number,omitempty"`
	Existing    bool        `json:"existing"`
	SideEffects SideEffects `json:"side_effects,omitempty"`
}

// QuoteResult is a newly created quote with the outcome of its side effects
type QuoteResult struct {
	Quote       *entity.Quote `json:"quote"`
	SideEffects SideEffects   `json:"side_effects,omitempty"`
}

// ConversionService materializes the next document of the chain
// quote -> order -> invoice
type ConversionService struct {
	quoteRepo   repository.QuoteRepository
	orderRepo   repository.OrderRepository
	invoiceRepo repository.InvoiceRepository
	companyRepo repository.CompanyRepository
	dealRepo    repository.DealRepository
	writer      *documentWriter
	automation  *DealAutomationService
	activities  *ActivityService
	cfg         config.AutomationConfig
	log         *zap.Logger
	now         func() time.Time
}

// NewConversionService creates a new conversion service
func NewConversionService(
	store *repository.Store,
	automation *DealAutomationService,
	activities *ActivityService,
	cfg config.AutomationConfig,
	log *zap.Logger,
) *ConversionService {
	return &ConversionService{
		quoteRepo:   store.Quotes,
		orderRepo:   store.Orders,
		invoiceRepo: store.Invoices,
		companyRepo: store.Companies,
		dealRepo:    store.Deals,
		writer:      &documentWriter{lineItemRepo: store.LineItems, log: log},
		automation:  automation,
		activities:  activities,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// EnsureOrderForQuote returns the order converted from quoteID, creating it
// when absent. A newly created order is accepted, carries the quote's totals
// and lines unchanged, and the quote is deleted afterwards.
func (s *ConversionService) EnsureOrderForQuote(ctx context.Context, quoteID uuid.UUID) (*ConversionResult, error) {
	existing, err := s.orderRepo.GetByQuoteID(ctx, quoteID)
	if err != nil {
		return nil, apperror.Wrap(errCreateOrderFromQuote, err)
	}
	if existing != nil {
		return &ConversionResult{ID: existing.ID, Number: existing.Number, Existing: true}, nil
	}

	quote, err := s.loadQuote(ctx, quoteID)
	if err != nil {
		return nil, apperror.Wrap(errCreateOrderFromQuote, err)
	}

	notes := "Order created from quote " + quote.Number
	if quote.Notes != nil && *quote.Notes != "" {
		notes = *quote.Notes
	}

	order := &entity.Order{
		Number:        utils.GenerateReferenceNo(utils.OrderPrefix),
		CompanyID:     quote.CompanyID,
		ContactID:     quote.ContactID,
		DealID:        quote.DealID,
		QuoteID:       &quote.ID,
		Status:        enum.OrderStatusAccepted,
		Currency:      quote.Currency,
		OrderDate:     s.today(),
		Notes:         &notes,
		SubtotalMinor: quote.SubtotalMinor,
		TaxMinor:      quote.TaxMinor,
		TotalMinor:    quote.TotalMinor,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		if isDuplicate(err) {
			if winner, getErr := s.orderRepo.GetByQuoteID(ctx, quoteID); getErr == nil && winner != nil {
				return &ConversionResult{ID: winner.ID, Number: winner.Number, Existing: true}, nil
			}
		}
		return nil, apperror.Wrap(errCreateOrderFromQuote, err)
	}

	lines, err := s.writer.writeLines(ctx, enum.ParentTypeOrder, order.ID, copyLines(quote.Lines))
	if err != nil {
		return nil, apperror.Wrap(errCreateOrderFromQuote, err)
	}
	order.Lines = lines

	result := &ConversionResult{ID: order.ID, Number: order.Number}
	fields := []zap.Field{zap.String("quote_id", quote.ID.String()), zap.String("order_id", order.ID.String())}

	result.SideEffects.run(s.log, EffectActivityLog, func() error {
		return s.activities.Record(ctx, enum.ActivityOrderCreatedFromQuote, quote.DealID, map[string]interface{}{
			"quote_id":     quote.ID.String(),
			"quote_number": quote.Number,
			"order_id":     order.ID.String(),
			"order_number": order.Number,
			"total_minor":  order.TotalMinor,
		})
	}, fields...)
	if quote.DealID != nil {
		result.SideEffects.run(s.log, EffectStageAutomation, func() error {
			_, err := s.automation.automateSafely(ctx, enum.TriggerOrderCreated, *quote.DealID, order)
			return err
		}, fields...)
	}
	result.SideEffects.run(s.log, EffectSourceCleanup, func() error {
		return s.deleteQuote(ctx, quote.ID)
	}, fields...)

	s.log.Info("Order created from quote",
		zap.String("quote_id", quote.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.Int("lines", len(lines)),
	)
	return result, nil
}

// EnsureInvoiceForOrder returns the invoice created from orderID, creating it
// when absent. The order is kept.
func (s *ConversionService) EnsureInvoiceForOrder(ctx context.Context, orderID uuid.UUID) (*ConversionResult, error) {
	existing, err := s.invoiceRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperror.Wrap(errCreateInvoiceFromOrder, err)
	}
	if existing != nil {
		return &ConversionResult{ID: existing.ID, Number: existing.Number, Existing: true}, nil
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, apperror.Wrap(errCreateInvoiceFromOrder, err)
	}

	notes := "Invoice created from order " + order.Number
	if order.Notes != nil && *order.Notes != "" {
		notes = *order.Notes
	}

	issueDate := s.today()
	dueDate := issueDate.AddDate(0, 0, s.paymentDays(ctx, order.CompanyID))

	invoice := &entity.Invoice{
		Number:        utils.GenerateReferenceNo(utils.InvoicePrefix),
		CompanyID:     order.CompanyID,
		ContactID:     order.ContactID,
		DealID:        order.DealID,
		OrderID:       &order.ID,
		Status:        enum.InvoiceStatusDraft,
		Currency:      order.Currency,
		IssueDate:     issueDate,
		DueDate:       &dueDate,
		Notes:         &notes,
		SubtotalMinor: order.SubtotalMinor,
		TaxMinor:      order.TaxMinor,
		TotalMinor:    order.TotalMinor,
		PaidMinor:     0,
		BalanceMinor:  order.TotalMinor,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		if isDuplicate(err) {
			if winner, getErr := s.invoiceRepo.GetByOrderID(ctx, orderID); getErr == nil && winner != nil {
				return &ConversionResult{ID: winner.ID, Number: winner.Number, Existing: true}, nil
			}
		}
		return nil, apperror.Wrap(errCreateInvoiceFromOrder, err)
	}

	lines, err := s.writer.writeLines(ctx, enum.ParentTypeInvoice, invoice.ID, copyLines(order.Lines))
	if err != nil {
		return nil, apperror.Wrap(errCreateInvoiceFromOrder, err)
	}
	invoice.Lines = lines

	result := &ConversionResult{ID: invoice.ID, Number: invoice.Number}
	fields := []zap.Field{zap.String("order_id", order.ID.String()), zap.String("invoice_id", invoice.ID.String())}

	result.SideEffects.run(s.log, EffectActivityLog, func() error {
		return s.activities.Record(ctx, enum.ActivityInvoiceCreatedFromOrder, order.DealID, map[string]interface{}{
			"order_id":       order.ID.String(),
			"order_number":   order.Number,
			"invoice_id":     invoice.ID.String(),
			"invoice_number": invoice.Number,
			"total_minor":    invoice.TotalMinor,
			"due_date":       dueDate.Format("2006-01-02"),
		})
	}, fields...)
	if order.DealID != nil {
		result.SideEffects.run(s.log, EffectStageAutomation, func() error {
			_, err := s.automation.automateSafely(ctx, enum.TriggerInvoiceCreated, *order.DealID, invoice)
			return err
		}, fields...)
	}

	s.log.Info("Invoice created from order",
		zap.String("order_id", order.ID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.Int("lines", len(lines)),
	)
	return result, nil
}

// CreateQuoteFromDeal drafts a quote for a deal that has none. The quote has
// one line worth the deal's expected value, or no lines when that is zero.
func (s *ConversionService) CreateQuoteFromDeal(ctx context.Context, dealID uuid.UUID) (*QuoteResult, error) {
	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return nil, apperror.Wrap(errCreateQuoteFromDeal, err)
	}
	if deal == nil {
		return nil, apperror.Wrap(errCreateQuoteFromDeal, apperror.NewNotFoundError("Deal"))
	}

	var lines []entity.LineItem
	if deal.ExpectedValueMinor > 0 {
		lines = append(lines, entity.LineItem{
			Description: deal.Title,
			Qty:         decimal.NewFromInt(1),
			UnitMinor:   deal.ExpectedValueMinor,
			TaxRatePct:  decimal.NewFromFloat(s.cfg.DefaultTaxRatePct),
			DiscountPct: decimal.Zero,
		})
	}

	issueDate := s.today()
	validUntil := issueDate.AddDate(0, 0, DefaultQuoteValidityDays)
	quote := &entity.Quote{
		CompanyID:  deal.CompanyID,
		ContactID:  deal.ContactID,
		DealID:     &deal.ID,
		Status:     enum.QuoteStatusDraft,
		Currency:   deal.Currency,
		IssueDate:  issueDate,
		ValidUntil: &validUntil,
	}
	if quote.Currency == "" {
		quote.Currency = DefaultCurrency
	}

	return s.createQuote(ctx, quote, lines, errCreateQuoteFromDeal)
}

// createQuote prices the lines, stores the quote header then its lines, and
// fires quote_created for the deal. A deal keeps at most one active quote.
func (s *ConversionService) createQuote(ctx context.Context, quote *entity.Quote, lines []entity.LineItem, errPrefix string) (*QuoteResult, error) {
	if quote.DealID != nil {
		active, err := s.quoteRepo.ListActiveByDeal(ctx, *quote.DealID)
		if err != nil {
			return nil, apperror.Wrap(errPrefix, err)
		}
		if len(active) > 0 {
			return nil, apperror.NewConflictError(DealHasQuoteMessage)
		}
	}

	totals := PriceLines(lines)
	quote.Number = utils.GenerateReferenceNo(utils.QuotePrefix)
	quote.SubtotalMinor = totals.SubtotalMinor
	quote.TaxMinor = totals.TaxMinor
	quote.TotalMinor = totals.TotalMinor
	if quote.Status == "" {
		quote.Status = enum.QuoteStatusDraft
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, apperror.Wrap(errPrefix, err)
	}

	written, err := s.writer.writeLines(ctx, enum.ParentTypeQuote, quote.ID, lines)
	if err != nil {
		return nil, apperror.Wrap(errPrefix, err)
	}
	quote.Lines = written

	result := &QuoteResult{Quote: quote}
	fields := []zap.Field{zap.String("quote_id", quote.ID.String())}

	result.SideEffects.run(s.log, EffectActivityLog, func() error {
		return s.activities.Record(ctx, enum.ActivityQuoteCreated, quote.DealID, map[string]interface{}{
			"quote_id":     quote.ID.String(),
			"quote_number": quote.Number,
			"total_minor":  quote.TotalMinor,
		})
	}, fields...)
	if quote.DealID != nil {
		result.SideEffects.run(s.log, EffectStageAutomation, func() error {
			_, err := s.automation.automateSafely(ctx, enum.TriggerQuoteCreated, *quote.DealID, quote)
			return err
		}, fields...)
	}

	s.log.Info("Quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("number", quote.Number),
		zap.Int("lines", len(written)),
	)
	return result, nil
}

// loadQuote returns a quote with its lines, or a not found error
func (s *ConversionService) loadQuote(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}

	lines, err := s.writer.loadLines(ctx, enum.ParentTypeQuote, quote.ID)
	if err != nil {
		return nil, err
	}
	quote.Lines = lines
	return quote, nil
}

// loadOrder returns an order with its lines, or a not found error
func (s *ConversionService) loadOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	lines, err := s.writer.loadLines(ctx, enum.ParentTypeOrder, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

// deleteQuote removes a converted quote and its line rows
func (s *ConversionService) deleteQuote(ctx context.Context, id uuid.UUID) error {
	if err := s.quoteRepo.HardDelete(ctx, id); err != nil {
		return err
	}
	return s.writer.deleteLines(ctx, enum.ParentTypeQuote, id)
}

// paymentDays returns the company's payment terms. Lookup failures fall back
// to the configured default.
func (s *ConversionService) paymentDays(ctx context.Context, companyID uuid.UUID) int {
	fallback := s.cfg.DefaultPaymentDays
	if fallback <= 0 {
		fallback = entity.DefaultPaymentDays
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		s.log.Warn("Company lookup failed, using default payment days",
			zap.String("company_id", companyID.String()),
			zap.Int("payment_days", fallback),
			zap.Error(err),
		)
		return fallback
	}
	if company == nil || company.PaymentDays <= 0 {
		return fallback
	}
	return company.PaymentDays
}

// today returns the current date at midnight UTC
func (s *ConversionService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

