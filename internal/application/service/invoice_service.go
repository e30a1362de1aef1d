package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/pkg/apperror"
	"go.uber.org/zap"
)

// DeriveInvoiceStatus returns the status an invoice effectively has at now.
// The persisted status is only trusted when the amounts say nothing else.
func DeriveInvoiceStatus(invoice *entity.Invoice, now time.Time) enum.InvoiceStatus {
	switch {
	case invoice.BalanceMinor == 0:
		return enum.InvoiceStatusPaid
	case invoice.DueDate != nil && invoice.DueDate.Before(now) && invoice.BalanceMinor > 0:
		return enum.InvoiceStatusOverdue
	case invoice.PaidMinor > 0 && invoice.BalanceMinor > 0:
		return enum.InvoiceStatusPartial
	}
	return invoice.Status
}

// InvoiceView is an invoice together with its derived status
type InvoiceView struct {
	*entity.Invoice
	EffectiveStatus enum.InvoiceStatus `json:"effective_status"`
}

// PaymentResult is the outcome of recording a payment
type PaymentResult struct {
	Invoice     *InvoiceView `json:"invoice"`
	SideEffects SideEffects  `json:"side_effects,omitempty"`
}

// InvoiceService handles invoice-related operations
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	writer      *documentWriter
	automation  *DealAutomationService
	activities  *ActivityService
	log         *zap.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	store *repository.Store,
	automation *DealAutomationService,
	activities *ActivityService,
	log *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: store.Invoices,
		writer:      &documentWriter{lineItemRepo: store.LineItems, log: log},
		automation:  automation,
		activities:  activities,
		log:         log,
		now:         time.Now,
	}
}

// GetInvoice retrieves an invoice with its lines and derived status
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceView, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	lines, err := s.writer.loadLines(ctx, enum.ParentTypeInvoice, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines

	return s.view(invoice), nil
}

// RecordPayment adds amountMinor to the paid amount. Paying the balance in
// full marks the invoice paid and fires invoice_paid.
func (s *InvoiceService) RecordPayment(ctx context.Context, id uuid.UUID, amountMinor int64) (*PaymentResult, error) {
	if amountMinor <= 0 {
		return nil, apperror.NewBadRequestError("Payment amount must be positive")
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if invoice.BalanceMinor == 0 {
		return nil, apperror.NewBadRequestError("Invoice is already paid")
	}
	if amountMinor > invoice.BalanceMinor {
		return nil, apperror.NewBadRequestError("Payment exceeds the outstanding balance")
	}

	invoice.PaidMinor += amountMinor
	invoice.BalanceMinor = invoice.TotalMinor - invoice.PaidMinor
	if invoice.BalanceMinor == 0 {
		invoice.Status = enum.InvoiceStatusPaid
	}

	if err := s.invoiceRepo.UpdatePayment(ctx, invoice.ID, invoice.PaidMinor, invoice.BalanceMinor, invoice.Status); err != nil {
		return nil, err
	}

	result := &PaymentResult{Invoice: s.view(invoice)}
	fields := []zap.Field{zap.String("invoice_id", invoice.ID.String())}

	result.SideEffects.run(s.log, EffectActivityLog, func() error {
		return s.activities.Record(ctx, enum.ActivityPaymentRecorded, invoice.DealID, map[string]interface{}{
			"invoice_id":     invoice.ID.String(),
			"invoice_number": invoice.Number,
			"amount_minor":   amountMinor,
			"balance_minor":  invoice.BalanceMinor,
		})
	}, fields...)
	if invoice.BalanceMinor == 0 && invoice.DealID != nil {
		result.SideEffects.run(s.log, EffectStageAutomation, func() error {
			_, err := s.automation.automateSafely(ctx, enum.TriggerInvoicePaid, *invoice.DealID, invoice)
			return err
		}, fields...)
	}

	return result, nil
}

func (s *InvoiceService) view(invoice *entity.Invoice) *InvoiceView {
	return &InvoiceView{Invoice: invoice, EffectiveStatus: DeriveInvoiceStatus(invoice, s.now())}
}
