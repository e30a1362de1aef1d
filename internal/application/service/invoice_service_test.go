package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/pkg/apperror"
)

func TestDeriveInvoiceStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 10)

	tests := []struct {
		name    string
		invoice entity.Invoice
		want    enum.InvoiceStatus
	}{
		{"zero balance is paid", entity.Invoice{Status: enum.InvoiceStatusSent, TotalMinor: 1000, PaidMinor: 1000, BalanceMinor: 0, DueDate: &past}, enum.InvoiceStatusPaid},
		{"past due with balance is overdue", entity.Invoice{Status: enum.InvoiceStatusSent, TotalMinor: 1000, BalanceMinor: 1000, DueDate: &past}, enum.InvoiceStatusOverdue},
		{"overdue wins over partial", entity.Invoice{Status: enum.InvoiceStatusSent, TotalMinor: 1000, PaidMinor: 400, BalanceMinor: 600, DueDate: &past}, enum.InvoiceStatusOverdue},
		{"partly paid before due date", entity.Invoice{Status: enum.InvoiceStatusSent, TotalMinor: 1000, PaidMinor: 400, BalanceMinor: 600, DueDate: &future}, enum.InvoiceStatusPartial},
		{"unpaid keeps persisted status", entity.Invoice{Status: enum.InvoiceStatusSent, TotalMinor: 1000, BalanceMinor: 1000, DueDate: &future}, enum.InvoiceStatusSent},
		{"no due date is never overdue", entity.Invoice{Status: enum.InvoiceStatusDraft, TotalMinor: 1000, BalanceMinor: 1000}, enum.InvoiceStatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveInvoiceStatus(&tt.invoice, now); got != tt.want {
				t.Errorf("DeriveInvoiceStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

// seedInvoice creates an unpaid invoice for deal
func seedInvoice(t *testing.T, env *testEnv, deal *entity.Deal, totalMinor int64, due time.Time) *entity.Invoice {
	t.Helper()
	invoice := &entity.Invoice{
		Number:        "INV-TEST0001",
		CompanyID:     env.company.ID,
		DealID:        &deal.ID,
		Status:        enum.InvoiceStatusSent,
		Currency:      "SEK",
		IssueDate:     due.AddDate(0, 0, -30),
		DueDate:       &due,
		SubtotalMinor: totalMinor,
		TotalMinor:    totalMinor,
		BalanceMinor:  totalMinor,
	}
	if err := env.store.Invoices.Create(context.Background(), invoice); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return invoice
}

func TestRecordPaymentPartialThenFull(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	deal := env.seedDeal(t, "Negotiation", 0)
	invoice := seedInvoice(t, env, deal, 10000, time.Now().UTC().AddDate(0, 0, 7))

	partial, err := env.invoices.RecordPayment(ctx, invoice.ID, 4000)
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if partial.Invoice.PaidMinor != 4000 || partial.Invoice.BalanceMinor != 6000 {
		t.Errorf("unexpected amounts after partial payment: %+v", partial.Invoice.Invoice)
	}
	if partial.Invoice.EffectiveStatus != enum.InvoiceStatusPartial {
		t.Errorf("effective status = %s, want partial", partial.Invoice.EffectiveStatus)
	}
	if got := env.dealStage(t, deal); got != "Negotiation" {
		t.Errorf("partial payment moved deal to %s", got)
	}

	full, err := env.invoices.RecordPayment(ctx, invoice.ID, 6000)
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if full.Invoice.Status != enum.InvoiceStatusPaid || full.Invoice.BalanceMinor != 0 {
		t.Errorf("unexpected invoice after full payment: %+v", full.Invoice.Invoice)
	}
	if got := env.dealStage(t, deal); got != StageWon {
		t.Errorf("deal stage = %s, want Won", got)
	}

	reloaded, err := env.invoices.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice returned error: %v", err)
	}
	if reloaded.PaidMinor != 10000 || reloaded.Status != enum.InvoiceStatusPaid {
		t.Errorf("payment not persisted: %+v", reloaded.Invoice)
	}
	if n := env.count(t, &entity.Activity{}, "type = ? AND deal_id = ?", enum.ActivityPaymentRecorded, deal.ID); n != 2 {
		t.Errorf("expected 2 payment activities, got %d", n)
	}
}

func TestRecordPaymentRejects(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	deal := env.seedDeal(t, "Negotiation", 0)
	invoice := seedInvoice(t, env, deal, 5000, time.Now().UTC().AddDate(0, 0, 7))

	tests := []struct {
		name   string
		id     uuid.UUID
		amount int64
		code   int
	}{
		{"zero amount", invoice.ID, 0, http.StatusBadRequest},
		{"negative amount", invoice.ID, -100, http.StatusBadRequest},
		{"more than balance", invoice.ID, 5001, http.StatusBadRequest},
		{"unknown invoice", uuid.New(), 100, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.invoices.RecordPayment(ctx, tt.id, tt.amount)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := apperror.GetAppError(err).Code; code != tt.code {
				t.Errorf("status = %d, want %d", code, tt.code)
			}
		})
	}

	if _, err := env.invoices.RecordPayment(ctx, invoice.ID, 5000); err != nil {
		t.Fatalf("full payment: %v", err)
	}
	_, err := env.invoices.RecordPayment(ctx, invoice.ID, 1)
	if err == nil || apperror.GetAppError(err).Message != "Invoice is already paid" {
		t.Errorf("expected already paid error, got %v", err)
	}
}

func TestGetInvoiceDerivesOverdue(t *testing.T) {
	env := newTestEnv(t, nil)
	deal := env.seedDeal(t, "Negotiation", 0)
	invoice := seedInvoice(t, env, deal, 5000, time.Now().UTC().AddDate(0, 0, -3))

	view, err := env.invoices.GetInvoice(context.Background(), invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice returned error: %v", err)
	}
	if view.Status != enum.InvoiceStatusSent || view.EffectiveStatus != enum.InvoiceStatusOverdue {
		t.Errorf("status = %s, effective = %s", view.Status, view.EffectiveStatus)
	}
}
