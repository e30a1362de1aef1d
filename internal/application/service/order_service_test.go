package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/internal/testutil"
	"github.com/sangkips/dealflow-api/pkg/apperror"
)

// acceptedOrder runs a deal through quote acceptance and returns the order
func acceptedOrder(t *testing.T, env *testEnv, deal *entity.Deal) *entity.Order {
	t.Helper()
	ctx := context.Background()
	quote := createQuoteWithLines(t, env, deal)
	result, err := env.quotes.UpdateQuoteStatus(ctx, quote.ID, enum.QuoteStatusAccepted)
	if err != nil {
		t.Fatalf("accept quote: %v", err)
	}
	order, err := env.orders.GetOrder(ctx, result.Conversion.ID)
	if err != nil {
		t.Fatalf("GetOrder returned error: %v", err)
	}
	return order
}

func TestUpdateOrderStatusInvoicedCreatesInvoice(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	deal := env.seedDeal(t, "Prospecting", 0)
	order := acceptedOrder(t, env, deal)

	result, err := env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusInvoiced)
	if err != nil {
		t.Fatalf("UpdateOrderStatus returned error: %v", err)
	}
	if !result.Changed || result.Conversion == nil || result.Conversion.Existing {
		t.Fatalf("expected a new invoice, got %+v", result)
	}

	view, err := env.invoices.GetInvoice(ctx, result.Conversion.ID)
	if err != nil {
		t.Fatalf("GetInvoice returned error: %v", err)
	}
	if view.TotalMinor != order.TotalMinor || len(view.Lines) != len(order.Lines) {
		t.Errorf("invoice does not mirror the order: %+v", view.Invoice)
	}
	// Company terms of 30 days apply
	if want := view.IssueDate.AddDate(0, 0, 30); view.DueDate == nil || !view.DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", view.DueDate, want)
	}
	if view.EffectiveStatus != enum.InvoiceStatusDraft {
		t.Errorf("effective status = %s, want draft", view.EffectiveStatus)
	}

	// The order is kept and marked invoiced
	reloaded, err := env.orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder returned error: %v", err)
	}
	if reloaded.Status != enum.OrderStatusInvoiced || len(reloaded.Lines) != 2 {
		t.Errorf("unexpected order after invoicing: %+v", reloaded)
	}
	if got := env.dealStage(t, deal); got != StageWon {
		t.Errorf("deal stage = %s, want Won", got)
	}
}

func TestUpdateOrderStatusCancelledReopensDeal(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	deal := env.seedDeal(t, "Proposal", 0)
	order := acceptedOrder(t, env, deal)
	if got := env.dealStage(t, deal); got != StageWon {
		t.Fatalf("deal stage = %s, want Won", got)
	}

	result, err := env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("UpdateOrderStatus returned error: %v", err)
	}
	if !result.Changed || result.Conversion != nil {
		t.Errorf("unexpected result: %+v", result)
	}
	if got := env.dealStage(t, deal); got != "Negotiation" {
		t.Errorf("deal stage = %s, want Negotiation", got)
	}
	if n := env.count(t, &entity.Activity{}, "type = ? AND deal_id = ?", enum.ActivityOrderStatusChanged, deal.ID); n != 1 {
		t.Errorf("expected one order_status_changed activity, got %d", n)
	}

	_, err = env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusInvoiced)
	if err == nil || apperror.GetAppError(err).Code != http.StatusBadRequest {
		t.Errorf("expected bad request invoicing a cancelled order, got %v", err)
	}
	if n := env.count(t, &entity.Invoice{}, "order_id = ?", order.ID); n != 0 {
		t.Errorf("expected no invoice, got %d", n)
	}
}

func TestUpdateOrderStatusSameStatusIsNoop(t *testing.T) {
	env := newTestEnv(t, nil)
	deal := env.seedDeal(t, "Proposal", 0)
	order := acceptedOrder(t, env, deal)
	activities := env.count(t, &entity.Activity{}, "")

	result, err := env.orders.UpdateOrderStatus(context.Background(), order.ID, enum.OrderStatusAccepted)
	if err != nil || result.Changed {
		t.Errorf("expected no-op, got %+v, %v", result, err)
	}
	if n := env.count(t, &entity.Activity{}, ""); n != activities {
		t.Errorf("expected no new activities, got %d", n-activities)
	}
}

// flakyInvoices fails the first invoice insert
type flakyInvoices struct {
	domainRepo.InvoiceRepository
	failed bool
}

func (r *flakyInvoices) Create(ctx context.Context, invoice *entity.Invoice) error {
	if !r.failed {
		r.failed = true
		return errors.New("store down")
	}
	return r.InvoiceRepository.Create(ctx, invoice)
}

func TestUpdateOrderStatusInvoicedRetryCreatesInvoice(t *testing.T) {
	db, store := testutil.SetupStore(t)
	store.Invoices = &flakyInvoices{InvoiceRepository: store.Invoices}
	env := newTestEnvWithStore(t, db, store, nil)
	ctx := context.Background()
	deal := env.seedDeal(t, "Proposal", 0)
	order := acceptedOrder(t, env, deal)

	if _, err := env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusInvoiced); err == nil {
		t.Fatal("expected the first invoicing to fail")
	}

	result, err := env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusInvoiced)
	if err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if result.Changed || result.Conversion == nil || result.Conversion.Existing {
		t.Fatalf("expected the retry to create the invoice, got %+v", result)
	}
	if n := env.count(t, &entity.Invoice{}, "order_id = ?", order.ID); n != 1 {
		t.Errorf("expected one invoice, got %d", n)
	}

	// A further retry answers with the same invoice
	again, err := env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusInvoiced)
	if err != nil || again.Conversion == nil || !again.Conversion.Existing || again.Conversion.ID != result.Conversion.ID {
		t.Errorf("expected the existing invoice, got %+v, %v", again, err)
	}
}
