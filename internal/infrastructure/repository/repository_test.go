package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/internal/testutil"
	"github.com/sangkips/dealflow-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

func TestOrderCreateDuplicateQuote(t *testing.T) {
	_, store := testutil.SetupStore(t)
	ctx := context.Background()
	quoteID := uuid.New()

	first := &entity.Order{Number: "SO-00000001", CompanyID: uuid.New(), QuoteID: &quoteID, Status: enum.OrderStatusAccepted, Currency: "SEK", OrderDate: time.Now()}
	if err := store.Orders.Create(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	second := &entity.Order{Number: "SO-00000002", CompanyID: uuid.New(), QuoteID: &quoteID, Status: enum.OrderStatusAccepted, Currency: "SEK", OrderDate: time.Now()}
	if err := store.Orders.Create(ctx, second); !errors.Is(err, domainRepo.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	found, err := store.Orders.GetByQuoteID(ctx, quoteID)
	if err != nil || found == nil || found.ID != first.ID {
		t.Errorf("GetByQuoteID = %+v, %v", found, err)
	}
	missing, err := store.Orders.GetByQuoteID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Errorf("expected nil for unknown quote, got %+v, %v", missing, err)
	}
}

func TestOrdersWithoutQuoteDoNotCollide(t *testing.T) {
	_, store := testutil.SetupStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		order := &entity.Order{Number: "SO-MANUAL0" + string(rune('1'+i)), CompanyID: uuid.New(), Status: enum.OrderStatusDraft, Currency: "SEK", OrderDate: time.Now()}
		if err := store.Orders.Create(ctx, order); err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
	}
}

func TestInvoiceCreateDuplicateOrder(t *testing.T) {
	_, store := testutil.SetupStore(t)
	ctx := context.Background()
	orderID := uuid.New()

	newInvoice := func(number string) *entity.Invoice {
		return &entity.Invoice{Number: number, CompanyID: uuid.New(), OrderID: &orderID, Status: enum.InvoiceStatusDraft, Currency: "SEK", IssueDate: time.Now(), TotalMinor: 100, BalanceMinor: 100}
	}
	if err := store.Invoices.Create(ctx, newInvoice("INV-00000001")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := store.Invoices.Create(ctx, newInvoice("INV-00000002")); !errors.Is(err, domainRepo.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestInvoiceUpdatePayment(t *testing.T) {
	_, store := testutil.SetupStore(t)
	ctx := context.Background()
	invoice := &entity.Invoice{Number: "INV-00000003", CompanyID: uuid.New(), Status: enum.InvoiceStatusSent, Currency: "SEK", IssueDate: time.Now(), TotalMinor: 500, BalanceMinor: 500}
	if err := store.Invoices.Create(ctx, invoice); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Invoices.UpdatePayment(ctx, invoice.ID, 500, 0, enum.InvoiceStatusPaid); err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}
	reloaded, err := store.Invoices.GetByID(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.PaidMinor != 500 || reloaded.BalanceMinor != 0 || reloaded.Status != enum.InvoiceStatusPaid {
		t.Errorf("unexpected invoice: %+v", reloaded)
	}
}

func TestQuoteSoftAndHardDelete(t *testing.T) {
	db, store := testutil.SetupStore(t)
	ctx := context.Background()
	dealID := uuid.New()

	quote := &entity.Quote{Number: "QT-00000001", CompanyID: uuid.New(), DealID: &dealID, Status: enum.QuoteStatusDraft, Currency: "SEK", IssueDate: time.Now()}
	if err := store.Quotes.Create(ctx, quote); err != nil {
		t.Fatalf("create: %v", err)
	}
	active, err := store.Quotes.ListActiveByDeal(ctx, dealID)
	if err != nil || len(active) != 1 {
		t.Fatalf("expected one active quote, got %d, %v", len(active), err)
	}

	if err := store.Quotes.SoftDelete(ctx, quote.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if got, _ := store.Quotes.GetByID(ctx, quote.ID); got != nil {
		t.Error("soft-deleted quote must be hidden")
	}
	if active, _ := store.Quotes.ListActiveByDeal(ctx, dealID); len(active) != 0 {
		t.Errorf("expected no active quotes, got %d", len(active))
	}
	var n int64
	db.Unscoped().Model(&entity.Quote{}).Where("id = ?", quote.ID).Count(&n)
	if n != 1 {
		t.Fatalf("soft delete must keep the row, found %d", n)
	}

	if err := store.Quotes.HardDelete(ctx, quote.ID); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}
	db.Unscoped().Model(&entity.Quote{}).Where("id = ?", quote.ID).Count(&n)
	if n != 0 {
		t.Errorf("hard delete must remove the row, found %d", n)
	}
}

func TestLineItemsOrderedByPosition(t *testing.T) {
	_, store := testutil.SetupStore(t)
	ctx := context.Background()
	parentID := uuid.New()

	for _, pos := range []int{2, 0, 1} {
		line := &entity.LineItem{
			ParentType:  enum.ParentTypeOrder,
			ParentID:    parentID,
			Position:    pos,
			Description: "line",
			Qty:         decimal.NewFromInt(int64(pos + 1)),
			TaxRatePct:  decimal.NewFromInt(25),
		}
		if err := store.LineItems.Create(ctx, line); err != nil {
			t.Fatalf("create line: %v", err)
		}
	}
	// Same parent id under another document type
	other := &entity.LineItem{ParentType: enum.ParentTypeQuote, ParentID: parentID, Description: "other", Qty: decimal.NewFromInt(1)}
	if err := store.LineItems.Create(ctx, other); err != nil {
		t.Fatalf("create line: %v", err)
	}

	lines, err := store.LineItems.ListByParent(ctx, enum.ParentTypeOrder, parentID)
	if err != nil {
		t.Fatalf("ListByParent: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if line.Position != i {
			t.Errorf("line %d has position %d", i, line.Position)
		}
	}

	if err := store.LineItems.DeleteByParent(ctx, enum.ParentTypeOrder, parentID); err != nil {
		t.Fatalf("DeleteByParent: %v", err)
	}
	if lines, _ := store.LineItems.ListByParent(ctx, enum.ParentTypeOrder, parentID); len(lines) != 0 {
		t.Errorf("expected order lines removed, got %d", len(lines))
	}
	if lines, _ := store.LineItems.ListByParent(ctx, enum.ParentTypeQuote, parentID); len(lines) != 1 {
		t.Errorf("quote lines must be untouched, got %d", len(lines))
	}
}

func TestPipelineListStages(t *testing.T) {
	db, store := testutil.SetupStore(t)
	ctx := context.Background()
	sales := testutil.SeedSalesPipeline(t, db)
	testutil.SeedPipeline(t, db, "Partners", "Intro", "Signed")

	stages, err := store.Pipelines.ListStages(ctx, &sales.ID)
	if err != nil {
		t.Fatalf("ListStages: %v", err)
	}
	if len(stages) != len(sales.Stages) {
		t.Fatalf("expected %d stages, got %d", len(sales.Stages), len(stages))
	}
	for i, stage := range stages {
		if stage.Name != sales.Stages[i].Name {
			t.Errorf("stage %d = %s, want %s", i, stage.Name, sales.Stages[i].Name)
		}
	}

	all, err := store.Pipelines.ListStages(ctx, nil)
	if err != nil || len(all) != len(sales.Stages)+2 {
		t.Errorf("expected stages of every pipeline, got %d, %v", len(all), err)
	}

	stage, err := store.Pipelines.GetStage(ctx, sales.Stages[0].ID)
	if err != nil || stage == nil || stage.PipelineID != sales.ID {
		t.Errorf("GetStage = %+v, %v", stage, err)
	}
	if missing, err := store.Pipelines.GetStage(ctx, uuid.New()); err != nil || missing != nil {
		t.Errorf("expected nil for unknown stage, got %+v, %v", missing, err)
	}
}

func TestActivityListByDealPaginates(t *testing.T) {
	_, store := testutil.SetupStore(t)
	ctx := context.Background()
	dealID := uuid.New()

	for i := 0; i < 5; i++ {
		activity := &entity.Activity{
			Type:      enum.ActivityStageChanged,
			DealID:    &dealID,
			Meta:      map[string]interface{}{"step": i},
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := store.Activities.Create(ctx, activity); err != nil {
			t.Fatalf("create activity: %v", err)
		}
	}
	otherDeal := uuid.New()
	if err := store.Activities.Create(ctx, &entity.Activity{Type: enum.ActivityQuoteCreated, DealID: &otherDeal}); err != nil {
		t.Fatalf("create activity: %v", err)
	}

	items, total, err := store.Activities.ListByDeal(ctx, dealID, &pagination.PaginationParams{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("ListByDeal: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("expected 2 of 5, got %d of %d", len(items), total)
	}
	// Newest first
	if fmt.Sprint(items[0].Meta["step"]) != "2" {
		t.Errorf("unexpected page content: %v", items[0].Meta)
	}
}

func TestIdempotencyKeys(t *testing.T) {
	db, store := testutil.SetupStore(t)
	ctx := context.Background()
	userID := uuid.New()

	live := &entity.IdempotencyKey{Key: "abc", UserID: userID, Endpoint: "/api/v1/quotes", ResponseCode: 201, ResponseBody: `{}`, ExpiresAt: time.Now().Add(time.Hour)}
	expired := &entity.IdempotencyKey{Key: "old", UserID: userID, Endpoint: "/api/v1/quotes", ResponseCode: 201, ExpiresAt: time.Now().Add(-time.Hour)}
	for _, key := range []*entity.IdempotencyKey{live, expired} {
		if err := store.Idempotency.Create(ctx, key); err != nil {
			t.Fatalf("create key: %v", err)
		}
	}

	now := time.Now()
	if got, err := store.Idempotency.GetLive(ctx, "abc", uuid.New(), now); err != nil || got != nil {
		t.Errorf("keys are scoped per user, got %+v, %v", got, err)
	}
	if got, err := store.Idempotency.GetLive(ctx, "old", userID, now); err != nil || got != nil {
		t.Errorf("expired key must not be live, got %+v, %v", got, err)
	}
	if err := store.Idempotency.Create(ctx, &entity.IdempotencyKey{Key: "abc", UserID: userID, Endpoint: "/api/v1/quotes", ResponseCode: 201, ExpiresAt: now.Add(time.Hour)}); !errors.Is(err, domainRepo.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for a reused key, got %v", err)
	}

	if err := store.Idempotency.DeleteExpired(ctx, now); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	var remaining int64
	db.Model(&entity.IdempotencyKey{}).Count(&remaining)
	if remaining != 1 {
		t.Errorf("expected only the live key to remain, got %d", remaining)
	}
	if got, _ := store.Idempotency.GetLive(ctx, "abc", userID, now); got == nil || got.ResponseCode != 201 {
		t.Errorf("live key must survive, got %+v", got)
	}
}
