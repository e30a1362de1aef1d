package postgrest

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
)

type quoteRepository struct {
	c *Client
}

func (r *quoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	lines := quote.Lines
	quote.Lines = nil
	prepare(&quote.ID, &quote.CreatedAt, &quote.UpdatedAt)

	err := insert(ctx, r.c, tableQuotes, quote, eq("number", quote.Number))
	quote.Lines = lines
	return err
}

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return first[entity.Quote](ctx, r.c, tableQuotes, active(eq("id", id.String())))
}

func (r *quoteRepository) ListActiveByDeal(ctx context.Context, dealID uuid.UUID) ([]entity.Quote, error) {
	q := active(eq("deal_id", dealID.String()))
	q.Set("order", "created_at.desc")
	return find[entity.Quote](ctx, r.c, tableQuotes, q)
}

func (r *quoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.QuoteStatus) error {
	_, err := patch[entity.Quote](ctx, r.c, tableQuotes, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	return err
}

func (r *quoteRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return softDelete(ctx, r.c, tableQuotes, id)
}

func (r *quoteRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return remove(ctx, r.c, tableQuotes, eq("id", id.String()))
}

type orderRepository struct {
	c *Client
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	lines := order.Lines
	order.Lines = nil
	prepare(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	err := insert(ctx, r.c, tableOrders, order, eq("number", order.Number))
	order.Lines = lines
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return first[entity.Order](ctx, r.c, tableOrders, active(eq("id", id.String())))
}

func (r *orderRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*entity.Order, error) {
	q := active(eq("quote_id", quoteID.String()))
	q.Set("order", "created_at.asc")
	return first[entity.Order](ctx, r.c, tableOrders, q)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) error {
	_, err := patch[entity.Order](ctx, r.c, tableOrders, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	return err
}

type invoiceRepository struct {
	c *Client
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	lines := invoice.Lines
	invoice.Lines = nil
	prepare(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)

	err := insert(ctx, r.c, tableInvoices, invoice, eq("number", invoice.Number))
	invoice.Lines = lines
	return err
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return first[entity.Invoice](ctx, r.c, tableInvoices, active(eq("id", id.String())))
}

func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entity.Invoice, error) {
	q := active(eq("order_id", orderID.String()))
	q.Set("order", "created_at.asc")
	return first[entity.Invoice](ctx, r.c, tableInvoices, q)
}

func (r *invoiceRepository) UpdatePayment(ctx context.Context, id uuid.UUID, paidMinor, balanceMinor int64, status enum.InvoiceStatus) error {
	_, err := patch[entity.Invoice](ctx, r.c, tableInvoices, id, map[string]interface{}{
		"paid_minor":    paidMinor,
		"balance_minor": balanceMinor,
		"status":        status,
		"updated_at":    time.Now().UTC(),
	})
	return err
}

type lineItemRepository struct {
	c *Client
}

func (r *lineItemRepository) Create(ctx context.Context, line *entity.LineItem) error {
	prepare(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	return insert(ctx, r.c, tableLineItems, line, eq(
		"parent_type", line.ParentType.String(),
		"parent_id", line.ParentID.String(),
		"position", strconv.Itoa(line.Position),
	))
}

func (r *lineItemRepository) ListByParent(ctx context.Context, parentType enum.ParentType, parentID uuid.UUID) ([]entity.LineItem, error) {
	q := eq("parent_type", parentType.String(), "parent_id", parentID.String())
	q.Set("order", "position.asc")
	return find[entity.LineItem](ctx, r.c, tableLineItems, q)
}

func (r *lineItemRepository) DeleteByParent(ctx context.Context, parentType enum.ParentType, parentID uuid.UUID) error {
	return remove(ctx, r.c, tableLineItems, eq("parent_type", parentType.String(), "parent_id", parentID.String()))
}
