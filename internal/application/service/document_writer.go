package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/domain/repository"
	"go.uber.org/zap"
)

// documentWriter stores document lines as line_items rows after the header
// exists. The store offers no transaction across rows, so a failure here
// leaves the header with the lines written so far.
type documentWriter struct {
	lineItemRepo repository.LineItemRepository
	log          *zap.Logger
}

// writeLines inserts lines under the given parent with position = index.
// It returns the rows written before any failure.
func (w *documentWriter) writeLines(ctx context.Context, parentType enum.ParentType, parentID uuid.UUID, lines []entity.LineItem) ([]entity.LineItem, error) {
	written := make([]entity.LineItem, 0, len(lines))
	for i, line := range lines {
		row := line
		row.ID = uuid.Nil
		row.ParentType = parentType
		row.ParentID = parentID
		row.Position = i

		if err := w.lineItemRepo.Create(ctx, &row); err != nil {
			w.log.Error("Document left with partial lines",
				zap.String("parent_type", parentType.String()),
				zap.String("parent_id", parentID.String()),
				zap.Int("lines_written", len(written)),
				zap.Int("lines_expected", len(lines)),
				zap.Error(err),
			)
			return written, fmt.Errorf("line %d: %w", i+1, err)
		}
		written = append(written, row)
	}
	return written, nil
}

// loadLines returns the lines of a document in position order
func (w *documentWriter) loadLines(ctx context.Context, parentType enum.ParentType, parentID uuid.UUID) ([]entity.LineItem, error) {
	return w.lineItemRepo.ListByParent(ctx, parentType, parentID)
}

// deleteLines removes every line of a document
func (w *documentWriter) deleteLines(ctx context.Context, parentType enum.ParentType, parentID uuid.UUID) error {
	return w.lineItemRepo.DeleteByParent(ctx, parentType, parentID)
}

// copyLines maps source lines 1:1 for a new document. Amounts are kept as
// they are.
func copyLines(src []entity.LineItem) []entity.LineItem {
	lines := make([]entity.LineItem, len(src))
	for i, line := range src {
		lines[i] = entity.LineItem{
			Description:    line.Description,
			SKU:            line.SKU,
			Qty:            line.Qty,
			UnitMinor:      line.UnitMinor,
			TaxRatePct:     line.TaxRatePct,
			DiscountPct:    line.DiscountPct,
			LineTotalMinor: line.LineTotalMinor,
		}
	}
	return lines
}

// isDuplicate reports whether a header insert lost a unique index race
func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
