package service

import (
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are the money sums of a document, in minor units
type Totals struct {
	SubtotalMinor int64
	TaxMinor      int64
	TotalMinor    int64
}

// LineTotalMinor returns qty * unit * (1 - discount/100) rounded half away
// from zero. The result is before tax.
func LineTotalMinor(qty decimal.Decimal, unitMinor int64, discountPct decimal.Decimal) int64 {
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(hundred))
	return qty.Mul(decimal.NewFromInt(unitMinor)).Mul(factor).Round(0).IntPart()
}

// LineTaxMinor returns the tax on a line total, rounded half away from zero
func LineTaxMinor(lineTotalMinor int64, taxRatePct decimal.Decimal) int64 {
	return decimal.NewFromInt(lineTotalMinor).Mul(taxRatePct).Div(hundred).Round(0).IntPart()
}

// PriceLines sets LineTotalMinor on every line and sums the document totals.
// Tax is rounded per line.
func PriceLines(lines []entity.LineItem) Totals {
	var totals Totals
	for i := range lines {
		line := &lines[i]
		line.LineTotalMinor = LineTotalMinor(line.Qty, line.UnitMinor, line.DiscountPct)
		totals.SubtotalMinor += line.LineTotalMinor
		totals.TaxMinor += LineTaxMinor(line.LineTotalMinor, line.TaxRatePct)
	}
	totals.TotalMinor = totals.SubtotalMinor + totals.TaxMinor
	return totals
}
