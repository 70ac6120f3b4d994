// internal/models/money.go
package models

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half away from zero to two decimal places.
func RoundMoney(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// CalculateItem derives line figures from a unit price, a GST percentage and
// a quantity. A non-positive gst yields no tax.
func CalculateItem(price, gst float64, quantity int) ItemCalculations {
	unit := decimal.NewFromFloat(price).Round(2)
	subtotal := unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)

	gstAmount := decimal.Zero
	if gst > 0 {
		gstAmount = subtotal.Mul(decimal.NewFromFloat(gst)).Div(hundred).Round(2)
	}

	return ItemCalculations{
		UnitPrice:   unit.InexactFloat64(),
		Subtotal:    subtotal.InexactFloat64(),
		GSTAmount:   gstAmount.InexactFloat64(),
		TotalAmount: subtotal.Add(gstAmount).Round(2).InexactFloat64(),
	}
}

// ScaleCalculations moves line figures from one quantity to another, keeping
// the unit price. It is for lines whose price and tax rate are unknown.
func ScaleCalculations(calc ItemCalculations, from, to int) ItemCalculations {
	if from < 1 {
		return calc
	}
	factor := decimal.NewFromInt(int64(to)).Div(decimal.NewFromInt(int64(from)))
	subtotal := decimal.NewFromFloat(calc.Subtotal).Mul(factor).Round(2)
	gst := decimal.NewFromFloat(calc.GSTAmount).Mul(factor).Round(2)
	return ItemCalculations{
		UnitPrice:   calc.UnitPrice,
		Subtotal:    subtotal.InexactFloat64(),
		GSTAmount:   gst.InexactFloat64(),
		TotalAmount: subtotal.Add(gst).Round(2).InexactFloat64(),
	}
}

// SummaryAccumulator sums line figures without float drift.
type SummaryAccumulator struct {
	subtotal decimal.Decimal
	gst      decimal.Decimal
	count    int
}

func (a *SummaryAccumulator) Add(calc ItemCalculations) {
	a.subtotal = a.subtotal.Add(decimal.NewFromFloat(calc.Subtotal))
	a.gst = a.gst.Add(decimal.NewFromFloat(calc.GSTAmount))
	a.count++
}

func (a *SummaryAccumulator) Summary() CartSummary {
	subtotal := a.subtotal.Round(2)
	gst := a.gst.Round(2)
	return CartSummary{
		Subtotal:    subtotal.InexactFloat64(),
		GSTAmount:   gst.InexactFloat64(),
		TotalAmount: subtotal.Add(gst).Round(2).InexactFloat64(),
		ItemCount:   a.count,
	}
}

// MinorUnits converts an amount to the smallest currency unit (cents, paise).
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}
