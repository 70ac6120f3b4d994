package cart

import (
	"github.com/javajoker/storefront/internal/models"
)

// localCalculations applies the storefront price formula to one line.
func localCalculations(item models.CartItem) models.ItemCalculations {
	var price, gst float64
	if item.Product != nil {
		price = item.Product.Price
		gst = item.Product.GST
	}
	return models.CalculateItem(price, gst, item.Quantity)
}

// lineCalculations prefers the server's figures when the line carries them.
func lineCalculations(item models.CartItem) models.ItemCalculations {
	if item.ItemCalculations != nil {
		return *item.ItemCalculations
	}
	return localCalculations(item)
}

// refreshCalculations recomputes figures for lines that already carry them
// after the quantity changed from previous. Lines without a product keep the
// server's figures, scaled to the new quantity.
func refreshCalculations(item *models.CartItem, previous int) {
	if item.ItemCalculations == nil {
		return
	}
	var calc models.ItemCalculations
	if item.Product == nil {
		calc = models.ScaleCalculations(*item.ItemCalculations, previous, item.Quantity)
	} else {
		calc = localCalculations(*item)
	}
	item.ItemCalculations = &calc
}

// Summarize derives cart totals. It has no side effects.
func Summarize(items []models.CartItem) models.CartSummary {
	var acc models.SummaryAccumulator
	for _, item := range items {
		acc.Add(lineCalculations(item))
	}
	return acc.Summary()
}

// TotalQuantity is the number of units across all lines.
func TotalQuantity(items []models.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
