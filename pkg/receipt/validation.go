package receipt

import (
	"math"

	"github.com/namph-hanoi/genai-image-extractor-backend/domain"
)

// DefaultTolerance is the accepted absolute difference, in currency units,
// between the calculated and the stated receipt total.
const DefaultTolerance = 0.01

type ReceiptTotals struct {
	ItemsTotal      float64
	CalculatedTotal float64
	ProvidedTotal   float64
}

// CalculateReceiptTotals sums the item costs numerically and adds the tax.
func CalculateReceiptTotals(items []domain.ReceiptItemPayload, tax, total float64) ReceiptTotals {
	var itemsTotal float64
	for _, item := range items {
		itemsTotal += item.ItemCost
	}

	return ReceiptTotals{
		ItemsTotal:      itemsTotal,
		CalculatedTotal: itemsTotal + tax,
		ProvidedTotal:   total,
	}
}

// ValidateReceiptTotals reports whether the calculated total matches the
// provided one within tolerance.
func ValidateReceiptTotals(totals ReceiptTotals, tolerance float64) bool {
	return math.Abs(totals.CalculatedTotal-totals.ProvidedTotal) <= tolerance
}
