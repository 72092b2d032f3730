package invoice

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// Totals holds the derived amounts for an invoice.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// ComputeTotals derives subtotal, tax and total from the item set. It is
// pure: persisting the result is the caller's job, done explicitly after
// every item mutation rather than inside a generic save path. Amounts are
// kept at two decimal places.
func ComputeTotals(items []*Item, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero

	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	tax := subtotal.Mul(taxRate.Div(oneHundred)).Round(2)

	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax),
	}
}
