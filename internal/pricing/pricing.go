// Package pricing computes the checkout totals shown on the cart summary
// and stamped onto created orders. It is pure: the same subtotal always
// produces the same quote.
package pricing

import "github.com/shopspring/decimal"

var (
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.NewFromInt(10)
	taxRate          = decimal.NewFromFloat(0.10)
)

type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Price derives shipping, tax, and total from a subtotal. Shipping is
// waived only when the subtotal strictly exceeds 100; a subtotal of
// exactly 100.00 still pays the flat 10 charge. All arithmetic stays at
// full precision; rounding to two places is a presentation concern and
// must not happen before downstream computations consume these values.
func Price(subtotal decimal.Decimal) Quote {
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(taxRate)

	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
