package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestShippingBoundary(t *testing.T) {
	// Strict inequality: exactly 100.00 is not free.
	atBoundary := Price(dec("100.00"))
	assert.True(t, atBoundary.Shipping.Equal(dec("10")), "subtotal of exactly 100 pays shipping, got %s", atBoundary.Shipping)

	overBoundary := Price(dec("100.01"))
	assert.True(t, overBoundary.Shipping.Equal(decimal.Zero), "subtotal over 100 ships free, got %s", overBoundary.Shipping)
}

func TestDeterministicQuote(t *testing.T) {
	q := Price(dec("79.97"))

	assert.True(t, q.Subtotal.Equal(dec("79.97")))
	assert.True(t, q.Shipping.Equal(dec("10")))
	assert.True(t, q.Tax.Equal(dec("7.997")), "tax kept at full precision, got %s", q.Tax)
	assert.True(t, q.Total.Equal(dec("97.967")), "total kept at full precision, got %s", q.Total)
}

func TestFreeShippingTotal(t *testing.T) {
	q := Price(dec("150"))

	assert.True(t, q.Shipping.Equal(decimal.Zero))
	assert.True(t, q.Tax.Equal(dec("15")))
	assert.True(t, q.Total.Equal(dec("165")))
}

func TestZeroSubtotal(t *testing.T) {
	q := Price(decimal.Zero)

	assert.True(t, q.Shipping.Equal(dec("10")))
	assert.True(t, q.Tax.Equal(decimal.Zero))
	assert.True(t, q.Total.Equal(dec("10")))
}

func TestPurity(t *testing.T) {
	first := Price(dec("42.50"))
	second := Price(dec("42.50"))

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Shipping.Equal(second.Shipping))
}
