// Package cart holds one principal's working set of product lines prior
// to checkout. Lines merge by product id, keep insertion order for
// display stability, and never exist with a quantity below 1. Derived
// values are always recomputed from the lines so they cannot drift.
package cart

import (
	"time"

	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

func New(userID int64) *models.Cart {
	now := time.Now().UTC()
	return &models.Cart{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddLine merges quantity into an existing line for the product, or
// appends a new line carrying the product snapshot the cart page needs.
// Adding quantity 1 twice is identical to adding quantity 2 once.
func AddLine(c *models.Cart, p *models.Product, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity += quantity
			c.UpdatedAt = time.Now().UTC()
			return
		}
	}

	c.Lines = append(c.Lines, models.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  quantity,
	})
	c.UpdatedAt = time.Now().UTC()
}

// SetQuantity replaces a line's quantity. A quantity of zero or less
// removes the line, so a quantity below 1 can never be stored.
func SetQuantity(c *models.Cart, productID int64, quantity int) {
	if quantity <= 0 {
		RemoveLine(c, productID)
		return
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			c.UpdatedAt = time.Now().UTC()
			return
		}
	}
}

// RemoveLine deletes the line for productID. Removing an absent line is
// a no-op, not an error.
func RemoveLine(c *models.Cart, productID int64) {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return
		}
	}
}

func Clear(c *models.Cart) {
	c.Lines = nil
	c.UpdatedAt = time.Now().UTC()
}

func ItemCount(c *models.Cart) int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

func Subtotal(c *models.Cart) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}
