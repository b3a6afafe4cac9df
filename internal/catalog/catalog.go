// Package catalog is the authoritative source for product existence,
// price, and stock. Order creation reads prices from here at the moment
// of checkout; client-supplied prices are never consulted.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/storefront/internal/apperr"
	"github.com/safar/storefront/internal/models"
)

type Lookup interface {
	// Product returns the current catalog row for id, or an error with
	// kind not_found when no such product exists.
	Product(ctx context.Context, id int64) (*models.Product, error)
}

// DBCatalog implements Lookup over the products table.
type DBCatalog struct {
	db *sql.DB
}

func NewDBCatalog(db *sql.DB) *DBCatalog {
	return &DBCatalog{db: db}
}

func (c *DBCatalog) Product(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, sku, name, description, price, stock_quantity, image_url, created_at, updated_at, version
		FROM products
		WHERE id = $1`

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ProductNotFound(id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}
