package order

import (
	"context"

	"github.com/safar/storefront/internal/models"
)

// Repository abstracts order persistence so the service stays free of
// storage-engine specifics. Append assigns the order's identity;
// implementations must make allocation collision-free under concurrent
// calls and must never overwrite one order with another's write.
type Repository interface {
	Append(ctx context.Context, o *models.Order) error
	Find(ctx context.Context, id int64) (*models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)

	// UpdateStatus replaces only the status field and returns the
	// updated order. Every other field is immutable after Append.
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)

	// FindByIdempotencyKey returns the order previously created by the
	// user under key, or ErrOrderNotFound.
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (*models.Order, error)
}
