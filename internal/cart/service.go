package cart

import (
	"context"

	"github.com/safar/storefront/internal/apperr"
	"github.com/safar/storefront/internal/catalog"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/pricing"
)

// Service applies cart mutations load-mutate-save against the store.
// Product snapshots for new lines come from the catalog; no stock check
// happens at this layer.
type Service struct {
	store   *Store
	catalog catalog.Lookup
}

func NewService(store *Store, lookup catalog.Lookup) *Service {
	return &Service{store: store, catalog: lookup}
}

func (s *Service) Get(ctx context.Context, userID int64) (*models.Cart, error) {
	return s.store.Load(ctx, userID)
}

func (s *Service) AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperr.ErrInvalidQuantity
	}

	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	AddLine(c, product, quantity)

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*models.Cart, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	SetQuantity(c, productID, quantity)

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID int64) (*models.Cart, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	RemoveLine(c, productID)

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.store.Delete(ctx, userID)
}

// Summary prices the current cart the same way checkout will, so the
// figure shown on the cart page matches the order total for unchanged
// catalog prices.
func (s *Service) Summary(ctx context.Context, userID int64) (*pricing.Quote, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	quote := pricing.Price(Subtotal(c))
	return &quote, nil
}
