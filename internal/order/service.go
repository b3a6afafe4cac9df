// Package order converts a cart snapshot into a persisted order with
// immutable pricing and governs the order's status lifecycle.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/safar/storefront/internal/apperr"
	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/catalog"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Service struct {
	repo    Repository
	catalog catalog.Lookup
	log     *logrus.Logger
}

func NewService(repo Repository, lookup catalog.Lookup, log *logrus.Logger) *Service {
	return &Service{repo: repo, catalog: lookup, log: log}
}

type LineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateRequest deliberately carries no price field anywhere: unit
// prices are read from the catalog at creation time, so a caller cannot
// influence what an order charges.
type CreateRequest struct {
	Lines           []LineRequest  `json:"lines"`
	ShippingAddress models.Address `json:"shipping_address"`
	PaymentMethod   string         `json:"payment_method"`
	IdempotencyKey  string         `json:"-"`
}

// Create validates the request, snapshots catalog prices, and persists
// the order all-or-nothing: if any line fails to resolve, nothing is
// written. Stock is neither checked nor decremented here.
func (s *Service) Create(ctx context.Context, principal *auth.Principal, req CreateRequest) (*models.Order, error) {
	if principal == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if len(req.Lines) == 0 {
		return nil, apperr.ErrEmptyOrder
	}

	if req.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, principal.UserID, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if apperr.KindOf(err) != apperr.KindNotFound {
			return nil, err
		}
	}

	// Every product must resolve before any quantity is judged, so a
	// request with both defects reports the unknown product.
	products := make([]*models.Product, len(req.Lines))
	for i, line := range req.Lines {
		product, err := s.catalog.Product(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		products[i] = product
	}
	for _, line := range req.Lines {
		if line.Quantity < 1 {
			return nil, apperr.ErrInvalidQuantity
		}
	}

	now := time.Now().UTC()
	lines := make([]models.OrderLine, 0, len(req.Lines))

	for i, line := range req.Lines {
		product := products[i]
		lines = append(lines, models.OrderLine{
			ProductID:     product.ID,
			Quantity:      line.Quantity,
			PriceSnapshot: product.Price,
			Subtotal:      product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
			CreatedAt:     now,
		})
	}

	subtotal := lines[0].Subtotal
	for _, line := range lines[1:] {
		subtotal = subtotal.Add(line.Subtotal)
	}
	quote := pricing.Price(subtotal)

	o := &models.Order{
		OrderNumber:    generateOrderNumber(),
		UserID:         principal.UserID,
		Lines:          lines,
		Subtotal:       quote.Subtotal,
		Shipping:       quote.Shipping,
		Tax:            quote.Tax,
		Total:          quote.Total,
		Status:         models.OrderStatusPending,
		ShippingAddr:   req.ShippingAddress,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}

	if err := s.repo.Append(ctx, o); err != nil {
		// Two requests racing on the same key: the loser fetches the
		// order the winner created.
		if req.IdempotencyKey != "" && database.IsUniqueViolation(err) {
			return s.repo.FindByIdempotencyKey(ctx, principal.UserID, req.IdempotencyKey)
		}
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"user_id":      o.UserID,
		"total":        o.Total.String(),
	}).Info("order created")

	return o, nil
}

// SetStatus assigns a new status. Membership in the four enumerated
// values is the only transition rule: any current status may move to any
// other. Role enforcement happens at the HTTP boundary; the machine
// itself only refuses values outside the enum.
func (s *Service) SetStatus(ctx context.Context, principal *auth.Principal, orderID int64, status models.OrderStatus) (*models.Order, error) {
	if principal == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if !status.Valid() {
		return nil, apperr.ErrInvalidStatus
	}

	o, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"status":   o.Status,
	}).Info("order status updated")

	return o, nil
}

// Get returns a single order. Only its owner or an admin may read it.
func (s *Service) Get(ctx context.Context, principal *auth.Principal, id int64) (*models.Order, error) {
	if principal == nil {
		return nil, apperr.ErrUnauthenticated
	}

	o, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, apperr.ErrForbidden
	}

	return o, nil
}

func (s *Service) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.repo.ListAll(ctx)
}

// ListByUser returns a user's order history. Non-admins may only list
// their own.
func (s *Service) ListByUser(ctx context.Context, principal *auth.Principal, userID int64) ([]models.Order, error) {
	if principal == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if userID != principal.UserID && !principal.IsAdmin() {
		return nil, apperr.ErrForbidden
	}

	return s.repo.ListByUser(ctx, userID)
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s", uuid.NewString())
}
