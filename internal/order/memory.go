package order

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/safar/storefront/internal/apperr"
	"github.com/safar/storefront/internal/models"
)

// MemoryRepository keeps orders in process memory. Identity comes from
// an atomic counter, never from the collection size, so concurrent
// appends cannot collide. All reads return copies; callers can never
// reach into the stored record.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID atomic.Int64
	orders map[int64]*models.Order
	ids    []int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[int64]*models.Order)}
}

func (r *MemoryRepository) Append(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID.Add(1)
	for i := range o.Lines {
		o.Lines[i].ID = int64(i + 1)
		o.Lines[i].OrderID = o.ID
	}

	stored := copyOrder(o)
	r.orders[o.ID] = &stored
	r.ids = append(r.ids, o.ID)
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, id int64) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.ErrOrderNotFound
	}

	out := copyOrder(o)
	return &out, nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, copyOrder(r.orders[id]))
	}
	return out, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID int64) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Order
	for _, id := range r.ids {
		if r.orders[id].UserID == userID {
			out = append(out, copyOrder(r.orders[id]))
		}
	}
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.ErrOrderNotFound
	}

	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	o.Version++

	out := copyOrder(o)
	return &out, nil
}

func (r *MemoryRepository) FindByIdempotencyKey(_ context.Context, userID int64, key string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.ids {
		o := r.orders[id]
		if o.UserID == userID && o.IdempotencyKey == key {
			out := copyOrder(o)
			return &out, nil
		}
	}
	return nil, apperr.ErrOrderNotFound
}

// Len reports the number of persisted orders.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func copyOrder(o *models.Order) models.Order {
	out := *o
	out.Lines = make([]models.OrderLine, len(o.Lines))
	copy(out.Lines, o.Lines)
	return out
}
