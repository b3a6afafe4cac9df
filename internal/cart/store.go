package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/safar/storefront/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Store persists carts write-through in a per-user key-value slot so the
// working set survives across sessions. An unreadable stored value is a
// logged, non-fatal condition: the caller gets a fresh empty cart.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
	sfg    singleflight.Group
}

func NewStore(client *redis.Client, ttl time.Duration, log *logrus.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (s *Store) Load(ctx context.Context, userID int64) (*models.Cart, error) {
	// Collapse concurrent loads of the same slot into one fetch.
	v, err, _ := s.sfg.Do(cartKey(userID), func() (interface{}, error) {
		data, err := s.client.Get(ctx, cartKey(userID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return New(userID), nil
		}
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}

		var cart models.Cart
		if err := json.Unmarshal(data, &cart); err != nil {
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("stored cart unreadable, starting empty")
			return New(userID), nil
		}

		return &cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.Cart), nil
}

// Save writes the cart back before the mutation is considered committed;
// a reload immediately afterwards observes the new state.
func (s *Store) Save(ctx context.Context, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(cart.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}
