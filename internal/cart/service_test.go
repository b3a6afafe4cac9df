package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/safar/storefront/internal/apperr"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products map[int64]*models.Product
}

func (f *fakeCatalog) Product(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.ProductNotFound(id)
	}
	out := *p
	return &out, nil
}

func setupTestService(t *testing.T) *Service {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	lookup := &fakeCatalog{products: map[int64]*models.Product{
		1: product(1, "T-Shirt", "19.99"),
		2: product(2, "Hoodie", "39.99"),
	}}

	return NewService(NewStore(client, time.Hour, log), lookup)
}

func TestServiceAddItemPersistsWriteThrough(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)

	// A fresh load must observe the mutation.
	c, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, "T-Shirt", c.Lines[0].Name)
}

func TestServiceAddItemUnknownProduct(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.AddItem(context.Background(), 7, 99, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	c, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, c.Lines, "failed add leaves the cart untouched")
}

func TestServiceAddItemRejectsBadQuantity(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.AddItem(context.Background(), 7, 1, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestServiceUpdateQuantityZeroRemoves(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(ctx, 7, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestServiceClear(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, 7))

	c, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestServiceSummaryMatchesPricing(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 7, 2, 1)
	require.NoError(t, err)

	quote, err := svc.Summary(ctx, 7)
	require.NoError(t, err)

	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("79.97")))
	assert.True(t, quote.Shipping.Equal(decimal.RequireFromString("10")))
	assert.True(t, quote.Tax.Equal(decimal.RequireFromString("7.997")))
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("97.967")))
}
