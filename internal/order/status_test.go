package order

import (
	"context"
	"testing"

	"github.com/safar/storefront/internal/apperr"
	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = &auth.Principal{UserID: 1, Role: models.RoleAdmin}

func createPendingOrder(t *testing.T, svc *Service) *models.Order {
	t.Helper()
	o, err := svc.Create(context.Background(), shopper, CreateRequest{
		Lines: []LineRequest{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	return o
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	svc, _, _ := newTestService()
	o := createPendingOrder(t, svc)

	_, err := svc.SetStatus(context.Background(), admin, o.ID, "archived")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	unchanged, err := svc.Get(context.Background(), admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, unchanged.Status)
}

func TestSetStatusUnknownOrder(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.SetStatus(context.Background(), admin, 999, models.OrderStatusShipped)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSetStatusRequiresPrincipal(t *testing.T) {
	svc, _, _ := newTestService()
	o := createPendingOrder(t, svc)

	_, err := svc.SetStatus(context.Background(), nil, o.ID, models.OrderStatusShipped)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestSetStatusChangesOnlyStatus(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	before := createPendingOrder(t, svc)

	after, err := svc.SetStatus(ctx, admin, before.ID, models.OrderStatusDelivered)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusDelivered, after.Status)
	assert.True(t, after.Total.Equal(before.Total))
	assert.Equal(t, before.Lines, after.Lines)
	assert.True(t, after.CreatedAt.Equal(before.CreatedAt))
	assert.Equal(t, before.OrderNumber, after.OrderNumber)
	assert.Equal(t, before.UserID, after.UserID)
}

func TestSetStatusIsMembershipOnly(t *testing.T) {
	// Any of the four values is accepted from any current state, even
	// delivered back to pending.
	svc, _, _ := newTestService()
	ctx := context.Background()
	o := createPendingOrder(t, svc)

	for _, status := range []models.OrderStatus{
		models.OrderStatusDelivered,
		models.OrderStatusPending,
		models.OrderStatusCanceled,
		models.OrderStatusShipped,
	} {
		updated, err := svc.SetStatus(ctx, admin, o.ID, status)
		require.NoError(t, err, "transition to %s", status)
		assert.Equal(t, status, updated.Status)
	}
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, models.OrderStatusPending.Valid())
	assert.True(t, models.OrderStatusShipped.Valid())
	assert.True(t, models.OrderStatusDelivered.Valid())
	assert.True(t, models.OrderStatusCanceled.Valid())
	assert.False(t, models.OrderStatus("archived").Valid())
	assert.False(t, models.OrderStatus("").Valid())
	assert.False(t, models.OrderStatus("Pending").Valid())
}
