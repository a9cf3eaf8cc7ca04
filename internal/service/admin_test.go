package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/repository"
)

func TestAdminService_Stats(t *testing.T) {
	store := repository.NewMemoryStore()
	orders := NewOrderService(store, OrderOptions{TaxRate: dec("0.10")})
	svc := NewAdminService(store)
	ctx := context.Background()

	seedUser(t, store, "root", model.RoleAdmin)
	alice := seedUser(t, store, "alice", model.RoleCustomer)
	bob := seedUser(t, store, "bob", model.RoleCustomer)
	a := seedProduct(t, store, "a", "10.00", 50)
	b := seedProduct(t, store, "b", "5.00", 50)

	addToCart(t, store, alice.ID, a.ID, 2)
	addToCart(t, store, alice.ID, b.ID, 1)
	_, err := orders.PlaceOrder(ctx, alice.ID, placeOrderReq())
	require.NoError(t, err)

	addToCart(t, store, bob.ID, b.ID, 4)
	_, err = orders.PlaceOrder(ctx, bob.ID, placeOrderReq())
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.CustomerCount)
	assert.Equal(t, 2, stats.OrderCount)
	assert.Equal(t, 7, stats.ProductsSold)
	assert.Equal(t, 2, stats.ProductCount)
	// 33.49 + (20.00 + 2.00 + 5.99)
	assert.True(t, stats.TotalRevenue.Equal(dec("61.48")), stats.TotalRevenue.String())
}

func TestAdminService_Stats_Empty(t *testing.T) {
	stats, err := NewAdminService(repository.NewMemoryStore()).Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.OrderCount)
	assert.True(t, stats.TotalRevenue.IsZero())
}
