//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greengrocer/grocery-api/internal/model"
)

func TestPostgresStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		cleanupTables(t)
		return NewPostgresStore(testPool)
	})
}

func TestPostgresStore_MigrateIsIdempotent(t *testing.T) {
	require.NoError(t, Migrate(context.Background(), testPool))

	categories, err := NewPostgresStore(testPool).Categories().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, len(DefaultCategories))
}

func TestPostgresStore_OrderItemsKeepPurchasePrice(t *testing.T) {
	cleanupTables(t)
	s := NewPostgresStore(testPool)
	ctx := context.Background()

	u := createUser(t, s, "pat")
	p := createProduct(t, s, "milk", "2.49", 40)
	order := &model.Order{UserID: u.ID, Status: model.OrderStatusPending}
	require.NoError(t, s.Orders().Create(ctx, order))

	item := &model.OrderItem{OrderID: order.ID, ProductID: p.ID, Quantity: 2, UnitPrice: p.Price, TotalPrice: p.Price.Mul(decimal.NewFromInt(2))}
	require.NoError(t, s.Orders().AddItem(ctx, item))

	price := p.Price.Add(p.Price)
	_, err := s.Products().Update(ctx, p.ID, model.ProductPatch{Price: &price})
	require.NoError(t, err)

	items, err := s.Orders().ListItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].UnitPrice.Equal(p.Price))
}
