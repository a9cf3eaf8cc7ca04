package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/repository"
)

func seedUser(t *testing.T, store repository.Store, username string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Username: username, Password: "x", FullName: username,
		Email: username + "@example.com", Role: role,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, store repository.Store, name, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name: name, Description: name, Unit: "each", SKU: "SKU-" + name,
		Price: decimal.RequireFromString(price), Stock: stock,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func addToCart(t *testing.T, store repository.Store, userID, productID int64, quantity int) *model.CartItem {
	t.Helper()
	ctx := context.Background()
	cart, err := store.Carts().Create(ctx, userID)
	require.NoError(t, err)
	item := &model.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
	require.NoError(t, store.Carts().AddItem(ctx, item))
	return item
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
