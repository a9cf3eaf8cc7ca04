package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greengrocer/grocery-api/internal/model"
)

// runStoreSuite exercises the Store contract. newStore must return an empty
// store with only the default categories seeded.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("UserCreateAndLookup", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("DefaultCategories", func(t *testing.T) { testDefaultCategories(t, newStore(t)) })
	t.Run("ProductCRUD", func(t *testing.T) { testProductCRUD(t, newStore(t)) })
	t.Run("DecrementStock", func(t *testing.T) { testDecrementStock(t, newStore(t)) })
	t.Run("CartItems", func(t *testing.T) { testCartItems(t, newStore(t)) })
	t.Run("OrderHistory", func(t *testing.T) { testOrderHistory(t, newStore(t)) })
	t.Run("FavoriteDedupe", func(t *testing.T) { testFavorites(t, newStore(t)) })
	t.Run("WithinTxRollback", func(t *testing.T) { testWithinTxRollback(t, newStore(t)) })
}

func createProduct(t *testing.T, s Store, name string, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name: name, Description: name + " description", Unit: "kg",
		Price: decimal.RequireFromString(price), Stock: stock,
		Rating: decimal.RequireFromString("4.5"), SKU: "SKU-" + name,
	}
	require.NoError(t, s.Products().Create(context.Background(), p))
	return p
}

func createUser(t *testing.T, s Store, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username: username, Password: "hashed", FullName: "Test " + username,
		Email: username + "@example.com", Role: model.RoleCustomer,
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()
	u := createUser(t, s, "alice")
	assert.NotZero(t, u.ID)

	found, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	found, err = s.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)

	require.ErrorIs(t, s.Users().Create(ctx, &model.User{Username: "alice", Role: model.RoleCustomer}), ErrDuplicate)

	missing, err := s.Users().GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)

	name := "Alice Cooper"
	updated, err := s.Users().Update(ctx, u.ID, model.UserPatch{FullName: &name})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, name, updated.FullName)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func testDefaultCategories(t *testing.T, s Store) {
	categories, err := s.Categories().List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, len(DefaultCategories))
	assert.Equal(t, "Vegetables", categories[0].Name)
	assert.Equal(t, "ri-leaf-line", categories[0].Icon)
}

func testProductCRUD(t *testing.T, s Store) {
	ctx := context.Background()
	p := createProduct(t, s, "carrot", "1.99", 5)
	assert.NotZero(t, p.ID)
	assert.Equal(t, model.ProductStatusLowStock, p.Status)

	found, err := s.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("1.99")))

	dup := &model.Product{Name: "carrot2", Description: "d", Unit: "kg", Price: decimal.NewFromInt(1), SKU: p.SKU}
	require.ErrorIs(t, s.Products().Create(ctx, dup), ErrDuplicate)

	stock := 50
	updated, err := s.Products().Update(ctx, p.ID, model.ProductPatch{Stock: &stock})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 50, updated.Stock)
	assert.Equal(t, model.ProductStatusActive, updated.Status)
	assert.Equal(t, "carrot", updated.Name)

	missing, err := s.Products().Update(ctx, p.ID+1000, model.ProductPatch{Stock: &stock})
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := s.Products().Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Products().Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testDecrementStock(t *testing.T, s Store) {
	ctx := context.Background()
	p := createProduct(t, s, "apple", "0.50", 12)

	updated, err := s.Products().DecrementStock(ctx, p.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, model.ProductStatusLowStock, updated.Status)

	none, err := s.Products().DecrementStock(ctx, p.ID, 10)
	require.NoError(t, err)
	assert.Nil(t, none)

	updated, err = s.Products().DecrementStock(ctx, p.ID, 9)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, model.ProductStatusOutOfStock, updated.Status)
}

func testCartItems(t *testing.T, s Store) {
	ctx := context.Background()
	u := createUser(t, s, "carter")
	p := createProduct(t, s, "kale", "3.00", 20)

	cart, err := s.Carts().Create(ctx, u.ID)
	require.NoError(t, err)
	again, err := s.Carts().Create(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	first := &model.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, s.Carts().AddItem(ctx, first))
	second := &model.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 2}
	require.NoError(t, s.Carts().AddItem(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	items, err := s.Carts().ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	item, err := s.Carts().UpdateItemQuantity(ctx, first.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, item)

	items, err = s.Carts().ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, s.Carts().AddItem(ctx, &model.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 4}))
	require.NoError(t, s.Carts().Clear(ctx, cart.ID))
	items, err = s.Carts().ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func testOrderHistory(t *testing.T, s Store) {
	ctx := context.Background()
	u := createUser(t, s, "orla")

	order := &model.Order{
		UserID: u.ID, Status: model.OrderStatusPending,
		Subtotal: decimal.RequireFromString("25.00"), DeliveryFee: decimal.RequireFromString("5.99"),
		Tax: decimal.RequireFromString("2.50"), Total: decimal.RequireFromString("33.49"),
		Address: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701",
		ContactEmail: "orla@example.com", ContactPhone: "555-0100",
	}
	require.NoError(t, s.Orders().Create(ctx, order))
	assert.NotZero(t, order.ID)

	history, err := s.Orders().ListHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.OrderStatusPending, history[0].Status)
	require.NotNil(t, history[0].Notes)
	assert.Equal(t, "Order created", *history[0].Notes)

	note := "Packed by store"
	updated, err := s.Orders().UpdateStatus(ctx, order.ID, model.OrderStatusPacked, &note)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.OrderStatusPacked, updated.Status)

	history, err = s.Orders().ListHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.OrderStatusPacked, history[1].Status)

	missing, err := s.Orders().UpdateStatus(ctx, order.ID+1000, model.OrderStatusPacked, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = s.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		locked, err := tx.Orders().GetByIDForUpdate(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.Equal(t, model.OrderStatusPacked, locked.Status)

		absent, err := tx.Orders().GetByIDForUpdate(ctx, order.ID+1000)
		require.NoError(t, err)
		assert.Nil(t, absent)
		return nil
	})
	require.NoError(t, err)
}

func testFavorites(t *testing.T, s Store) {
	ctx := context.Background()
	u := createUser(t, s, "fern")
	p := createProduct(t, s, "basil", "2.25", 30)

	first := &model.Favorite{UserID: u.ID, ProductID: p.ID}
	require.NoError(t, s.Favorites().Add(ctx, first))
	second := &model.Favorite{UserID: u.ID, ProductID: p.ID}
	require.NoError(t, s.Favorites().Add(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	favorites, err := s.Favorites().ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, favorites, 1)

	removed, err := s.Favorites().Remove(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func testWithinTxRollback(t *testing.T, s Store) {
	ctx := context.Background()
	p := createProduct(t, s, "pear", "1.00", 10)
	errBoom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		if _, err := tx.Products().DecrementStock(ctx, p.ID, 4); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	found, err := s.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, found.Stock)

	err = s.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		_, err := tx.Products().DecrementStock(ctx, p.ID, 4)
		return err
	})
	require.NoError(t, err)

	found, err = s.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, found.Stock)
}
