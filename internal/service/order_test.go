package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greengrocer/grocery-api/internal/dto"
	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/repository"
)

func newOrderService(strict bool) (*OrderService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	return NewOrderService(store, OrderOptions{TaxRate: dec("0.10"), StrictTransitions: strict}), store
}

func placeOrderReq() dto.PlaceOrderRequest {
	fee := dec("5.99")
	return dto.PlaceOrderRequest{
		Address: "12 Orchard Lane", City: "Portland", State: "OR", ZipCode: "97201",
		ContactEmail: "alice@example.com", ContactPhone: "555-0101",
		DeliveryFee: &fee,
	}
}

func customer(u *model.User) model.Identity {
	return model.Identity{UserID: u.ID, Role: u.Role}
}

func TestOrderService_PlaceOrder(t *testing.T) {
	svc, store := newOrderService(false)
	ctx := context.Background()
	user := seedUser(t, store, "alice", model.RoleCustomer)
	a := seedProduct(t, store, "a", "10.00", 12)
	b := seedProduct(t, store, "b", "5.00", 30)
	addToCart(t, store, user.ID, a.ID, 2)
	addToCart(t, store, user.ID, b.ID, 1)

	eta := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	req := placeOrderReq()
	req.EstimatedDelivery = &eta

	order, err := svc.PlaceOrder(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(dec("25.00")), order.Subtotal.String())
	assert.True(t, order.Tax.Equal(dec("2.50")), order.Tax.String())
	assert.True(t, order.Total.Equal(dec("33.49")), order.Total.String())
	assert.Equal(t, &eta, order.EstimatedDelivery)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].UnitPrice.Equal(dec("10.00")))
	assert.True(t, order.Items[0].TotalPrice.Equal(dec("20.00")))
	require.NotNil(t, order.Items[0].Product)

	cart, err := store.Carts().GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	items, err := store.Carts().ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	updatedA, err := store.Products().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, updatedA.Stock)
	assert.Equal(t, model.ProductStatusActive, updatedA.Status)

	updatedB, err := store.Products().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 29, updatedB.Stock)

	detail, err := svc.GetByID(ctx, customer(user), order.ID)
	require.NoError(t, err)
	require.Len(t, detail.StatusHistory, 1)
	assert.Equal(t, model.OrderStatusPending, detail.StatusHistory[0].Status)
	require.NotNil(t, detail.StatusHistory[0].Notes)
	assert.Equal(t, "Order created", *detail.StatusHistory[0].Notes)
}

func TestOrderService_PlaceOrder_StockStatusLabels(t *testing.T) {
	svc, store := newOrderService(false)
	ctx := context.Background()
	user := seedUser(t, store, "alice", model.RoleCustomer)
	low := seedProduct(t, store, "low", "1.00", 12)
	gone := seedProduct(t, store, "gone", "1.00", 3)
	addToCart(t, store, user.ID, low.ID, 5)
	addToCart(t, store, user.ID, gone.ID, 3)

	_, err := svc.PlaceOrder(ctx, user.ID, placeOrderReq())
	require.NoError(t, err)

	p, err := store.Products().GetByID(ctx, low.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusLowStock, p.Status)

	p, err = store.Products().GetByID(ctx, gone.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, model.ProductStatusOutOfStock, p.Status)
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	svc, store := newOrderService(false)
	ctx := context.Background()
	user := seedUser(t, store, "alice", model.RoleCustomer)

	assert.ErrorIs(t, svc.CheckCart(ctx, user.ID), ErrEmptyCart)
	_, err := svc.PlaceOrder(ctx, user.ID, placeOrderReq())
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = store.Carts().Create(ctx, user.ID)
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, user.ID, placeOrderReq())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_PlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	svc, store := newOrderService(false)
	ctx := context.Background()
	user := seedUser(t, store, "alice", model.RoleCustomer)
	plenty := seedProduct(t, store, "plenty", "2.00", 50)
	scarce := seedProduct(t, store, "Heirloom Tomato", "4.00", 2)
	addToCart(t, store, user.ID, plenty.ID, 1)
	addToCart(t, store, user.ID, scarce.ID, 3)

	_, err := svc.PlaceOrder(ctx, user.ID, placeOrderReq())
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Not enough stock for Heirloom Tomato. Available: 2", stockErr.Error())

	orders, err := store.Orders().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	p, err := store.Products().GetByID(ctx, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Stock)

	assert.NoError(t, svc.CheckCart(ctx, user.ID))
}

func TestOrderService_PlaceOrder_MissingProduct(t *testing.T) {
	svc, store := newOrderService(false)
	ctx := context.Background()
	user := seedUser(t, store, "alice", model.RoleCustomer)
	p := seedProduct(t, store, "ghost", "2.00", 50)
	addToCart(t, store, user.ID, p.ID, 1)
	_, err := store.Products().Delete(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(ctx, user.ID, placeOrderReq())
	var missing *MissingProductError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, p.ID, missing.ProductID)
}

func TestOrderService_GetByID_Access(t *testing.T) {
	svc, store := newOrderService(false)
	ctx := context.Background()
	owner := seedUser(t, store, "alice", model.RoleCustomer)
	other := seedUser(t, store, "bob", model.RoleCustomer)
	admin := seedUser(t, store, "root", model.RoleAdmin)
	p := seedProduct(t, store, "apple", "1.00", 10)
	addToCart(t, store, owner.ID, p.ID, 1)

	order, err := svc.PlaceOrder(ctx, owner.ID, placeOrderReq())
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, customer(other), order.ID)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	found, err := svc.GetByID(ctx, customer(admin), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.GetByID(ctx, customer(owner), order.ID+100)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_List(t *testing.T) {
	svc, store := newOrderService(false)
	ctx := context.Background()
	alice := seedUser(t, store, "alice", model.RoleCustomer)
	bob := seedUser(t, store, "bob", model.RoleCustomer)
	admin := seedUser(t, store, "root", model.RoleAdmin)
	p := seedProduct(t, store, "apple", "1.00", 10)

	for _, u := range []*model.User{alice, bob} {
		addToCart(t, store, u.ID, p.ID, 1)
		_, err := svc.PlaceOrder(ctx, u.ID, placeOrderReq())
		require.NoError(t, err)
	}

	mine, err := svc.List(ctx, customer(alice))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice.ID, mine[0].UserID)
	assert.Len(t, mine[0].Items, 1)

	all, err := svc.List(ctx, customer(admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	svc, store := newOrderService(false)
	ctx := context.Background()
	user := seedUser(t, store, "alice", model.RoleCustomer)
	p := seedProduct(t, store, "apple", "1.00", 10)
	addToCart(t, store, user.ID, p.ID, 1)
	order, err := svc.PlaceOrder(ctx, user.ID, placeOrderReq())
	require.NoError(t, err)

	note := "Left the warehouse"
	updated, err := svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "in_transit", Notes: &note})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInTransit, updated.Status)

	detail, err := svc.GetByID(ctx, customer(user), order.ID)
	require.NoError(t, err)
	require.Len(t, detail.StatusHistory, 2)
	assert.Equal(t, model.OrderStatusInTransit, detail.StatusHistory[1].Status)
	assert.Equal(t, &note, detail.StatusHistory[1].Notes)

	_, err = svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "shipped"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, order.ID+100, dto.UpdateOrderStatusRequest{Status: "delivered"})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Lenient mode accepts any enumerated status, even out of terminal ones.
	_, err = svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "pending"})
	require.NoError(t, err)
}

func TestOrderService_UpdateStatus_Strict(t *testing.T) {
	svc, store := newOrderService(true)
	ctx := context.Background()
	user := seedUser(t, store, "alice", model.RoleCustomer)
	p := seedProduct(t, store, "apple", "1.00", 10)
	addToCart(t, store, user.ID, p.ID, 1)
	order, err := svc.PlaceOrder(ctx, user.ID, placeOrderReq())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "packed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "processing"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "in_transit"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "delivered"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	history, err := store.Orders().ListHistory(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestOrderService_UpdateStatus_StrictConcurrent(t *testing.T) {
	svc, store := newOrderService(true)
	ctx := context.Background()
	user := seedUser(t, store, "alice", model.RoleCustomer)
	p := seedProduct(t, store, "apple", "1.00", 10)
	addToCart(t, store, user.ID, p.ID, 1)
	order, err := svc.PlaceOrder(ctx, user.ID, placeOrderReq())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: "processing"})
	require.NoError(t, err)

	// Racing cancellations and advances must never leave an illegal step in the history.
	targets := []string{"cancelled", "packed", "in_transit", "cancelled", "packed", "in_transit", "cancelled", "packed"}
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{Status: target})
			if err != nil {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		}()
	}
	wg.Wait()

	history, err := store.Orders().ListHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Greater(t, len(history), 2)
	for i := 1; i < len(history); i++ {
		prev, next := history[i-1].Status, history[i].Status
		assert.True(t, prev.CanTransitionTo(next), "%s -> %s", prev, next)
	}
}

func TestOrderService_Recent(t *testing.T) {
	svc, store := newOrderService(false)
	ctx := context.Background()
	user := seedUser(t, store, "alice", model.RoleCustomer)
	p := seedProduct(t, store, "apple", "1.00", 100)

	var last int64
	for range 7 {
		addToCart(t, store, user.ID, p.ID, 1)
		order, err := svc.PlaceOrder(ctx, user.ID, placeOrderReq())
		require.NoError(t, err)
		last = order.ID
	}

	recent, err := svc.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, last, recent[0].ID)
	assert.Empty(t, recent[0].Items)
}
