package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/greengrocer/grocery-api/internal/dto"
	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderAccessDenied = errors.New("access denied")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// MissingProductError reports a cart line whose product no longer exists.
type MissingProductError struct {
	ProductID int64
}

func (e *MissingProductError) Error() string {
	return fmt.Sprintf("Product with ID %d not found", e.ProductID)
}

type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s. Available: %d", e.ProductName, e.Available)
}

type OrderOptions struct {
	TaxRate decimal.Decimal
	// StrictTransitions rejects status changes that skip ahead or leave a
	// terminal status.
	StrictTransitions bool
}

type OrderService struct {
	store repository.Store
	opts  OrderOptions
}

func NewOrderService(store repository.Store, opts OrderOptions) *OrderService {
	return &OrderService{store: store, opts: opts}
}

// CheckCart fails with ErrEmptyCart unless the user has a cart holding items.
func (s *OrderService) CheckCart(ctx context.Context, userID int64) error {
	_, items, err := s.cartItems(ctx, s.store, userID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrEmptyCart
	}
	return nil
}

func (s *OrderService) cartItems(ctx context.Context, store repository.Store, userID int64) (*model.Cart, []model.CartItem, error) {
	cart, err := store.Carts().GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil, nil, nil
	}
	items, err := store.Carts().ListItems(ctx, cart.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("get cart items: %w", err)
	}
	return cart, items, nil
}

// PlaceOrder turns the caller's cart into an order. Pricing, stock checks,
// order rows, stock decrements and clearing the cart run in one transaction,
// so a failure at any step leaves nothing behind.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, req dto.PlaceOrderRequest) (*dto.OrderResponse, error) {
	var order *model.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		cart, cartItems, err := s.cartItems(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		products := make(map[int64]*model.Product, len(cartItems))
		subtotal := decimal.Zero
		for _, ci := range cartItems {
			product, err := tx.Products().GetByID(ctx, ci.ProductID)
			if err != nil {
				return fmt.Errorf("get product: %w", err)
			}
			if product == nil {
				return &MissingProductError{ProductID: ci.ProductID}
			}
			if product.Stock < ci.Quantity {
				return &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
			}
			products[ci.ProductID] = product
			subtotal = subtotal.Add(lineTotal(product.Price, ci.Quantity))
		}

		tax := subtotal.Mul(s.opts.TaxRate).Round(2)
		deliveryFee := decimal.Zero
		if req.DeliveryFee != nil {
			deliveryFee = *req.DeliveryFee
		}
		order = &model.Order{
			UserID:               userID,
			Status:               model.OrderStatusPending,
			Subtotal:             subtotal,
			DeliveryFee:          deliveryFee,
			Tax:                  tax,
			Total:                subtotal.Add(tax).Add(deliveryFee),
			Address:              req.Address,
			City:                 req.City,
			State:                req.State,
			ZipCode:              req.ZipCode,
			ContactEmail:         req.ContactEmail,
			ContactPhone:         req.ContactPhone,
			DeliveryInstructions: req.DeliveryInstructions,
			EstimatedDelivery:    req.EstimatedDelivery,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, ci := range cartItems {
			product := products[ci.ProductID]
			item := &model.OrderItem{
				OrderID:    order.ID,
				ProductID:  ci.ProductID,
				Quantity:   ci.Quantity,
				UnitPrice:  product.Price,
				TotalPrice: lineTotal(product.Price, ci.Quantity),
			}
			if err := tx.Orders().AddItem(ctx, item); err != nil {
				return fmt.Errorf("add order item: %w", err)
			}

			updated, err := tx.Products().DecrementStock(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if updated == nil {
				// Another order took the stock after it was checked above.
				return s.stockError(ctx, tx, product)
			}
		}

		if err := tx.Carts().Clear(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toOrderResponse(ctx, order, false)
}

func (s *OrderService) stockError(ctx context.Context, tx repository.Store, product *model.Product) error {
	current, err := tx.Products().GetByID(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if current == nil {
		return &MissingProductError{ProductID: product.ID}
	}
	return &InsufficientStockError{ProductName: current.Name, Available: current.Stock}
}

// List returns every order for admins and only the caller's own otherwise.
func (s *OrderService) List(ctx context.Context, identity model.Identity) ([]dto.OrderResponse, error) {
	var (
		orders []model.Order
		err    error
	)
	if identity.IsAdmin() {
		orders, err = s.store.Orders().List(ctx)
	} else {
		orders, err = s.store.Orders().ListByUserID(ctx, identity.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp, err := s.toOrderResponse(ctx, &o, false)
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}
	return items, nil
}

func (s *OrderService) GetByID(ctx context.Context, identity model.Identity, orderID int64) (*dto.OrderResponse, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !identity.IsAdmin() && order.UserID != identity.UserID {
		return nil, ErrOrderAccessDenied
	}
	return s.toOrderResponse(ctx, order, true)
}

// UpdateStatus moves an order to a new status and records it in the history.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, req dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, ErrInvalidStatus
	}

	var order *model.Order
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if s.opts.StrictTransitions {
			current, err := tx.Orders().GetByIDForUpdate(ctx, orderID)
			if err != nil {
				return fmt.Errorf("get order: %w", err)
			}
			if current == nil {
				return ErrOrderNotFound
			}
			if !current.Status.CanTransitionTo(status) {
				return ErrInvalidTransition
			}
		}

		updated, err := tx.Orders().UpdateStatus(ctx, orderID, status, req.Notes)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if updated == nil {
			return ErrOrderNotFound
		}
		order = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toOrderResponse(ctx, order, false)
}

// Recent returns the n most recently created orders, newest first.
func (s *OrderService) Recent(ctx context.Context, n int) ([]dto.OrderResponse, error) {
	orders, err := s.store.Orders().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	slices.SortStableFunc(orders, func(a, b model.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(orders) > n {
		orders = orders[:n]
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderSummary(&o))
	}
	return items, nil
}

func (s *OrderService) toOrderResponse(ctx context.Context, order *model.Order, withHistory bool) (*dto.OrderResponse, error) {
	resp := toOrderSummary(order)

	items, err := s.store.Orders().ListItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	products := newProductLookup(s.store.Products())
	resp.Items = make([]dto.OrderItemResponse, 0, len(items))
	for _, item := range items {
		product, err := products.get(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID: item.ID, OrderID: item.OrderID, ProductID: item.ProductID, Quantity: item.Quantity,
			UnitPrice: item.UnitPrice, TotalPrice: item.TotalPrice, Product: product,
		})
	}

	if withHistory {
		history, err := s.store.Orders().ListHistory(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("get order history: %w", err)
		}
		for _, h := range history {
			resp.StatusHistory = append(resp.StatusHistory, dto.OrderHistoryResponse{
				ID: h.ID, OrderID: h.OrderID, Status: h.Status, Timestamp: h.Timestamp, Notes: h.Notes,
			})
		}
	}
	return &resp, nil
}

func toOrderSummary(o *model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                   o.ID,
		UserID:               o.UserID,
		Status:               o.Status,
		Subtotal:             o.Subtotal,
		DeliveryFee:          o.DeliveryFee,
		Tax:                  o.Tax,
		Total:                o.Total,
		Address:              o.Address,
		City:                 o.City,
		State:                o.State,
		ZipCode:              o.ZipCode,
		ContactEmail:         o.ContactEmail,
		ContactPhone:         o.ContactPhone,
		DeliveryInstructions: o.DeliveryInstructions,
		EstimatedDelivery:    o.EstimatedDelivery,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}
