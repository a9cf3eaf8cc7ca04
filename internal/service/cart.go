package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/greengrocer/grocery-api/internal/dto"
	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/repository"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) getOrCreateCart(ctx context.Context, userID int64) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}
	cart, err = s.cartRepo.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// GetCart returns the caller's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*dto.CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}

	resp := &dto.CartResponse{
		ID: cart.ID, UserID: cart.UserID, UpdatedAt: cart.UpdatedAt,
		Items: make([]dto.CartItemResponse, 0, len(items)),
	}
	products := newProductLookup(s.productRepo)
	for _, item := range items {
		line, err := s.toCartItemResponse(ctx, products, &item)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, *line)
	}
	return resp, nil
}

// AddItem adds quantity of a product, merging with an existing line for it.
func (s *CartService) AddItem(ctx context.Context, userID int64, req dto.AddCartItemRequest) (*dto.CartItemResponse, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := &model.CartItem{CartID: cart.ID, ProductID: req.ProductID, Quantity: req.Quantity}
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.toCartItemResponse(ctx, newProductLookup(s.productRepo), item)
}

// UpdateItem sets the quantity of one of the caller's items. A quantity of
// zero removes the item and yields (nil, nil).
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*dto.CartItemResponse, error) {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return nil, err
	}

	item, err := s.cartRepo.UpdateItemQuantity(ctx, itemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	if item == nil {
		if quantity > 0 {
			return nil, ErrCartItemNotFound
		}
		return nil, nil
	}
	return s.toCartItemResponse(ctx, newProductLookup(s.productRepo), item)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	removed, err := s.cartRepo.RemoveItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if !removed {
		return ErrCartItemNotFound
	}
	return nil
}

// Clear empties the caller's cart but keeps the cart itself.
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil
	}
	if err := s.cartRepo.Clear(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ownedItem hides items from other users' carts behind ErrCartItemNotFound.
func (s *CartService) ownedItem(ctx context.Context, userID, itemID int64) (*model.CartItem, error) {
	item, err := s.cartRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil || cart.ID != item.CartID {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

func (s *CartService) toCartItemResponse(ctx context.Context, products *productLookup, item *model.CartItem) (*dto.CartItemResponse, error) {
	product, err := products.get(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	return &dto.CartItemResponse{
		ID: item.ID, CartID: item.CartID, ProductID: item.ProductID,
		Quantity: item.Quantity, Product: product,
	}, nil
}
