package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/greengrocer/grocery-api/internal/model"
)

type pgCartRepo struct{ db dbtx }

func (r *pgCartRepo) GetByUserID(ctx context.Context, userID int64) (*model.Cart, error) {
	cart := &model.Cart{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (r *pgCartRepo) Create(ctx context.Context, userID int64) (*model.Cart, error) {
	cart := &model.Cart{UserID: userID}
	err := r.db.QueryRow(ctx,
		`INSERT INTO carts (user_id, updated_at) VALUES ($1, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		 RETURNING id, updated_at`,
		userID,
	).Scan(&cart.ID, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

func (r *pgCartRepo) ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`, cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgCartRepo) GetItem(ctx context.Context, itemID int64) (*model.CartItem, error) {
	item := &model.CartItem{}
	err := r.db.QueryRow(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE id = $1`, itemID,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

func (r *pgCartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	query := `INSERT INTO cart_items (cart_id, product_id, quantity)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			  RETURNING id, quantity`
	if err := r.db.QueryRow(ctx, query, item.CartID, item.ProductID, item.Quantity).Scan(&item.ID, &item.Quantity); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return r.touch(ctx, item.CartID)
}

func (r *pgCartRepo) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		if _, err := r.RemoveItem(ctx, itemID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item := &model.CartItem{}
	err := r.db.QueryRow(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1 RETURNING id, cart_id, product_id, quantity`,
		itemID, quantity,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	if err := r.touch(ctx, item.CartID); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *pgCartRepo) RemoveItem(ctx context.Context, itemID int64) (bool, error) {
	var cartID int64
	err := r.db.QueryRow(ctx, `DELETE FROM cart_items WHERE id = $1 RETURNING cart_id`, itemID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	return true, r.touch(ctx, cartID)
}

func (r *pgCartRepo) Clear(ctx context.Context, cartID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return r.touch(ctx, cartID)
}

func (r *pgCartRepo) touch(ctx context.Context, cartID int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
