package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/greengrocer/grocery-api/internal/model"
)

const orderColumns = `id, user_id, status, subtotal, delivery_fee, tax, total, address, city, state,
	zip_code, contact_email, contact_phone, delivery_instructions, estimated_delivery, created_at, updated_at`

type pgOrderRepo struct{ db dbtx }

func scanOrder(row scanner) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.Subtotal, &o.DeliveryFee, &o.Tax, &o.Total,
		&o.Address, &o.City, &o.State, &o.ZipCode, &o.ContactEmail, &o.ContactPhone,
		&o.DeliveryInstructions, &o.EstimatedDelivery, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOrderRepo) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *pgOrderRepo) List(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
}

func (r *pgOrderRepo) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *pgOrderRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *pgOrderRepo) getOne(ctx context.Context, query string, id int64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	query := `WITH o AS (
				INSERT INTO orders (user_id, status, subtotal, delivery_fee, tax, total, address, city, state,
					zip_code, contact_email, contact_phone, delivery_instructions, estimated_delivery,
					created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
				RETURNING id, status, created_at, updated_at
			  ), h AS (
				INSERT INTO order_status_history (order_id, status, timestamp, notes)
				SELECT id, status, created_at, $15 FROM o
			  )
			  SELECT id, created_at, updated_at FROM o`
	err := r.db.QueryRow(ctx, query,
		order.UserID, order.Status, order.Subtotal, order.DeliveryFee, order.Tax, order.Total,
		order.Address, order.City, order.State, order.ZipCode, order.ContactEmail, order.ContactPhone,
		order.DeliveryInstructions, order.EstimatedDelivery, orderCreatedNote,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, notes *string) (*model.Order, error) {
	query := `WITH o AS (
				UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
				RETURNING ` + orderColumns + `
			  ), h AS (
				INSERT INTO order_status_history (order_id, status, timestamp, notes)
				SELECT id, status, updated_at, $3 FROM o
			  )
			  SELECT ` + orderColumns + ` FROM o`
	o, err := scanOrder(r.db.QueryRow(ctx, query, id, status, notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return o, nil
}

func (r *pgOrderRepo) ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price, total_price
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgOrderRepo) AddItem(ctx context.Context, item *model.OrderItem) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *pgOrderRepo) ListHistory(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, status, timestamp, notes
		 FROM order_status_history WHERE order_id = $1 ORDER BY timestamp, id`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("get order history: %w", err)
	}
	defer rows.Close()

	var history []model.OrderStatusHistory
	for rows.Next() {
		var h model.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Timestamp, &h.Notes); err != nil {
			return nil, fmt.Errorf("scan order history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
