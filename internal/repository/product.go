package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/greengrocer/grocery-api/internal/model"
)

const productColumns = `id, name, description, price, unit, stock, image, is_organic, rating,
	category_id, sku, status, created_at, updated_at`

type pgProductRepo struct{ db dbtx }

func scanProduct(row scanner) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Unit, &p.Stock, &p.Image, &p.IsOrganic,
		&p.Rating, &p.CategoryID, &p.SKU, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProductRepo) list(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *pgProductRepo) List(ctx context.Context) ([]model.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *pgProductRepo) ListByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE category_id = $1 ORDER BY id`, categoryID)
}

func (r *pgProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.Status = model.StockStatus(product.Stock)
	query := `INSERT INTO products (name, description, price, unit, stock, image, is_organic, rating,
				category_id, sku, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
			  RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.Price, product.Unit, product.Stock, product.Image,
		product.IsOrganic, product.Rating, product.CategoryID, product.SKU, product.Status,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return writeErr("create product", err)
	}
	return nil
}

func (r *pgProductRepo) Update(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
	var b updateBuilder
	if patch.Name != nil {
		b.set("name", *patch.Name)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}
	if patch.Price != nil {
		b.set("price", *patch.Price)
	}
	if patch.Unit != nil {
		b.set("unit", *patch.Unit)
	}
	if patch.Stock != nil {
		b.set("stock", *patch.Stock)
		b.set("status", model.StockStatus(*patch.Stock))
	}
	if patch.Image != nil {
		b.set("image", *patch.Image)
	}
	if patch.IsOrganic != nil {
		b.set("is_organic", *patch.IsOrganic)
	}
	if patch.Rating != nil {
		b.set("rating", *patch.Rating)
	}
	if patch.CategoryID != nil {
		b.set("category_id", *patch.CategoryID)
	}
	if patch.SKU != nil {
		b.set("sku", *patch.SKU)
	}
	b.sets = append(b.sets, "updated_at = NOW()")

	query, args := b.build("products", id, productColumns)
	p, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, writeErr("update product", err)
	}
	return p, nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgProductRepo) DecrementStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	query := `UPDATE products SET
				stock = stock - $2,
				status = CASE
					WHEN stock - $2 <= 0 THEN 'out_of_stock'
					WHEN stock - $2 < $3 THEN 'low_stock'
					ELSE 'active'
				END,
				updated_at = NOW()
			  WHERE id = $1 AND stock >= $2
			  RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRow(ctx, query, id, quantity, model.LowStockThreshold))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	return p, nil
}
