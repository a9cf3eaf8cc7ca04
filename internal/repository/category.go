package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/greengrocer/grocery-api/internal/model"
)

type pgCategoryRepo struct{ db dbtx }

func (r *pgCategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, icon FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *pgCategoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.QueryRow(ctx, `SELECT id, name, icon FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Icon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name, icon) VALUES ($1, $2) RETURNING id`,
		category.Name, category.Icon,
	).Scan(&category.ID)
	if err != nil {
		return writeErr("create category", err)
	}
	return nil
}

func (r *pgCategoryRepo) Update(ctx context.Context, id int64, patch model.CategoryPatch) (*model.Category, error) {
	var b updateBuilder
	if patch.Name != nil {
		b.set("name", *patch.Name)
	}
	if patch.Icon != nil {
		b.set("icon", *patch.Icon)
	}
	if b.empty() {
		return r.GetByID(ctx, id)
	}

	query, args := b.build("categories", id, "id, name, icon")
	c := &model.Category{}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Icon); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, writeErr("update category", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
