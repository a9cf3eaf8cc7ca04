package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/greengrocer/grocery-api/internal/model"
)

type pgFavoriteRepo struct{ db dbtx }

func (r *pgFavoriteRepo) ListByUserID(ctx context.Context, userID int64) ([]model.Favorite, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, product_id, created_at FROM favorites WHERE user_id = $1 ORDER BY id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []model.Favorite
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (r *pgFavoriteRepo) GetByID(ctx context.Context, id int64) (*model.Favorite, error) {
	f := &model.Favorite{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, product_id, created_at FROM favorites WHERE id = $1`, id,
	).Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return f, nil
}

func (r *pgFavoriteRepo) Add(ctx context.Context, favorite *model.Favorite) error {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `INSERT INTO favorites (user_id, product_id, created_at) VALUES ($1, $2, NOW())
			  ON CONFLICT (user_id, product_id) DO UPDATE SET user_id = favorites.user_id
			  RETURNING id, created_at`
	if err := r.db.QueryRow(ctx, query, favorite.UserID, favorite.ProductID).Scan(&favorite.ID, &favorite.CreatedAt); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *pgFavoriteRepo) Remove(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
