package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/greengrocer/grocery-api/internal/dto"
	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/repository"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, productRepo repository.ProductRepository) *FavoriteService {
	return &FavoriteService{favoriteRepo: favoriteRepo, productRepo: productRepo}
}

func (s *FavoriteService) List(ctx context.Context, userID int64) ([]dto.FavoriteResponse, error) {
	favorites, err := s.favoriteRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	products := newProductLookup(s.productRepo)
	items := make([]dto.FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		product, err := products.get(ctx, f.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, toFavoriteResponse(&f, product))
	}
	return items, nil
}

// Add favorites a product. Favoriting it again returns the existing entry.
func (s *FavoriteService) Add(ctx context.Context, userID int64, req dto.AddFavoriteRequest) (*dto.FavoriteResponse, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	favorite := &model.Favorite{UserID: userID, ProductID: req.ProductID}
	if err := s.favoriteRepo.Add(ctx, favorite); err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	p := toProductResponse(product)
	resp := toFavoriteResponse(favorite, &p)
	return &resp, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, id int64) error {
	favorite, err := s.favoriteRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get favorite: %w", err)
	}
	if favorite == nil || favorite.UserID != userID {
		return ErrFavoriteNotFound
	}
	removed, err := s.favoriteRepo.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if !removed {
		return ErrFavoriteNotFound
	}
	return nil
}

func toFavoriteResponse(f *model.Favorite, product *dto.ProductResponse) dto.FavoriteResponse {
	return dto.FavoriteResponse{
		ID: f.ID, UserID: f.UserID, ProductID: f.ProductID, CreatedAt: f.CreatedAt, Product: product,
	}
}
