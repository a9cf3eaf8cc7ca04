package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/greengrocer/grocery-api/internal/dto"
	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/repository"
)

var ErrProductNotFound = errors.New("product not found")

const defaultProductImage = "https://example.com/default-product-image.jpg"

type ProductService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// List returns every product, or only those in categoryID when it is set.
func (s *ProductService) List(ctx context.Context, categoryID *int64) ([]dto.ProductResponse, error) {
	var (
		products []model.Product
		err      error
	)
	if categoryID != nil {
		products, err = s.productRepo.ListByCategory(ctx, *categoryID)
	} else {
		products, err = s.productRepo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(&p))
	}
	return items, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Unit:        req.Unit,
		Stock:       *req.Stock,
		Image:       req.Image,
		IsOrganic:   req.IsOrganic,
		CategoryID:  req.CategoryID,
		SKU:         req.SKU,
	}
	if req.Rating != nil {
		product.Rating = *req.Rating
	}
	if product.Image == nil || *product.Image == "" {
		image := defaultProductImage
		product.Image = &image
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.productRepo.Update(ctx, id, model.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Unit:        req.Unit,
		Stock:       req.Stock,
		Image:       req.Image,
		IsOrganic:   req.IsOrganic,
		Rating:      req.Rating,
		CategoryID:  req.CategoryID,
		SKU:         req.SKU,
	})
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !deleted {
		return ErrProductNotFound
	}
	return nil
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Unit:        p.Unit,
		Stock:       p.Stock,
		Image:       p.Image,
		IsOrganic:   p.IsOrganic,
		Rating:      p.Rating,
		CategoryID:  p.CategoryID,
		SKU:         p.SKU,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// productLookup memoizes product reads while assembling a response that
// embeds the same product several times. Deleted products resolve to nil.
type productLookup struct {
	repo  repository.ProductRepository
	cache map[int64]*dto.ProductResponse
}

func newProductLookup(repo repository.ProductRepository) *productLookup {
	return &productLookup{repo: repo, cache: make(map[int64]*dto.ProductResponse)}
}

func (l *productLookup) get(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	if p, ok := l.cache[id]; ok {
		return p, nil
	}
	product, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	var resp *dto.ProductResponse
	if product != nil {
		r := toProductResponse(product)
		resp = &r
	}
	l.cache[id] = resp
	return resp, nil
}

func lineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
