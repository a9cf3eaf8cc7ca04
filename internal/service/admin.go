package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/greengrocer/grocery-api/internal/dto"
	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/repository"
)

type AdminService struct {
	store repository.Store
}

func NewAdminService(store repository.Store) *AdminService {
	return &AdminService{store: store}
}

// Stats aggregates dashboard figures from the current data on every call.
func (s *AdminService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	orders, err := s.store.Orders().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	stats := &dto.StatsResponse{
		OrderCount:   len(orders),
		TotalRevenue: decimal.Zero,
		ProductCount: len(products),
	}
	for _, u := range users {
		if u.Role == model.RoleCustomer {
			stats.CustomerCount++
		}
	}
	for _, o := range orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)

		items, err := s.store.Orders().ListItems(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("get order items: %w", err)
		}
		for _, item := range items {
			stats.ProductsSold += item.Quantity
		}
	}
	return stats, nil
}
