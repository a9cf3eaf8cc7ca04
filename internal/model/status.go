package model

import (
	"errors"
	"slices"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusLowStock   ProductStatus = "low_stock"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// LowStockThreshold is the stock level below which a product is labelled low_stock.
const LowStockThreshold = 10

// StockStatus derives the product status label from a stock level.
func StockStatus(stock int) ProductStatus {
	switch {
	case stock <= 0:
		return ProductStatusOutOfStock
	case stock < LowStockThreshold:
		return ProductStatusLowStock
	default:
		return ProductStatusActive
	}
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPacked     OrderStatus = "packed"
	OrderStatusInTransit  OrderStatus = "in_transit"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusPacked,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var ErrUnknownOrderStatus = errors.New("unknown order status")

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !slices.Contains(OrderStatuses, status) {
		return "", ErrUnknownOrderStatus
	}
	return status, nil
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is reachable from s: terminal statuses
// are locked, cancellation is always allowed otherwise, and a forward move may
// skip at most one status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return next == s
	}
	if next == OrderStatusCancelled {
		return true
	}
	cur := slices.Index(OrderStatuses, s)
	idx := slices.Index(OrderStatuses, next)
	if cur < 0 || idx < 0 {
		return false
	}
	return idx >= cur && idx <= cur+2
}
