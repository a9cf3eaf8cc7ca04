package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greengrocer/grocery-api/internal/dto"
	"github.com/greengrocer/grocery-api/internal/middleware"
	"github.com/greengrocer/grocery-api/internal/service"
)

const recentOrdersLimit = 5

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder rejects an empty cart before looking at the delivery details.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.orderService.CheckCart(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	var req dto.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.List(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := paramID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), middleware.GetIdentity(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) RecentOrders(c *gin.Context) {
	orders, err := h.orderService.Recent(c.Request.Context(), recentOrdersLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}
