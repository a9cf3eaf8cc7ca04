package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/greengrocer/grocery-api/internal/model"
)

func init() {
	// Money is emitted as a JSON number, matching what the storefront expects.
	decimal.MarshalJSONWithoutQuotes = true
}

// --- Auth ---

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName" binding:"omitempty,min=1"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Avatar   *string `json:"avatar" binding:"omitempty,url"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	Avatar    *string    `json:"avatar"`
	CreatedAt time.Time  `json:"createdAt"`
}

// --- Category ---

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon" binding:"required"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1"`
	Icon *string `json:"icon" binding:"omitempty,min=1"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// --- Product ---

// A status field in product payloads is ignored; the label is derived from stock.
type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required,gte=0"`
	Unit        string           `json:"unit" binding:"required"`
	Stock       *int             `json:"stock" binding:"required,gte=0"`
	Image       *string          `json:"image"`
	IsOrganic   bool             `json:"isOrganic"`
	Rating      *decimal.Decimal `json:"rating" binding:"omitempty,gte=0,lte=5"`
	CategoryID  *int64           `json:"categoryId"`
	SKU         string           `json:"sku" binding:"required"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1"`
	Description *string          `json:"description" binding:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price" binding:"omitempty,gte=0"`
	Unit        *string          `json:"unit" binding:"omitempty,min=1"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
	Image       *string          `json:"image"`
	IsOrganic   *bool            `json:"isOrganic"`
	Rating      *decimal.Decimal `json:"rating" binding:"omitempty,gte=0,lte=5"`
	CategoryID  *int64           `json:"categoryId"`
	SKU         *string          `json:"sku" binding:"omitempty,min=1"`
}

type ProductResponse struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Unit        string              `json:"unit"`
	Stock       int                 `json:"stock"`
	Image       *string             `json:"image"`
	IsOrganic   bool                `json:"isOrganic"`
	Rating      decimal.Decimal     `json:"rating"`
	CategoryID  *int64              `json:"categoryId"`
	SKU         string              `json:"sku"`
	Status      model.ProductStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type CreateProductResponse struct {
	Message string          `json:"message"`
	Product ProductResponse `json:"product"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

type CartResponse struct {
	ID        int64              `json:"id"`
	UserID    int64              `json:"userId"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Items     []CartItemResponse `json:"items"`
}

// Product is null when the referenced product has since been deleted.
type CartItemResponse struct {
	ID        int64            `json:"id"`
	CartID    int64            `json:"cartId"`
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *ProductResponse `json:"product"`
}

// --- Favorites ---

type AddFavoriteRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
}

type FavoriteResponse struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"userId"`
	ProductID int64            `json:"productId"`
	CreatedAt time.Time        `json:"createdAt"`
	Product   *ProductResponse `json:"product"`
}

// --- Order ---

type PlaceOrderRequest struct {
	Address              string           `json:"address" binding:"required"`
	City                 string           `json:"city" binding:"required"`
	State                string           `json:"state" binding:"required"`
	ZipCode              string           `json:"zipCode" binding:"required"`
	ContactEmail         string           `json:"contactEmail" binding:"required,email"`
	ContactPhone         string           `json:"contactPhone" binding:"required"`
	DeliveryInstructions *string          `json:"deliveryInstructions"`
	EstimatedDelivery    *time.Time       `json:"estimatedDelivery"`
	DeliveryFee          *decimal.Decimal `json:"deliveryFee" binding:"required,gte=0"`
}

type UpdateOrderStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type OrderResponse struct {
	ID                   int64                  `json:"id"`
	UserID               int64                  `json:"userId"`
	Status               model.OrderStatus      `json:"status"`
	Subtotal             decimal.Decimal        `json:"subtotal"`
	DeliveryFee          decimal.Decimal        `json:"deliveryFee"`
	Tax                  decimal.Decimal        `json:"tax"`
	Total                decimal.Decimal        `json:"total"`
	Address              string                 `json:"address"`
	City                 string                 `json:"city"`
	State                string                 `json:"state"`
	ZipCode              string                 `json:"zipCode"`
	ContactEmail         string                 `json:"contactEmail"`
	ContactPhone         string                 `json:"contactPhone"`
	DeliveryInstructions *string                `json:"deliveryInstructions"`
	EstimatedDelivery    *time.Time             `json:"estimatedDelivery"`
	CreatedAt            time.Time              `json:"createdAt"`
	UpdatedAt            time.Time              `json:"updatedAt"`
	Items                []OrderItemResponse    `json:"items,omitempty"`
	StatusHistory        []OrderHistoryResponse `json:"statusHistory,omitempty"`
}

type OrderItemResponse struct {
	ID         int64            `json:"id"`
	OrderID    int64            `json:"orderId"`
	ProductID  int64            `json:"productId"`
	Quantity   int              `json:"quantity"`
	UnitPrice  decimal.Decimal  `json:"unitPrice"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
	Product    *ProductResponse `json:"product"`
}

type OrderHistoryResponse struct {
	ID        int64             `json:"id"`
	OrderID   int64             `json:"orderId"`
	Status    model.OrderStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Notes     *string           `json:"notes"`
}

// --- Admin ---

type StatsResponse struct {
	CustomerCount int             `json:"customerCount"`
	OrderCount    int             `json:"orderCount"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	ProductsSold  int             `json:"productsSold"`
	ProductCount  int             `json:"productCount"`
}

// --- Errors ---

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}
