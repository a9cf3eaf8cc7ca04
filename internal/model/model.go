package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64
	Username  string
	Password  string
	FullName  string
	Email     string
	Role      Role
	Avatar    *string
	CreatedAt time.Time
}

type UserPatch struct {
	FullName *string
	Email    *string
	Avatar   *string
}

type Category struct {
	ID   int64
	Name string
	Icon string
}

type CategoryPatch struct {
	Name *string
	Icon *string
}

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Unit        string
	Stock       int
	Image       *string
	IsOrganic   bool
	Rating      decimal.Decimal
	CategoryID  *int64
	SKU         string
	Status      ProductStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductPatch holds the fields of a partial product update. Status is not
// patchable; it follows Stock.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Unit        *string
	Stock       *int
	Image       *string
	IsOrganic   *bool
	Rating      *decimal.Decimal
	CategoryID  *int64
	SKU         *string
}

type Cart struct {
	ID        int64
	UserID    int64
	UpdatedAt time.Time
}

type CartItem struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
}

type Order struct {
	ID                   int64
	UserID               int64
	Status               OrderStatus
	Subtotal             decimal.Decimal
	DeliveryFee          decimal.Decimal
	Tax                  decimal.Decimal
	Total                decimal.Decimal
	Address              string
	City                 string
	State                string
	ZipCode              string
	ContactEmail         string
	ContactPhone         string
	DeliveryInstructions *string
	EstimatedDelivery    *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type OrderItem struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

type OrderStatusHistory struct {
	ID        int64
	OrderID   int64
	Status    OrderStatus
	Timestamp time.Time
	Notes     *string
}

type Favorite struct {
	ID        int64
	UserID    int64
	ProductID int64
	CreatedAt time.Time
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	SessionID string
	UserID    int64
	Role      Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
