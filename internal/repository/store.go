package repository

import (
	"context"
	"errors"

	"github.com/greengrocer/grocery-api/internal/model"
)

// ErrDuplicate is returned when a write would break a uniqueness rule:
// usernames, category names and product SKUs.
var ErrDuplicate = errors.New("duplicate record")

// Lookups return (nil, nil) when the record does not exist and deletes report
// whether a row was removed. No method cascades across entities.

type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, id int64, patch model.CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// DecrementStock subtracts quantity only if enough stock is on hand and
	// re-derives the status label. It returns (nil, nil) when the product is
	// missing or the stock is insufficient.
	DecrementStock(ctx context.Context, id int64, quantity int) (*model.Product, error)
}

type CartRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*model.Cart, error)
	Create(ctx context.Context, userID int64) (*model.Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error)
	GetItem(ctx context.Context, itemID int64) (*model.CartItem, error)
	// AddItem increments the quantity of an existing (cart, product) row
	// instead of inserting a duplicate.
	AddItem(ctx context.Context, item *model.CartItem) error
	// UpdateItemQuantity removes the item when quantity <= 0 and then returns nil.
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, itemID int64) (bool, error)
	Clear(ctx context.Context, cartID int64) error
}

type OrderRepository interface {
	List(ctx context.Context) ([]model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// GetByIDForUpdate reads the order and locks it until the surrounding
	// transaction ends. Outside WithinTx it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Order, error)
	// Create inserts the order and its initial "Order created" history row.
	Create(ctx context.Context, order *model.Order) error
	// UpdateStatus sets the status and appends one history row.
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, notes *string) (*model.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	AddItem(ctx context.Context, item *model.OrderItem) error
	ListHistory(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error)
}

type FavoriteRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.Favorite, error)
	GetByID(ctx context.Context, id int64) (*model.Favorite, error)
	// Add returns the existing row when the (user, product) pair is already favorited.
	Add(ctx context.Context, favorite *model.Favorite) error
	Remove(ctx context.Context, id int64) (bool, error)
}

// Store is the persistence gateway. WithinTx hands fn a Store whose writes are
// committed only if fn returns nil.
type Store interface {
	Users() UserRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Favorites() FavoriteRepository

	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
}

const orderCreatedNote = "Order created"

// DefaultCategories are seeded into a fresh store.
var DefaultCategories = []model.Category{
	{Name: "Vegetables", Icon: "ri-leaf-line"},
	{Name: "Fruits", Icon: "ri-apple-line"},
	{Name: "Organic", Icon: "ri-seedling-line"},
	{Name: "Fresh Herbs", Icon: "ri-plant-line"},
	{Name: "Dairy", Icon: "ri-cup-line"},
}
