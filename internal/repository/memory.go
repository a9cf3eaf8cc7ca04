package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/greengrocer/grocery-api/internal/model"
)

type memTables struct {
	users      map[int64]model.User
	categories map[int64]model.Category
	products   map[int64]model.Product
	carts      map[int64]model.Cart
	cartItems  map[int64]model.CartItem
	orders     map[int64]model.Order
	orderItems map[int64]model.OrderItem
	history    map[int64]model.OrderStatusHistory
	favorites  map[int64]model.Favorite
}

func (t *memTables) clone() *memTables {
	return &memTables{
		users:      maps.Clone(t.users),
		categories: maps.Clone(t.categories),
		products:   maps.Clone(t.products),
		carts:      maps.Clone(t.carts),
		cartItems:  maps.Clone(t.cartItems),
		orders:     maps.Clone(t.orders),
		orderItems: maps.Clone(t.orderItems),
		history:    maps.Clone(t.history),
		favorites:  maps.Clone(t.favorites),
	}
}

// memIDs live outside the tables so a rolled back transaction never hands
// the same id out twice.
type memIDs struct {
	user, category, product, cart, cartItem, order, orderItem, history, favorite atomic.Int64
}

// MemoryStore keeps every table in process memory. A single RWMutex guards
// all tables; WithinTx holds the write lock for the whole callback and
// restores a snapshot when the callback fails.
type MemoryStore struct {
	mu   *sync.RWMutex
	t    *memTables
	ids  *memIDs
	inTx bool
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		mu: &sync.RWMutex{},
		t: &memTables{
			users:      make(map[int64]model.User),
			categories: make(map[int64]model.Category),
			products:   make(map[int64]model.Product),
			carts:      make(map[int64]model.Cart),
			cartItems:  make(map[int64]model.CartItem),
			orders:     make(map[int64]model.Order),
			orderItems: make(map[int64]model.OrderItem),
			history:    make(map[int64]model.OrderStatusHistory),
			favorites:  make(map[int64]model.Favorite),
		},
		ids: &memIDs{},
	}
	for _, c := range DefaultCategories {
		c.ID = s.ids.category.Add(1)
		s.t.categories[c.ID] = c
	}
	return s
}

func (s *MemoryStore) Users() UserRepository { return memUserRepo{s} }
func (s *MemoryStore) Categories() CategoryRepository { return memCategoryRepo{s} }
func (s *MemoryStore) Products() ProductRepository { return memProductRepo{s} }
func (s *MemoryStore) Carts() CartRepository { return memCartRepo{s} }
func (s *MemoryStore) Orders() OrderRepository { return memOrderRepo{s} }
func (s *MemoryStore) Favorites() FavoriteRepository { return memFavoriteRepo{s} }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	if err := fn(ctx, &MemoryStore{mu: s.mu, t: s.t, ids: s.ids, inTx: true}); err != nil {
		*s.t = *snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func now() time.Time { return time.Now().UTC() }

// filtered returns the values of m accepted by keep, ordered by id.
func filtered[T any](m map[int64]T, keep func(T) bool) []T {
	out := make([]T, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		if v := m[id]; keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func lookup[T any](m map[int64]T, id int64) *T {
	v, ok := m[id]
	if !ok {
		return nil
	}
	return &v
}

// --- users ---

type memUserRepo struct{ s *MemoryStore }

func (r memUserRepo) List(context.Context) ([]model.User, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.users, nil), nil
}

func (r memUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	defer r.s.rlock()()
	return lookup(r.s.t.users, id), nil
}

func (r memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	defer r.s.rlock()()
	return r.first(func(u model.User) bool { return u.Username == username }), nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	defer r.s.rlock()()
	return r.first(func(u model.User) bool { return u.Email == email }), nil
}

func (r memUserRepo) first(match func(model.User) bool) *model.User {
	if found := filtered(r.s.t.users, match); len(found) > 0 {
		return &found[0]
	}
	return nil
}

func (r memUserRepo) Create(_ context.Context, user *model.User) error {
	defer r.s.lock()()
	if r.first(func(u model.User) bool { return u.Username == user.Username }) != nil {
		return fmt.Errorf("create user: %w", ErrDuplicate)
	}
	user.ID = r.s.ids.user.Add(1)
	user.CreatedAt = now()
	r.s.t.users[user.ID] = *user
	return nil
}

func (r memUserRepo) Update(_ context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	defer r.s.lock()()
	user, ok := r.s.t.users[id]
	if !ok {
		return nil, nil
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Avatar != nil {
		user.Avatar = patch.Avatar
	}
	r.s.t.users[id] = user
	return &user, nil
}

// --- categories ---

type memCategoryRepo struct{ s *MemoryStore }

func (r memCategoryRepo) List(context.Context) ([]model.Category, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.categories, nil), nil
}

func (r memCategoryRepo) GetByID(_ context.Context, id int64) (*model.Category, error) {
	defer r.s.rlock()()
	return lookup(r.s.t.categories, id), nil
}

func (r memCategoryRepo) Create(_ context.Context, category *model.Category) error {
	defer r.s.lock()()
	if r.nameTaken(category.Name, 0) {
		return fmt.Errorf("create category: %w", ErrDuplicate)
	}
	category.ID = r.s.ids.category.Add(1)
	r.s.t.categories[category.ID] = *category
	return nil
}

func (r memCategoryRepo) Update(_ context.Context, id int64, patch model.CategoryPatch) (*model.Category, error) {
	defer r.s.lock()()
	c, ok := r.s.t.categories[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		if r.nameTaken(*patch.Name, id) {
			return nil, fmt.Errorf("update category: %w", ErrDuplicate)
		}
		c.Name = *patch.Name
	}
	if patch.Icon != nil {
		c.Icon = *patch.Icon
	}
	r.s.t.categories[id] = c
	return &c, nil
}

func (r memCategoryRepo) nameTaken(name string, except int64) bool {
	return len(filtered(r.s.t.categories, func(c model.Category) bool { return c.Name == name && c.ID != except })) > 0
}

func (r memCategoryRepo) Delete(_ context.Context, id int64) (bool, error) {
	defer r.s.lock()()
	if _, ok := r.s.t.categories[id]; !ok {
		return false, nil
	}
	delete(r.s.t.categories, id)
	return true, nil
}

// --- products ---

type memProductRepo struct{ s *MemoryStore }

func (r memProductRepo) List(context.Context) ([]model.Product, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.products, nil), nil
}

func (r memProductRepo) ListByCategory(_ context.Context, categoryID int64) ([]model.Product, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.products, func(p model.Product) bool {
		return p.CategoryID != nil && *p.CategoryID == categoryID
	}), nil
}

func (r memProductRepo) GetByID(_ context.Context, id int64) (*model.Product, error) {
	defer r.s.rlock()()
	return lookup(r.s.t.products, id), nil
}

func (r memProductRepo) Create(_ context.Context, product *model.Product) error {
	defer r.s.lock()()
	if r.skuTaken(product.SKU, 0) {
		return fmt.Errorf("create product: %w", ErrDuplicate)
	}
	product.ID = r.s.ids.product.Add(1)
	product.Status = model.StockStatus(product.Stock)
	product.CreatedAt = now()
	product.UpdatedAt = product.CreatedAt
	r.s.t.products[product.ID] = *product
	return nil
}

func (r memProductRepo) Update(_ context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.t.products[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Unit != nil {
		p.Unit = *patch.Unit
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
		p.Status = model.StockStatus(p.Stock)
	}
	if patch.Image != nil {
		p.Image = patch.Image
	}
	if patch.IsOrganic != nil {
		p.IsOrganic = *patch.IsOrganic
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.CategoryID != nil {
		p.CategoryID = patch.CategoryID
	}
	if patch.SKU != nil {
		if r.skuTaken(*patch.SKU, id) {
			return nil, fmt.Errorf("update product: %w", ErrDuplicate)
		}
		p.SKU = *patch.SKU
	}
	p.UpdatedAt = now()
	r.s.t.products[id] = p
	return &p, nil
}

func (r memProductRepo) skuTaken(sku string, except int64) bool {
	return len(filtered(r.s.t.products, func(p model.Product) bool { return p.SKU == sku && p.ID != except })) > 0
}

func (r memProductRepo) Delete(_ context.Context, id int64) (bool, error) {
	defer r.s.lock()()
	if _, ok := r.s.t.products[id]; !ok {
		return false, nil
	}
	delete(r.s.t.products, id)
	return true, nil
}

func (r memProductRepo) DecrementStock(_ context.Context, id int64, quantity int) (*model.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.t.products[id]
	if !ok || p.Stock < quantity {
		return nil, nil
	}
	p.Stock -= quantity
	p.Status = model.StockStatus(p.Stock)
	p.UpdatedAt = now()
	r.s.t.products[id] = p
	return &p, nil
}

// --- carts ---

type memCartRepo struct{ s *MemoryStore }

func (r memCartRepo) GetByUserID(_ context.Context, userID int64) (*model.Cart, error) {
	defer r.s.rlock()()
	return r.byUser(userID), nil
}

func (r memCartRepo) byUser(userID int64) *model.Cart {
	if found := filtered(r.s.t.carts, func(c model.Cart) bool { return c.UserID == userID }); len(found) > 0 {
		return &found[0]
	}
	return nil
}

func (r memCartRepo) Create(_ context.Context, userID int64) (*model.Cart, error) {
	defer r.s.lock()()
	if existing := r.byUser(userID); existing != nil {
		return existing, nil
	}
	cart := model.Cart{ID: r.s.ids.cart.Add(1), UserID: userID, UpdatedAt: now()}
	r.s.t.carts[cart.ID] = cart
	return &cart, nil
}

func (r memCartRepo) ListItems(_ context.Context, cartID int64) ([]model.CartItem, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.cartItems, func(i model.CartItem) bool { return i.CartID == cartID }), nil
}

func (r memCartRepo) GetItem(_ context.Context, itemID int64) (*model.CartItem, error) {
	defer r.s.rlock()()
	return lookup(r.s.t.cartItems, itemID), nil
}

func (r memCartRepo) AddItem(_ context.Context, item *model.CartItem) error {
	defer r.s.lock()()
	existing := filtered(r.s.t.cartItems, func(i model.CartItem) bool {
		return i.CartID == item.CartID && i.ProductID == item.ProductID
	})
	if len(existing) > 0 {
		item.ID = existing[0].ID
		item.Quantity += existing[0].Quantity
	} else {
		item.ID = r.s.ids.cartItem.Add(1)
	}
	r.s.t.cartItems[item.ID] = *item
	r.touch(item.CartID)
	return nil
}

func (r memCartRepo) UpdateItemQuantity(_ context.Context, itemID int64, quantity int) (*model.CartItem, error) {
	defer r.s.lock()()
	item, ok := r.s.t.cartItems[itemID]
	if !ok {
		return nil, nil
	}
	r.touch(item.CartID)
	if quantity <= 0 {
		delete(r.s.t.cartItems, itemID)
		return nil, nil
	}
	item.Quantity = quantity
	r.s.t.cartItems[itemID] = item
	return &item, nil
}

func (r memCartRepo) RemoveItem(_ context.Context, itemID int64) (bool, error) {
	defer r.s.lock()()
	item, ok := r.s.t.cartItems[itemID]
	if !ok {
		return false, nil
	}
	delete(r.s.t.cartItems, itemID)
	r.touch(item.CartID)
	return true, nil
}

func (r memCartRepo) Clear(_ context.Context, cartID int64) error {
	defer r.s.lock()()
	maps.DeleteFunc(r.s.t.cartItems, func(_ int64, i model.CartItem) bool { return i.CartID == cartID })
	r.touch(cartID)
	return nil
}

func (r memCartRepo) touch(cartID int64) {
	if cart, ok := r.s.t.carts[cartID]; ok {
		cart.UpdatedAt = now()
		r.s.t.carts[cartID] = cart
	}
}

// --- orders ---

type memOrderRepo struct{ s *MemoryStore }

func (r memOrderRepo) List(context.Context) ([]model.Order, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.orders, nil), nil
}

func (r memOrderRepo) ListByUserID(_ context.Context, userID int64) ([]model.Order, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.orders, func(o model.Order) bool { return o.UserID == userID }), nil
}

func (r memOrderRepo) GetByID(_ context.Context, id int64) (*model.Order, error) {
	defer r.s.rlock()()
	return lookup(r.s.t.orders, id), nil
}

// GetByIDForUpdate needs no row lock: WithinTx already holds the store's write lock.
func (r memOrderRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.GetByID(ctx, id)
}

func (r memOrderRepo) Create(_ context.Context, order *model.Order) error {
	defer r.s.lock()()
	order.ID = r.s.ids.order.Add(1)
	order.CreatedAt = now()
	order.UpdatedAt = order.CreatedAt
	r.s.t.orders[order.ID] = *order

	note := orderCreatedNote
	r.appendHistory(order.ID, order.Status, order.CreatedAt, &note)
	return nil
}

func (r memOrderRepo) UpdateStatus(_ context.Context, id int64, status model.OrderStatus, notes *string) (*model.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.t.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = status
	o.UpdatedAt = now()
	r.s.t.orders[id] = o
	r.appendHistory(id, status, o.UpdatedAt, notes)
	return &o, nil
}

func (r memOrderRepo) appendHistory(orderID int64, status model.OrderStatus, at time.Time, notes *string) {
	h := model.OrderStatusHistory{
		ID:        r.s.ids.history.Add(1),
		OrderID:   orderID,
		Status:    status,
		Timestamp: at,
		Notes:     notes,
	}
	r.s.t.history[h.ID] = h
}

func (r memOrderRepo) ListItems(_ context.Context, orderID int64) ([]model.OrderItem, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.orderItems, func(i model.OrderItem) bool { return i.OrderID == orderID }), nil
}

func (r memOrderRepo) AddItem(_ context.Context, item *model.OrderItem) error {
	defer r.s.lock()()
	item.ID = r.s.ids.orderItem.Add(1)
	r.s.t.orderItems[item.ID] = *item
	return nil
}

func (r memOrderRepo) ListHistory(_ context.Context, orderID int64) ([]model.OrderStatusHistory, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.history, func(h model.OrderStatusHistory) bool { return h.OrderID == orderID }), nil
}

// --- favorites ---

type memFavoriteRepo struct{ s *MemoryStore }

func (r memFavoriteRepo) ListByUserID(_ context.Context, userID int64) ([]model.Favorite, error) {
	defer r.s.rlock()()
	return filtered(r.s.t.favorites, func(f model.Favorite) bool { return f.UserID == userID }), nil
}

func (r memFavoriteRepo) GetByID(_ context.Context, id int64) (*model.Favorite, error) {
	defer r.s.rlock()()
	return lookup(r.s.t.favorites, id), nil
}

func (r memFavoriteRepo) Add(_ context.Context, favorite *model.Favorite) error {
	defer r.s.lock()()
	existing := filtered(r.s.t.favorites, func(f model.Favorite) bool {
		return f.UserID == favorite.UserID && f.ProductID == favorite.ProductID
	})
	if len(existing) > 0 {
		*favorite = existing[0]
		return nil
	}
	favorite.ID = r.s.ids.favorite.Add(1)
	favorite.CreatedAt = now()
	r.s.t.favorites[favorite.ID] = *favorite
	return nil
}

func (r memFavoriteRepo) Remove(_ context.Context, id int64) (bool, error) {
	defer r.s.lock()()
	if _, ok := r.s.t.favorites[id]; !ok {
		return false, nil
	}
	delete(r.s.t.favorites, id)
	return true, nil
}
