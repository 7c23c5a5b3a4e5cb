// Package memstore is an in-memory implementation of the repository interfaces.
// Transactions are serialized by a single mutex and rolled back by restoring a
// snapshot, which gives the same all-or-nothing behaviour as the Postgres store.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/models"
	"storefront/repositories"
)

type Store struct {
	mu       sync.Mutex
	carts    map[string]*models.Cart
	products map[int64]*models.Product
	orders   map[int64]*models.Order
	users    map[int64]*models.User
	seq      int64

	// FailOrderCreate, when set, is returned by the next Orders().Create call.
	FailOrderCreate error
}

func New() *Store {
	return &Store{
		carts:    map[string]*models.Cart{},
		products: map[int64]*models.Product{},
		orders:   map[int64]*models.Order{},
		users:    map[int64]*models.User{},
	}
}

type view struct {
	s    *Store
	inTx bool
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (s *Store) Carts() repositories.CartStore       { return cartStore{view{s: s}} }
func (s *Store) Products() repositories.ProductStore { return productStore{view{s: s}} }
func (s *Store) Orders() repositories.OrderStore     { return orderStore{view{s: s}} }
func (s *Store) Users() repositories.UserStore       { return userStore{view{s: s}} }

type txUnit struct{ v view }

func (u txUnit) Carts() repositories.CartStore       { return cartStore{u.v} }
func (u txUnit) Products() repositories.ProductStore { return productStore{u.v} }
func (u txUnit) Orders() repositories.OrderStore     { return orderStore{u.v} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow repositories.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
	}()

	if err := fn(ctx, txUnit{view{s: s, inTx: true}}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	carts    map[string]*models.Cart
	products map[int64]*models.Product
	orders   map[int64]*models.Order
	seq      int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		carts:    make(map[string]*models.Cart, len(s.carts)),
		products: make(map[int64]*models.Product, len(s.products)),
		orders:   make(map[int64]*models.Order, len(s.orders)),
		seq:      s.seq,
	}
	for k, c := range s.carts {
		snap.carts[k] = c.Clone()
	}
	for k, p := range s.products {
		snap.products[k] = cloneProduct(p)
	}
	for k, o := range s.orders {
		snap.orders[k] = cloneOrder(o)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.carts = snap.carts
	s.products = snap.products
	s.orders = snap.orders
	s.seq = snap.seq
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// SeedProduct stores p and returns its id.
func (s *Store) SeedProduct(p models.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.next()
	s.products[p.ID] = cloneProduct(&p)
	return p.ID
}

// SeedUser stores u and returns its id.
func (s *Store) SeedUser(u models.User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.next()
	cp := u
	s.users[u.ID] = &cp
	return u.ID
}

func (s *Store) Product(id int64) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *cloneProduct(s.products[id])
}

func (s *Store) SetProductPrice(id int64, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id].Price = mustDecimal(price)
}

func (s *Store) SetProductStock(id int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id].Stock = stock
}

// SeedCart stores cart as-is, bypassing the uniqueness check.
func (s *Store) SeedCart(cart *models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart.ID == 0 {
		cart.ID = s.next()
	}
	s.carts[cart.Owner().CacheKey()] = cart.Clone()
}

func (s *Store) Cart(owner models.CartOwner) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[owner.CacheKey()].Clone()
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type cartStore struct{ view }

func (c cartStore) FindByOwner(_ context.Context, owner models.CartOwner) (*models.Cart, error) {
	defer c.lock()()
	return c.s.carts[owner.CacheKey()].Clone(), nil
}

func (c cartStore) FindByOwnerForUpdate(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	return c.FindByOwner(ctx, owner)
}

func (c cartStore) Create(_ context.Context, cart *models.Cart) error {
	defer c.lock()()
	key := cart.Owner().CacheKey()
	if _, ok := c.s.carts[key]; ok {
		return repositories.ErrDuplicate
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	now := time.Now()
	cart.ID = c.s.next()
	cart.CreatedAt, cart.UpdatedAt = now, now
	c.s.carts[key] = cart.Clone()
	return nil
}

func (c cartStore) Save(_ context.Context, cart *models.Cart) error {
	defer c.lock()()
	key := cart.Owner().CacheKey()
	existing, ok := c.s.carts[key]
	if !ok || existing.ID != cart.ID {
		return repositories.ErrNotFound
	}
	cart.UpdatedAt = time.Now()
	c.s.carts[key] = cart.Clone()
	return nil
}

func (c cartStore) DeleteByOwner(_ context.Context, owner models.CartOwner) error {
	defer c.lock()()
	delete(c.s.carts, owner.CacheKey())
	return nil
}

type productStore struct{ view }

func (p productStore) FindForValidation(_ context.Context, objectID int64, code string) (*models.Product, error) {
	defer p.lock()()
	for _, product := range p.s.products {
		if objectID > 0 && product.ID != objectID {
			continue
		}
		if code != "" && product.Code != code {
			continue
		}
		return cloneProduct(product), nil
	}
	return nil, nil
}

func (p productStore) FindByIDForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	return p.FindByID(ctx, id)
}

func (p productStore) FindByID(_ context.Context, id int64) (*models.Product, error) {
	defer p.lock()()
	product, ok := p.s.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneProduct(product), nil
}

func (p productStore) DecrementStock(_ context.Context, id int64, quantity int) error {
	defer p.lock()()
	product, ok := p.s.products[id]
	if !ok || product.Stock < quantity {
		return repositories.ErrInsufficientStock
	}
	product.Stock -= quantity
	product.UpdatedAt = time.Now()
	return nil
}

func (p productStore) List(_ context.Context, limit, offset int) ([]models.Product, int, error) {
	defer p.lock()()
	all := []models.Product{}
	for _, product := range p.s.products {
		if product.IsDisplayable {
			all = append(all, *cloneProduct(product))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset >= total {
		return []models.Product{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (p productStore) Create(_ context.Context, product *models.Product) error {
	defer p.lock()()
	for _, existing := range p.s.products {
		if existing.Code == product.Code {
			return repositories.ErrDuplicate
		}
	}
	now := time.Now()
	product.ID = p.s.next()
	product.CreatedAt, product.UpdatedAt = now, now
	p.s.products[product.ID] = cloneProduct(product)
	return nil
}

type orderStore struct{ view }

func (o orderStore) Create(_ context.Context, order *models.Order) error {
	defer o.lock()()
	if err := o.s.FailOrderCreate; err != nil {
		o.s.FailOrderCreate = nil
		return err
	}
	now := time.Now()
	order.ID = o.s.next()
	order.CreatedAt, order.UpdatedAt = now, now
	o.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (o orderStore) FindByID(_ context.Context, id int64) (*models.Order, error) {
	defer o.lock()()
	order, ok := o.s.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (o orderStore) ListByUser(_ context.Context, userID int64) ([]models.Order, error) {
	defer o.lock()()
	orders := []models.Order{}
	for _, order := range o.s.orders {
		if order.UserID == userID {
			orders = append(orders, *cloneOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (o orderStore) UpdateStatus(_ context.Context, id int64, from, to models.OrderStatus) error {
	defer o.lock()()
	order, ok := o.s.orders[id]
	if !ok || order.OrderStatus != from {
		return repositories.ErrStaleStatus
	}
	order.OrderStatus = to
	order.UpdatedAt = time.Now()
	return nil
}

type userStore struct{ view }

func (u userStore) FindIdentity(_ context.Context, id int64) (*models.Identity, error) {
	defer u.lock()()
	user, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return &models.Identity{
		ID: user.ID, Email: user.Email, Role: user.Role,
		IsActive: user.IsActive, IsDeleted: user.IsDeleted,
	}, nil
}

func (u userStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	defer u.lock()()
	for _, user := range u.s.users {
		if strings.EqualFold(user.Email, email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (u userStore) Create(_ context.Context, user *models.User) error {
	defer u.lock()()
	for _, existing := range u.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	now := time.Now()
	user.ID = u.s.next()
	user.IsActive = true
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	u.s.users[user.ID] = &cp
	return nil
}
