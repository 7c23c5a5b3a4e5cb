package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"storefront/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStaleStatus       = errors.New("order status changed concurrently")
)

// Querier is the subset of pgxpool.Pool and pgx.Tx the repositories use,
// so the same repository code runs inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DBPool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

type CartStore interface {
	// FindByOwner returns nil, nil when the owner has no cart.
	FindByOwner(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	// FindByOwnerForUpdate locks the cart row until the surrounding transaction ends.
	FindByOwnerForUpdate(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	// Create returns ErrDuplicate when the owner already has a cart.
	Create(ctx context.Context, cart *models.Cart) error
	Save(ctx context.Context, cart *models.Cart) error
	DeleteByOwner(ctx context.Context, owner models.CartOwner) error
}

type ProductStore interface {
	// FindForValidation returns nil, nil when no product matches.
	FindForValidation(ctx context.Context, objectID int64, code string) (*models.Product, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int) error
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, limit, offset int) ([]models.Product, int, error)
	Create(ctx context.Context, product *models.Product) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus) error
}

type UserStore interface {
	// FindIdentity returns nil, nil when the user does not exist.
	FindIdentity(ctx context.Context, id int64) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// UnitOfWork hands out stores bound to a single transaction.
type UnitOfWork interface {
	Carts() CartStore
	Products() ProductStore
	Orders() OrderStore
}

type TxRunner interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	// fn's error is returned unchanged.
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}

type Store struct {
	pool DBPool
}

func NewStore(pool DBPool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Carts() CartStore       { return NewCartRepository(s.pool) }
func (s *Store) Products() ProductStore { return NewProductRepository(s.pool) }
func (s *Store) Orders() OrderStore     { return NewOrderRepository(s.pool) }
func (s *Store) Users() UserStore       { return NewUserRepository(s.pool) }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// no-op once committed; also ends the tx when fn panics
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, txUnit{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type txUnit struct {
	tx pgx.Tx
}

func (u txUnit) Carts() CartStore       { return NewCartRepository(u.tx) }
func (u txUnit) Products() ProductStore { return NewProductRepository(u.tx) }
func (u txUnit) Orders() OrderStore     { return NewOrderRepository(u.tx) }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
