package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"storefront/models"
)

const cartColumns = `id, COALESCE(user_id, 0), COALESCE(session_id, ''), items, created_at, updated_at`

type CartRepository struct {
	db Querier
}

func NewCartRepository(db Querier) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) FindByOwner(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	return r.find(ctx, owner, "")
}

func (r *CartRepository) FindByOwnerForUpdate(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	return r.find(ctx, owner, " FOR UPDATE")
}

func (r *CartRepository) find(ctx context.Context, owner models.CartOwner, lock string) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE session_id = $1` + lock
	var arg any = owner.SessionID
	if owner.IsUser() {
		query = `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1` + lock
		arg = owner.UserID
	}

	var (
		cart      models.Cart
		userID    int64
		sessionID string
		items     []byte
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&cart.ID, &userID, &sessionID, &items, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}

	if userID != 0 {
		cart.UserID = &userID
	}
	if sessionID != "" {
		cart.SessionID = &sessionID
	}
	if err := json.Unmarshal(items, &cart.Items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}

	query := `
		INSERT INTO carts (user_id, session_id, items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query, cart.UserID, cart.SessionID, items, time.Now()).
		Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}

	now := time.Now()
	tag, err := r.db.Exec(ctx, `UPDATE carts SET items = $1, updated_at = $2 WHERE id = $3`, items, now, cart.ID)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	cart.UpdatedAt = now
	return nil
}

func (r *CartRepository) DeleteByOwner(ctx context.Context, owner models.CartOwner) error {
	var err error
	if owner.IsUser() {
		_, err = r.db.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, owner.UserID)
	} else {
		_, err = r.db.Exec(ctx, `DELETE FROM carts WHERE session_id = $1`, owner.SessionID)
	}
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
