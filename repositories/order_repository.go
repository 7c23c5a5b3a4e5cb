package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"storefront/models"
)

const orderColumns = `id, user_id, items, total_amount::text, shipping_address, contact_number, payment_method, payment_status, payment_details, order_status, created_at, updated_at`

type OrderRepository struct {
	db Querier
}

func NewOrderRepository(db Querier) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}
	var details []byte
	if o.PaymentDetails != nil {
		if details, err = json.Marshal(o.PaymentDetails); err != nil {
			return fmt.Errorf("encode payment details: %w", err)
		}
	}

	query := `
		INSERT INTO orders (user_id, items, total_amount, shipping_address, contact_number,
			payment_method, payment_status, payment_details, order_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		o.UserID, items, o.TotalAmount.String(), address, o.ContactNumber,
		string(o.PaymentMethod), string(o.PaymentStatus), details, string(o.OrderStatus), time.Now(),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o                               models.Order
		items, address, details         []byte
		total, method, payStatus, state string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &items, &total, &address, &o.ContactNumber,
		&method, &payStatus, &details, &state, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total %q: %w", total, err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if len(details) > 0 {
		o.PaymentDetails = &models.PaymentDetails{}
		if err := json.Unmarshal(details, o.PaymentDetails); err != nil {
			return nil, fmt.Errorf("decode payment details: %w", err)
		}
	}
	o.PaymentMethod = models.PaymentMethod(method)
	o.PaymentStatus = models.PaymentStatus(payStatus)
	o.OrderStatus = models.OrderStatus(state)
	return &o, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another; ErrStaleStatus means
// the order is no longer in the from status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET order_status = $1, updated_at = $2 WHERE id = $3 AND order_status = $4`,
		string(to), time.Now(), id, string(from))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}
