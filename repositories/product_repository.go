package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"storefront/models"
)

const productColumns = `id, product_code, name, price::text, stock, is_saleable, is_displayable, prepaid_only, sizes, colors, image, created_at, updated_at`

type ProductRepository struct {
	db Querier
}

func NewProductRepository(db Querier) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var (
		p     models.Product
		price string
	)
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &price, &p.Stock, &p.IsSaleable, &p.IsDisplayable,
		&p.PrepaidOnly, &p.Sizes, &p.Colors, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	return &p, nil
}

func (r *ProductRepository) FindForValidation(ctx context.Context, objectID int64, code string) (*models.Product, error) {
	var row pgx.Row
	switch {
	case objectID > 0 && code != "":
		row = r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND product_code = $2`, objectID, code)
	case objectID > 0:
		row = r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, objectID)
	default:
		row = r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_code = $1`, code)
	}

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock - $1, updated_at = $2 WHERE id = $3 AND stock >= $1`,
		quantity, time.Now(), id)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]models.Product, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_displayable = true`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_displayable = true ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}

	query := `
		INSERT INTO products (product_code, name, price, stock, is_saleable, is_displayable, prepaid_only, sizes, colors, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.Code, p.Name, p.Price.String(), p.Stock, p.IsSaleable, p.IsDisplayable, p.PrepaidOnly,
		p.Sizes, p.Colors, p.Image, time.Now(),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}
