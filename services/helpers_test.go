package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/cache"
	"storefront/models"
	"storefront/repositories"
	"storefront/repositories/memstore"
	"storefront/utils"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store  *memstore.Store
	cache  *cache.Memory
	tokens *utils.JWTIssuer
	carts  *CartService
	orders *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	mem := cache.NewMemory(time.Minute)
	tokens := utils.NewJWTIssuer("test-secret", time.Hour)
	logger := discardLogger()

	return &fixture{
		store:  store,
		cache:  mem,
		tokens: tokens,
		carts:  NewCartService(store.Carts(), store.Products(), store.Users(), mem, tokens, logger),
		orders: NewOrderService(store, store.Orders(), mem, TrustingVerifier{}, nil, logger),
	}
}

func (f *fixture) customer(email string) int64 {
	return f.store.SeedUser(models.User{Email: email, Role: models.RoleCustomer, IsActive: true})
}

func (f *fixture) product(code, price string, stock int) int64 {
	return f.store.SeedProduct(models.Product{
		Code:          code,
		Name:          "Product " + code,
		Price:         dec(price),
		Stock:         stock,
		IsSaleable:    true,
		IsDisplayable: true,
		Sizes:         []string{"S", "M", "L"},
		Colors:        []string{"Red", "Blue"},
		Image:         "https://cdn.example.com/" + code + ".png",
	})
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.Status)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func validOrder(method models.PaymentMethod, details *models.PaymentDetails) models.PlaceOrderRequest {
	return models.PlaceOrderRequest{
		ShippingAddress: models.ShippingAddress{
			Division: "Dhaka",
			District: "Dhaka",
			Upazila:  "Gulshan",
			Address:  "House 1, Road 2",
		},
		ContactNumber:  "01700000000",
		PaymentMethod:  method,
		PaymentDetails: details,
	}
}

// contextCache drops writes on a finished context, the way a network cache fails.
type contextCache struct {
	cache.CartCache
}

func (c contextCache) Set(ctx context.Context, key string, cart *models.Cart) {
	if ctx.Err() != nil {
		return
	}
	c.CartCache.Set(ctx, key, cart)
}

func (c contextCache) DeletePrefix(ctx context.Context, key string) {
	if ctx.Err() != nil {
		return
	}
	c.CartCache.DeletePrefix(ctx, key)
}

type contextCarts struct {
	repositories.CartStore
}

func (c contextCarts) FindByOwner(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.CartStore.FindByOwner(ctx, owner)
}
