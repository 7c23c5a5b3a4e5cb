// Package cache holds the cart cache port. Every implementation treats
// failures as misses: callers never see a cache error.
package cache

import (
	"context"
	"strings"

	"storefront/models"
)

type CartCache interface {
	Get(ctx context.Context, key string) (*models.Cart, bool)
	Set(ctx context.Context, key string, cart *models.Cart)
	// DeletePrefix drops key itself and every key nested under "key:".
	DeletePrefix(ctx context.Context, key string)
}

type Noop struct{}

func (Noop) Get(context.Context, string) (*models.Cart, bool) { return nil, false }
func (Noop) Set(context.Context, string, *models.Cart)        {}
func (Noop) DeletePrefix(context.Context, string)             {}

func underPrefix(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+":")
}
