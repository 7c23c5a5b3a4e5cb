package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/models"
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) (*models.Cart, bool) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("cart cache get failed", "key", key, "error", err)
		return nil, false
	}

	var cart models.Cart
	if err := json.Unmarshal(value, &cart); err != nil {
		r.logger.Warn("cart cache entry is corrupt", "key", key, "error", err)
		return nil, false
	}
	return &cart, true
}

func (r *Redis) Set(ctx context.Context, key string, cart *models.Cart) {
	payload, err := json.Marshal(cart)
	if err != nil {
		r.logger.Warn("cart cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("cart cache set failed", "key", key, "error", err)
	}
}

func (r *Redis) DeletePrefix(ctx context.Context, prefix string) {
	keys := []string{prefix}

	iter := r.client.Scan(ctx, 0, prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("cart cache scan failed", "prefix", prefix, "error", err)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("cart cache invalidate failed", "prefix", prefix, "error", err)
	}
}
