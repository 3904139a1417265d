// Package cache provides a Redis-backed store for catalog product views.
package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/xenking/storefront/internal/domain/catalog"
)

var _ catalog.Cache = (*RedisCache)(nil)

// DefaultTTL is used when NewRedisCache is given a non-positive TTL.
const DefaultTTL = 15 * time.Minute

// RedisCache stores BSON-encoded product views keyed by id.
type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

// NewRedisCache returns a RedisCache that expires entries after ttl plus up
// to a minute of jitter.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, baseTTL: ttl}
}

// Get returns the cached view, or catalog.ErrCacheMiss.
func (r *RedisCache) Get(ctx context.Context, id string) (*catalog.ProductView, error) {
	data, err := r.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, catalog.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var v catalog.ProductView
	if err := bson.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "decode product view")
	}
	return &v, nil
}

// Set stores v under its id.
func (r *RedisCache) Set(ctx context.Context, v *catalog.ProductView) error {
	data, err := bson.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode product view")
	}

	ttl := r.baseTTL + time.Duration(rand.Int64N(int64(time.Minute)))
	if err := r.client.Set(ctx, productKey(v.ID), data, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Ping checks the Redis connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func productKey(id string) string {
	return fmt.Sprintf("catalog:product:%s", id)
}
