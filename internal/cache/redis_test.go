package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/catalog"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, time.Minute), mr
}

func testView() *catalog.ProductView {
	desc := "Ceramic body with spectral heart-rate wave."
	return &catalog.ProductView{
		ID:          "65f1c0ffee0000000000abcd",
		Title:       "PulseTrack Watch",
		Description: &desc,
		Price:       349,
		Category:    "Wearables",
		Images:      []string{"https://images.example.com/watch.jpg"},
		Tags:        []string{"watch"},
		Specs:       map[string]string{"Body": "Ceramic"},
		InStock:     true,
		Inventory:   10,
		Featured:    true,
		Rating:      4.6,
	}
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	want := testView()

	require.NoError(t, c.Set(ctx, want))
	assert.True(t, mr.Exists(productKey(want.ID)))

	ttl := mr.TTL(productKey(want.ID))
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.Less(t, ttl, 2*time.Minute)

	got, err := c.Get(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGet_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
}

func TestGet_Expired(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	v := testView()

	require.NoError(t, c.Set(ctx, v))
	mr.FastForward(3 * time.Minute)

	_, err := c.Get(ctx, v.ID)
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
}

func TestGet_CorruptEntry(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(productKey("bad"), "not bson"))

	_, err := c.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, catalog.ErrCacheMiss)
}

func TestServerDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()
	ctx := context.Background()

	_, err := c.Get(ctx, "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, catalog.ErrCacheMiss)
	assert.Error(t, c.Set(ctx, testView()))
	assert.Error(t, c.Ping(ctx))
}
