package cache

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, time.Minute, zerolog.Nop()), mr
}

func testProduct() *model.Product {
	return &model.Product{
		ID:       primitive.NewObjectID(),
		Title:    "Espresso Beans",
		SKU:      "SKU-ESP-01",
		Price:    24.99,
		Stock:    12,
		IsActive: true,
	}
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	product := testProduct()

	require.NoError(t, c.Set(ctx, product))

	got, err := c.Get(ctx, product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	assert.Equal(t, product.Title, got.Title)
	assert.Equal(t, product.Stock, got.Stock)
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	product := testProduct()

	require.NoError(t, c.Set(ctx, product))

	// Fast-forward past base TTL plus maximum jitter.
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, product.ID.Hex())
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	first := testProduct()
	second := testProduct()
	require.NoError(t, c.Set(ctx, first))
	require.NoError(t, c.Set(ctx, second))

	require.NoError(t, c.Invalidate(ctx, first.ID.Hex(), second.ID.Hex()))

	_, err := c.Get(ctx, first.ID.Hex())
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, second.ID.Hex())
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_InvalidateNothing(t *testing.T) {
	c, _ := newTestCache(t)
	assert.NoError(t, c.Invalidate(context.Background()))
}

func TestNoopCache(t *testing.T) {
	var c ProductCache = NoopCache{}
	ctx := context.Background()

	_, err := c.Get(ctx, "anything")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Set(ctx, testProduct()))
	assert.NoError(t, c.Invalidate(ctx, "anything"))
}
