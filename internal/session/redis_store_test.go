package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return NewRedisStore(client, 30*time.Minute), mr, cleanup
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	plan := domain.Plan{ID: 3, Name: "VIP Trimestral", Price: domain.MustMoney("299.90")}
	s := New("sid-1", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	s.Cart.AddItem(plan)
	s.Cart.AddItem(plan)
	s.View = ViewCart
	s.LastOrder = &domain.Order{ID: "o-1", Total: domain.MustMoney("69.90"),
		Items: []domain.LineItem{{Plan: plan, Quantity: 1}}}

	require.NoError(t, store.Save(ctx, s))
	assert.True(t, mr.Exists("session:sid-1"))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:sid-1"))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, ViewCart, got.View)
	assert.Equal(t, 2, got.Cart.ItemCount())
	assert.Equal(t, "599.80", got.Cart.Total().String())
	require.NotNil(t, got.LastOrder)
	assert.Equal(t, "69.90", got.LastOrder.Total.String())
	assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
}

func TestRedisStore_NotFound(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_Expires(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, New("sid-1", time.Now())))
	mr.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set("session:sid-1", "{not json"))
	_, err := store.Get(context.Background(), "sid-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, New("sid-1", time.Now())))
	require.NoError(t, store.Delete(ctx, "sid-1"))
	assert.False(t, mr.Exists("session:sid-1"))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	mr.Close()

	_, err := store.Get(context.Background(), "sid-1")
	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}
