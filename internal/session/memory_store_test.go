package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
)

func TestMemoryStore_SaveGet(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	s := New("sid-1", time.Now())
	s.Cart.AddItem(domain.Plan{ID: 2, Name: "VIP Trimestral", Price: domain.MustMoney("159.90")})
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cart.ItemCount())

	// stored state is isolated from both the saved value and returned copies
	s.Cart.Clear()
	got.Cart.AddItem(domain.Plan{ID: 1, Name: "VIP Semanal", Price: domain.MustMoney("69.90")})
	again, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Cart.ItemCount())
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, New("sid-1", now)))
	require.NoError(t, store.Save(ctx, New("sid-2", now)))

	now = now.Add(30 * time.Second)
	_, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 1, store.Sweep())
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, New("sid-1", time.Now())))
	require.NoError(t, store.Delete(ctx, "sid-1"))

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
