package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/infrastructure/cache"
)

func TestMemoryCache_InvalidateIncrementaVersion(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(0)

	v, err := c.TagVersion(ctx, "stock")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, c.Invalidate(ctx, "stock", "stockMovements"))
	require.NoError(t, c.Invalidate(ctx, "stock"))

	v, _ = c.TagVersion(ctx, "stock")
	assert.Equal(t, int64(2), v)
	v, _ = c.TagVersion(ctx, "stockMovements")
	assert.Equal(t, int64(1), v)
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(0)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	buf := []byte("valeur")
	require.NoError(t, c.Set(ctx, "k", buf))
	buf[0] = 'X' // la caché guarda su propia copia

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "valeur", string(got))
}

func TestNop_NuncaAcierta(t *testing.T) {
	ctx := context.Background()
	var c cache.Nop
	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNopLocker_Lock(t *testing.T) {
	unlock, err := cache.NopLocker{}.Lock(context.Background(), "lock:purchase_order:1")
	require.NoError(t, err)
	require.NotNil(t, unlock)
	unlock(context.Background())
}
