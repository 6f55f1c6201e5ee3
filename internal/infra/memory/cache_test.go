package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/chainerr/pkg/logger"
	"github.com/kislikjeka/chainerr/pkg/translator"
)

var _ translator.Cache = (*Cache)(nil)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := NewCache(ttl, 1, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, time.Minute)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte(`{"message":"hi"}`)))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"message":"hi"}`, string(got))

	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestCache_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, time.Minute)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	require.NoError(t, c.SetWithTTL(ctx, "short", []byte("v"), time.Second))

	now = now.Add(30 * time.Second)
	_, ok, _ := c.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestCache_WithTranslator(t *testing.T) {
	c := newTestCache(t, time.Minute)
	tr := translator.New(translator.WithCache(c))

	first := tr.TranslateError(context.Background(), "ERC20: transfer amount exceeds balance", translator.Options{})
	assert.Equal(t, 1, c.Len())
	second := tr.TranslateError(context.Background(), "ERC20: transfer amount exceeds balance", translator.Options{})
	assert.Equal(t, first, second)
	assert.True(t, second.Translated)
}
