package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atarvano/ManifestAi/internal/config"
)

func TestMemoryClient(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10, 0)

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "hs:abc", []byte("8421290000"), time.Hour))
	val, err := c.Get(ctx, "hs:abc")
	require.NoError(t, err)
	assert.Equal(t, "8421290000", string(val))

	require.NoError(t, c.Set(ctx, "hs:abc", []byte("8421230000"), time.Hour))
	val, err = c.Get(ctx, "hs:abc")
	require.NoError(t, err)
	assert.Equal(t, "8421230000", string(val))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryClientExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10, 30*time.Millisecond)

	require.NoError(t, c.Set(ctx, "short", []byte("1"), 0))
	_, err := c.Get(ctx, "short")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "short")
		return err == ErrCacheMiss
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryClientEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(2, 0)

	require.NoError(t, c.Set(ctx, "a", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("b"), 0))

	// Reading a makes b the eviction candidate.
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", []byte("c"), 0))
	assert.Equal(t, 2, c.Len())

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryClientPurge(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10, time.Hour)

	require.NoError(t, c.Set(ctx, Key("hs", "1"), []byte("x"), 0))
	require.NoError(t, c.Set(ctx, Key("hs", "2"), []byte("x"), 0))
	require.NoError(t, c.Set(ctx, Key("run", "1"), []byte("x"), 0))

	n, err := c.Purge(ctx, "hs:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, c.Len())
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, config.CacheConfig{Driver: "none"})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(ctx, config.CacheConfig{Driver: "memory", MaxEntries: 5, TTL: time.Hour})
	require.NoError(t, err)
	require.IsType(t, &MemoryClient{}, c)
	assert.NoError(t, c.Close())

	_, err = New(ctx, config.CacheConfig{Driver: "memcached"})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "hs:v1:abc", Key("hs", "v1", "abc"))
	assert.Equal(t, "", Key())
}
