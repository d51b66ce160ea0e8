package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
	Count int       `json:"count"`
}

func newTestMemory(now *time.Time, opts ...MemoryOption) *MemoryCache {
	mc := NewMemoryCache(append([]MemoryOption{WithMemoryCleanup(0)}, opts...)...)
	mc.now = func() time.Time { return *now }
	return mc
}

func TestMemoryRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0).UTC()
	mc := newTestMemory(&now)
	defer mc.Close()

	in := []item{{ID: "leet", At: now, Count: 2}}
	require.NoError(t, mc.Set(ctx, "k", in, time.Minute))

	var out []item
	require.NoError(t, mc.Get(ctx, "k", &out))
	assert.Equal(t, in, out)

	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	assert.ErrorIs(t, mc.Get(ctx, "k", &out), ErrCacheMiss)
	assert.Equal(t, 0, mc.Len(), "expired entry is dropped on read")
}

func TestMemoryStringsAndDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	mc := newTestMemory(&now)
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "forecast:a", "x", 0))
	require.NoError(t, mc.Set(ctx, "forecast:b", "y", 0))
	require.NoError(t, mc.Set(ctx, "other", "z", 0))

	var s string
	require.NoError(t, mc.Get(ctx, "forecast:a", &s))
	assert.Equal(t, "x", s)

	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("forecast:")))
	assert.Equal(t, 1, mc.Len())

	require.NoError(t, mc.Delete(ctx, "other"))
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	mc := newTestMemory(&now, WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Hour))
	now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Hour))
	now = now.Add(time.Second)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Hour))

	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
}

func TestLayeredReadsThroughL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache(WithMemoryCleanup(0))
	lc := NewLayeredCache(l2, WithLayeredL1TTL(time.Minute))
	defer lc.Close()

	require.NoError(t, l2.Set(ctx, "k", item{ID: "prime"}, time.Hour))

	var out item
	require.NoError(t, lc.Get(ctx, "k", &out))
	assert.Equal(t, "prime", out.ID)

	ok, err := lc.mem.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "L2 hit is promoted to memory")

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "forecast:1700000000:UTC:24h0m0s", GenerateKeyWithParams("forecast", 1700000000, "UTC", 24*time.Hour))
}
