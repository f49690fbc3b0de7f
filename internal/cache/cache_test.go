package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemory_GetSetAndExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryWithClock(clock.Now)

	require.NoError(t, store.Set(ctx, "quote:PETR4.SA", []byte("v1"), 300*time.Second))

	got, ok, err := store.Get(ctx, "quote:PETR4.SA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	clock.Advance(299 * time.Second)
	_, ok, _ = store.Get(ctx, "quote:PETR4.SA")
	assert.True(t, ok, "entry should still be live just before expiry")

	clock.Advance(time.Second)
	_, ok, _ = store.Get(ctx, "quote:PETR4.SA")
	assert.False(t, ok, "entry should be expired at its deadline")
	assert.Equal(t, 0, store.Len(), "expired entry should be removed on read")
}

func TestMemory_MissingKey(t *testing.T) {
	t.Parallel()
	store := NewMemory()

	got, ok, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMemory_NonPositiveTTLIsNoop(t *testing.T) {
	t.Parallel()
	store := NewMemory()

	require.NoError(t, store.Set(context.Background(), "k", []byte("v"), 0))
	assert.Equal(t, 0, store.Len())
}

func TestMemory_LastWriteWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "k", []byte("first"), time.Minute))
	require.NoError(t, store.Set(ctx, "k", []byte("second"), time.Minute))

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(got))
}

func TestJSONHelpers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemory()

	type payload struct {
		Ticker string `json:"ticker"`
		Valid  bool   `json:"valid"`
	}

	require.NoError(t, SetJSON(ctx, store, "quote:AAPL", payload{Ticker: "AAPL", Valid: true}, time.Minute))

	got, ok, err := GetJSON[payload](ctx, store, "quote:AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload{Ticker: "AAPL", Valid: true}, got)

	require.NoError(t, store.Set(ctx, "broken", []byte("{"), time.Minute))
	_, ok, err = GetJSON[payload](ctx, store, "broken")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedis_GetSetAndExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedis(client, "finboard:")

	_, ok, err := store.Get(ctx, "history:VALE3.SA:1mo:1d")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "history:VALE3.SA:1mo:1d", []byte("[]"), 600*time.Second))
	assert.True(t, mr.Exists("finboard:history:VALE3.SA:1mo:1d"), "key should carry the prefix")

	got, ok, err := store.Get(ctx, "history:VALE3.SA:1mo:1d")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(got))

	mr.FastForward(601 * time.Second)
	_, ok, err = store.Get(ctx, "history:VALE3.SA:1mo:1d")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_ErrorsSurface(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedis(client, "")

	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestDialRedis(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)

	store, err := DialRedis(context.Background(), RedisOptions{Addr: mr.Addr(), Prefix: "p:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set(context.Background(), "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("p:k"))
}
