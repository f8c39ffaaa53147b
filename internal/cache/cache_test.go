package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	c := NewTTLCache[string, int]()
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	v, ok = c.Get("b")
	assert.True(t, ok, "entries without ttl never expire")
	assert.Equal(t, 2, v)
}

func TestTTLCache_PurgeExpired(t *testing.T) {
	now := time.Now()
	c := NewTTLCache[string, int]()
	c.now = func() time.Time { return now }
	c.Set("a", 1, time.Second)
	c.Set("b", 2, time.Hour)

	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.PurgeExpired())
	assert.Equal(t, 1, c.Len())
}

func TestTTLCache_GetKeepsValueSetAfterExpiryCheck(t *testing.T) {
	c := NewTTLCache[string, int]()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }
	c.Set("k", 1, time.Second)

	refreshed := false
	c.now = func() time.Time {
		if !refreshed {
			refreshed = true
			c.Set("k", 2, time.Hour)
		}
		return now.Add(time.Minute)
	}

	_, ok := c.Get("k")
	assert.False(t, ok)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", doc{Name: "x", Count: 3}, time.Minute))

	var got doc
	ok, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc{Name: "x", Count: 3}, got)

	require.NoError(t, s.Delete(ctx, "k"))
	ok, err = s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewStore_NilRedisFallsBackToMemory(t *testing.T) {
	_, ok := NewStore(nil).(*MemoryStore)
	assert.True(t, ok)
}
