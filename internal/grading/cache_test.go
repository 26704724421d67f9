package grading

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	key := CacheKey("mission-1#0", "the answer")
	parts := strings.Split(key, ":")
	require.Len(t, parts, 2)
	assert.Equal(t, "mission-1#0", parts[0])
	assert.Len(t, parts[1], 16)

	assert.Equal(t, key, CacheKey("mission-1#0", "the answer"))
	assert.NotEqual(t, key, CacheKey("mission-1#0", "another answer"))
	assert.NotEqual(t, key, CacheKey("mission-1#1", "the answer"))
}

func TestCacheGetSet(t *testing.T) {
	c := NewCache(time.Minute)
	key := CacheKey("m#0", "sub")

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, Result{ScoreFraction: 0.75, Correctness: PartiallyCorrect})

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, 0.75, got.ScoreFraction)
	assert.Equal(t, PartiallyCorrect, got.Correctness)
}

func TestCacheExpiry(t *testing.T) {
	current := time.Now()
	c := NewCache(time.Minute)
	c.now = func() time.Time { return current }

	key := CacheKey("m#0", "sub")
	c.Set(key, Result{ScoreFraction: 1})

	_, ok := c.Get(key)
	require.True(t, ok)

	current = current.Add(time.Minute + time.Second)
	_, ok = c.Get(key)
	assert.False(t, ok)

	// an expired entry is removed, not resurrected
	current = current.Add(-time.Hour)
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestCacheClear(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", Result{})
	c.Set("b", Result{})
	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestNewCacheDefaultsTTL(t *testing.T) {
	c := NewCache(0)
	assert.Equal(t, DefaultCacheTTL, c.ttl)
}
