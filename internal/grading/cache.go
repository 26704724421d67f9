package grading

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long an evaluation result is reused for an
// identical (challenge, submission) pair.
const DefaultCacheTTL = 10 * time.Minute

// Cache maps a (challenge identity, submission content) fingerprint to
// a previously computed Result. Entries expire lazily on lookup; there
// is no capacity bound because entries are small and short-lived.
// Reads and writes on distinct keys never block each other; a racing
// set on the same key is last-write-wins, which is harmless since the
// values are computationally equivalent.
type Cache struct {
	ttl     time.Duration
	entries sync.Map // key -> cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	result Result
	expiry time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl, now: time.Now}
}

// CacheKey fingerprints an evaluation input pair as
// "<challengeID>:<sha256-16(submission)>".
func CacheKey(challengeID, submission string) string {
	sum := sha256.Sum256([]byte(submission))
	return challengeID + ":" + hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached result for a key, deleting and missing on
// expired entries.
func (c *Cache) Get(key string) (Result, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return Result{}, false
	}
	entry := v.(cacheEntry)
	if c.now().After(entry.expiry) {
		c.entries.Delete(key)
		return Result{}, false
	}
	return entry.result, true
}

// Set stores a result with the default TTL.
func (c *Cache) Set(key string, result Result) {
	c.SetWithTTL(key, result, c.ttl)
}

// SetWithTTL stores a result with a per-entry TTL override.
func (c *Cache) SetWithTTL(key string, result Result, ttl time.Duration) {
	c.entries.Store(key, cacheEntry{result: result, expiry: c.now().Add(ttl)})
}

// Clear drops every entry; used between tests.
func (c *Cache) Clear() {
	c.entries.Range(func(k, _ any) bool {
		c.entries.Delete(k)
		return true
	})
}
