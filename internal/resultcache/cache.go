// Package resultcache deduplicates repeated generation requests through a
// short-lived in-memory cache keyed by a truncated prefix of the request
// text.
//
// Matching is prefix containment: a query matches a stored result when both
// share their first min(50, len(query)) characters. Two distinct requests
// that agree on that prefix will therefore collide; this is a known
// correctness risk of the keying scheme, kept for compatibility with the
// existing request-fingerprinting behaviour.
package resultcache

import (
	"sync"
	"time"

	"github.com/book-expert/audio-description-service/internal/core"
)

// DefaultTTL is the lifetime of a cache entry.
const DefaultTTL = 30 * time.Minute

const keyPrefixLength = 50

type entry struct {
	key      string
	result   core.GenerationResult
	storedAt time.Time
}

// Cache is a process-wide store of recent successful generations. All access
// is serialized by a single mutex. Expired entries are swept on every Store,
// so the cache never grows unbounded across a process lifetime.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries []entry
	now     func() time.Time
}

// New creates a cache with the given entry TTL, using the wall clock.
// A non-positive TTL falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a cache with an injectable clock. Intended for tests
// that need to age entries without sleeping.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache{
		mu:      sync.Mutex{},
		ttl:     ttl,
		entries: nil,
		now:     now,
	}
}

// Find returns the most recently stored live result whose text shares the
// query's first min(50, len(text)) characters, or nil on a miss.
func (c *Cache) Find(text string) *core.GenerationResult {
	if text == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	prefix := truncate(text)

	// Newest entries win, so scan backwards over insertion order.
	for i := len(c.entries) - 1; i >= 0; i-- {
		cached := c.entries[i]
		if now.Sub(cached.storedAt) > c.ttl {
			continue
		}

		if len(cached.result.Text) >= len(prefix) &&
			cached.result.Text[:len(prefix)] == prefix {
			result := cached.result

			return &result
		}
	}

	return nil
}

// Store inserts a successful result and sweeps entries older than the TTL.
func (c *Cache) Store(result core.GenerationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	live := c.entries[:0]

	for _, cached := range c.entries {
		if now.Sub(cached.storedAt) <= c.ttl {
			live = append(live, cached)
		}
	}

	c.entries = append(live, entry{
		key:      truncate(result.Text) + ":" + result.ID,
		result:   result,
		storedAt: now,
	})
}

// Len reports the number of entries currently held, including any that have
// expired but not yet been swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func truncate(text string) string {
	if len(text) > keyPrefixLength {
		return text[:keyPrefixLength]
	}

	return text
}
