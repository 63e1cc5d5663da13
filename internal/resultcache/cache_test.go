// Package resultcache_test tests the short-TTL generation result cache.
package resultcache_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/audio-description-service/internal/core"
	"github.com/book-expert/audio-description-service/internal/resultcache"
)

func newResult(id, text string) core.GenerationResult {
	return core.GenerationResult{
		ID:        id,
		AudioRef:  "https://cdn.example.com/audio/" + id + ".mp3",
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

func TestFindMiss(t *testing.T) {
	t.Parallel()

	cache := resultcache.New(resultcache.DefaultTTL)

	assert.Nil(t, cache.Find("a handcrafted ceramic mug"))
	assert.Nil(t, cache.Find(""))
}

func TestStoreThenFind(t *testing.T) {
	t.Parallel()

	cache := resultcache.New(resultcache.DefaultTTL)
	cache.Store(newResult("r1", "a handcrafted ceramic mug"))

	hit := cache.Find("a handcrafted ceramic mug")
	require.NotNil(t, hit)
	assert.Equal(t, "r1", hit.ID)
}

func TestFindMatchesOnPrefix(t *testing.T) {
	t.Parallel()

	cache := resultcache.New(resultcache.DefaultTTL)

	// The stored text is the enhanced description; the query is the short
	// original input, which must still hit.
	cache.Store(newResult("r1", "a handcrafted ceramic mug with a deep blue glaze, perfect for slow mornings"))

	hit := cache.Find("a handcrafted ceramic mug")
	require.NotNil(t, hit)
	assert.Equal(t, "r1", hit.ID)
}

func TestFindUsesFirstFiftyCharactersOnly(t *testing.T) {
	t.Parallel()

	cache := resultcache.New(resultcache.DefaultTTL)

	base := strings.Repeat("x", 50)
	cache.Store(newResult("r1", base+" tail one"))

	// Queries that agree on the first 50 characters collide, a known risk
	// of the prefix keying.
	hit := cache.Find(base + " tail two")
	require.NotNil(t, hit)
	assert.Equal(t, "r1", hit.ID)
}

func TestFindMostRecentWins(t *testing.T) {
	t.Parallel()

	cache := resultcache.New(resultcache.DefaultTTL)
	cache.Store(newResult("older", "a handcrafted ceramic mug"))
	cache.Store(newResult("newer", "a handcrafted ceramic mug"))

	hit := cache.Find("a handcrafted ceramic mug")
	require.NotNil(t, hit)
	assert.Equal(t, "newer", hit.ID)
}

func TestFindIgnoresExpiredEntries(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	cache := resultcache.NewWithClock(30*time.Minute, clock)

	cache.Store(newResult("r1", "a handcrafted ceramic mug"))

	now = now.Add(31 * time.Minute)

	assert.Nil(t, cache.Find("a handcrafted ceramic mug"),
		"entries older than the TTL must never be returned")
}

func TestStoreSweepsExpiredEntries(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	cache := resultcache.NewWithClock(30*time.Minute, clock)

	cache.Store(newResult("r1", "first product"))
	cache.Store(newResult("r2", "second product"))
	require.Equal(t, 2, cache.Len())

	now = now.Add(31 * time.Minute)

	cache.Store(newResult("r3", "third product"))

	assert.Equal(t, 1, cache.Len(), "expired entries should be swept on Store")
}

func TestFindWithinTTLStillHits(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	cache := resultcache.NewWithClock(30*time.Minute, clock)

	cache.Store(newResult("r1", "a handcrafted ceramic mug"))

	now = now.Add(29 * time.Minute)

	hit := cache.Find("a handcrafted ceramic mug")
	require.NotNil(t, hit)
	assert.Equal(t, "r1", hit.ID)
}
