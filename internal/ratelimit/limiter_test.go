// Package ratelimit_test tests the sliding-window admission check.
package ratelimit_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/book-expert/audio-description-service/internal/ratelimit"
)

func TestAllow_WithinBudget(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.New()

	for attempt := range 5 {
		assert.True(t, limiter.Allow("speech", 5, time.Minute),
			"attempt %d should be admitted", attempt+1)
	}
}

func TestAllow_RefusesBeyondBudget(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.New()

	for range 5 {
		assert.True(t, limiter.Allow("speech", 5, time.Minute))
	}

	assert.False(t, limiter.Allow("speech", 5, time.Minute),
		"the sixth attempt inside the window should be refused")
}

func TestAllow_AdmitsAfterWindowPasses(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	limiter := ratelimit.NewWithClock(clock)

	for range 5 {
		assert.True(t, limiter.Allow("speech", 5, time.Minute))
	}

	assert.False(t, limiter.Allow("speech", 5, time.Minute))

	// Move past the window: all earlier timestamps fall out of scope.
	now = now.Add(61 * time.Second)

	assert.True(t, limiter.Allow("speech", 5, time.Minute),
		"attempts spaced beyond the window should never be refused")
}

func TestAllow_SpacedCallsNeverRefused(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	limiter := ratelimit.NewWithClock(clock)

	for range 20 {
		assert.True(t, limiter.Allow("speech", 1, time.Minute))

		now = now.Add(2 * time.Minute)
	}
}

func TestAllow_RefusedAttemptsStillCount(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	limiter := ratelimit.NewWithClock(clock)

	assert.True(t, limiter.Allow("speech", 1, time.Minute))
	assert.False(t, limiter.Allow("speech", 1, time.Minute))

	// The refused attempt was appended speculatively, so the window now
	// holds two timestamps and a third attempt is still refused.
	assert.False(t, limiter.Allow("speech", 1, time.Minute))
}

func TestAllow_OperationsAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.New()

	for range 5 {
		assert.True(t, limiter.Allow("speech", 5, time.Minute))
	}

	assert.False(t, limiter.Allow("speech", 5, time.Minute))
	assert.True(t, limiter.Allow("describe", 10, time.Minute),
		"exhausting one operation's budget must not affect another")
}

func TestAllow_ConcurrentCallersDoNotOveradmit(t *testing.T) {
	t.Parallel()

	const (
		maxCalls = 5
		attempts = 50
	)

	limiter := ratelimit.New()

	var (
		waitGroup sync.WaitGroup
		mu        sync.Mutex
		admitted  int
	)

	for range attempts {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			if limiter.Allow("speech", maxCalls, time.Minute) {
				mu.Lock()

				admitted++

				mu.Unlock()
			}
		}()
	}

	waitGroup.Wait()

	assert.Equal(t, maxCalls, admitted)
}
