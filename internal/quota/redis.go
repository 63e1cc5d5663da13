// Package quota tracks per-user daily generation counts and quota settings
// in Redis.
package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// dailyCountKeyFormat is keyed by user ID and UTC date, so counters
	// roll over naturally at midnight.
	dailyCountKeyFormat = "generations:daily:%s:%s"
	dailyKeyDateLayout  = "2006-01-02"

	// unlimitedModeKey is a global settings flag; an absent key means off.
	unlimitedModeKey = "settings:unlimited_mode"
)

// ErrUserIDRequired indicates a usage operation without a user identity.
var ErrUserIDRequired = errors.New("user ID cannot be empty")

// RedisStore implements core.UsageStore. Counters expire at the end of the
// UTC day they belong to, so stale keys never accumulate.
type RedisStore struct {
	client     *redis.Client
	dailyLimit int
	now        func() time.Time
}

// New creates a usage store enforcing the given daily generation limit.
func New(client *redis.Client, dailyLimit int) *RedisStore {
	return &RedisStore{
		client:     client,
		dailyLimit: dailyLimit,
		now:        time.Now,
	}
}

// IncrementDailyCount adds one generation to today's counter for the user.
// The expiry is set when the key is first created.
func (s *RedisStore) IncrementDailyCount(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserIDRequired
	}

	now := s.now().UTC()
	key := s.dailyKey(userID, now)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment daily count for user '%s': %w", userID, err)
	}

	if count == 1 {
		endOfDay := now.Truncate(24 * time.Hour).Add(24 * time.Hour)

		expireErr := s.client.ExpireAt(ctx, key, endOfDay).Err()
		if expireErr != nil {
			return fmt.Errorf("failed to set expiry on daily count key '%s': %w", key, expireErr)
		}
	}

	return nil
}

// RemainingGenerations reports how many generations the user has left today.
// A missing counter means nothing has been used yet.
func (s *RedisStore) RemainingGenerations(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrUserIDRequired
	}

	key := s.dailyKey(userID, s.now().UTC())

	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return s.dailyLimit, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read daily count for user '%s': %w", userID, err)
	}

	used, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse daily count '%s': %w", value, err)
	}

	remaining := s.dailyLimit - used
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

// UnlimitedModeEnabled reports whether the global unlimited-generation flag
// is set.
func (s *RedisStore) UnlimitedModeEnabled(ctx context.Context) (bool, error) {
	value, err := s.client.Get(ctx, unlimitedModeKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read unlimited mode flag: %w", err)
	}

	return value == "true" || value == "1", nil
}

func (s *RedisStore) dailyKey(userID string, now time.Time) string {
	return fmt.Sprintf(dailyCountKeyFormat, userID, now.Format(dailyKeyDateLayout))
}
