package compliance

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/flowbotio/flowbot/pkg/models"
)

const counterKeyPrefix = "flowbot:ratelimit:"

// RedisCounterStore is a CounterStore backed by a shared Redis instance, for
// multi-process deployments where every worker must see the same counters.
// INCR serializes concurrent hits on the same key.
type RedisCounterStore struct {
	client redis.UniversalClient
}

// NewRedisCounterStore wraps an existing Redis client.
func NewRedisCounterStore(client redis.UniversalClient) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Hit implements CounterStore. The window starts at the first event of a
// fresh key and the key expires with the window, matching the in-memory
// supersede-in-place behavior.
func (s *RedisCounterStore) Hit(ctx context.Context, key string, maxCount int, windowMs int64) (models.RateDecision, error) {
	fullKey := counterKeyPrefix + key

	count, err := s.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return models.RateDecision{}, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}

	if count == 1 {
		err = s.client.PExpire(ctx, fullKey, time.Duration(windowMs)*time.Millisecond).Err()
		if err != nil {
			return models.RateDecision{}, fmt.Errorf("failed to set counter window %s: %w", key, err)
		}
	}

	if count > int64(maxCount) {
		ttl, err := s.client.PTTL(ctx, fullKey).Result()
		if err != nil {
			ttl = 0
		}

		return models.RateDecision{Allowed: false, Count: count - 1, ResetIn: ttl}, nil
	}

	return models.RateDecision{Allowed: true, Count: count}, nil
}
