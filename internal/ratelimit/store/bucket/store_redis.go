package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sbos/internal/ratelimit"
)

const keyPrefix = "sbos:rl:"

// allowScript checks and consumes in one round trip so replicas sharing
// the keyspace see a consistent count. Returns {allowed, count}.
var allowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if current >= limit then
  return {0, current}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[2])
end
return {1, current}
`)

// RedisBucketStore keeps fixed-window counters in Redis, one key per
// instance and window. Keys expire shortly after their window closes.
type RedisBucketStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis creates a Redis-backed store.
func NewRedis(client redis.UniversalClient) *RedisBucketStore {
	return &RedisBucketStore{client: client, ttl: 2 * ratelimit.Window}
}

func windowKey(key string, window int64) string {
	return keyPrefix + key + ":" + strconv.FormatInt(window, 10)
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window int64) (*ratelimit.Result, error) {
	vals, err := allowScript.Run(ctx, s.client,
		[]string{windowKey(key, window)},
		limit, int(s.ttl/time.Second),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis allow: %w", err)
	}
	if len(vals) != 2 {
		return nil, fmt.Errorf("redis allow: unexpected reply %v", vals)
	}
	return &ratelimit.Result{Allowed: vals[0] == 1, Count: int(vals[1]), Limit: limit}, nil
}

func (s *RedisBucketStore) Count(ctx context.Context, key string, window int64) (int, error) {
	n, err := s.client.Get(ctx, windowKey(key, window)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis count: %w", err)
	}
	return n, nil
}

// Reset removes every window key of an instance.
func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+key+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis reset scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis reset: %w", err)
	}
	return nil
}
