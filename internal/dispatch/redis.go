package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLocker implements Locker on a shared redis instance so multiple worker
// processes honor the same per-credential in-flight markers. SET NX with a
// TTL gives the compare-and-swap semantics.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker parses redisURL, verifies connectivity, and returns a locker
// namespaced under the given prefix.
// Parameters:
//   - ctx: context for the connectivity check.
//   - redisURL: redis:// connection URL.
//   - prefix: key namespace, e.g. "relohub:inflight".
// Returns:
//   - *RedisLocker: connected locker.
//   - error: non-nil if the URL is invalid or redis is unreachable.
func NewRedisLocker(ctx context.Context, redisURL, prefix string) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisLocker{client: client, prefix: prefix}, nil
}

// TryAcquire sets the marker with SET NX and the given TTL.
func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Release clears the marker.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying redis connection.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

func (l *RedisLocker) key(key string) string {
	return l.prefix + ":" + key
}
