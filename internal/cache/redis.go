// Package cache keeps per-user like counts in Redis so GET /likes/count does
// not hit the likes table on every call.
//
// The database stays the source of truth: a missing or unparsable key is a
// cache miss, and every Redis error is returned to the caller, who treats it
// as a miss.
//
// VERSIONED FILLS:
// Each user has a version key next to the count. A new like bumps the
// version and drops the count (InvalidateLikeCount). A reader takes the
// version (LikeCountVersion) before counting in the database and stores the
// result only if the version is still the same (StoreLikeCount). A count
// taken before a like can therefore never be written back after it.
//
// Reads do not extend the TTL, so any other failure (an invalidation lost to
// a Redis outage, a manual write) is stale for at most one TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a cached like count lives.
const DefaultTTL = time.Hour

// ErrMiss is returned when no count is cached.
var ErrMiss = errors.New("cache: miss")

// invalidateScript bumps the version and drops the count in one step.
// KEYS[1] version, KEYS[2] count; ARGV[1] version TTL in ms.
var invalidateScript = redis.NewScript(`
local v = redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[1])
redis.call('DEL', KEYS[2])
return v
`)

// storeScript writes the count only if the version is unchanged.
// KEYS[1] version, KEYS[2] count; ARGV[1] expected version, ARGV[2] count,
// ARGV[3] TTL in ms. Returns 1 when stored.
var storeScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then cur = '0' end
if cur ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache wraps a go-redis client.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a client; it does not connect until first use.
func NewRedisCache(opts Options) *RedisCache {
	ropts := &redis.Options{Addr: opts.Addr}
	if opts.Password != "" {
		ropts.Password = opts.Password
	}
	if opts.DB != 0 {
		ropts.DB = opts.DB
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: redis.NewClient(ropts), ttl: ttl}
}

// Ping checks that Redis answers.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client's connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// KeyForLikeCount is the Redis key holding email's received-like count.
func KeyForLikeCount(email string) string {
	return fmt.Sprintf("likes:count:%s", email)
}

// KeyForLikeVersion is the Redis key holding the version of email's count.
func KeyForLikeVersion(email string) string {
	return fmt.Sprintf("likes:version:%s", email)
}

// GetLikeCount returns the cached count, or ErrMiss when nothing usable is cached.
func (c *RedisCache) GetLikeCount(ctx context.Context, email string) (int64, error) {
	key := KeyForLikeCount(email)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, fmt.Errorf("cache: reading %s: %w", key, err)
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrMiss
	}
	return n, nil
}

// LikeCountVersion returns the current version of email's count; 0 when unset.
// Take it before counting in the database and hand it to StoreLikeCount.
func (c *RedisCache) LikeCountVersion(ctx context.Context, email string) (int64, error) {
	key := KeyForLikeVersion(email)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache: reading %s: %w", key, err)
	}

	v, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache: parsing %s: %w", key, err)
	}
	return v, nil
}

// StoreLikeCount caches count if email's version still equals version.
// It reports false, without error, when a like arrived in between.
func (c *RedisCache) StoreLikeCount(ctx context.Context, email string, count, version int64) (bool, error) {
	keys := []string{KeyForLikeVersion(email), KeyForLikeCount(email)}
	stored, err := storeScript.Run(ctx, c.client, keys,
		strconv.FormatInt(version, 10), count, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("cache: storing %s: %w", keys[1], err)
	}
	return stored == 1, nil
}

// InvalidateLikeCount drops the cached count and bumps its version, so the
// next read recounts and any fill already in flight is discarded.
func (c *RedisCache) InvalidateLikeCount(ctx context.Context, email string) error {
	keys := []string{KeyForLikeVersion(email), KeyForLikeCount(email)}
	// The version must outlive any fill that read it.
	if err := invalidateScript.Run(ctx, c.client, keys, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("cache: invalidating %s: %w", keys[1], err)
	}
	return nil
}
