// Package cache provides the Redis-backed dashboard cache.
package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"bloodlink/internal/platform/redis"
	"bloodlink/pkg/platform/circuit"
)

// Redis caches serialized payloads with a TTL. A miss returns ok=false, not
// an error; Redis outages degrade to cache misses so reads never fail. A
// circuit breaker stops hammering Redis while it is down, letting a probe
// through periodically to detect recovery.
type Redis struct {
	client  *redis.Client
	breaker *circuit.Breaker
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client:  client,
		breaker: circuit.New("dashboard-cache"),
	}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.breaker.Allow() {
		return nil, false
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		c.breaker.RecordSuccess()
		return nil, false
	}
	if err != nil {
		c.breaker.RecordFailure()
		return nil, false
	}
	c.breaker.RecordSuccess()
	return val, true
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if !c.breaker.Allow() {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}
