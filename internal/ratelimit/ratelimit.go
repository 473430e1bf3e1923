// Package ratelimit implements a Redis-backed token bucket shared by every
// server instance. When Redis is unavailable requests are allowed through.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"newsroom/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
    local elapsed = math.max(0, now_ms - last_refill)
    local intervals = math.floor(elapsed / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + (intervals * refill_tokens))
        last_refill = last_refill + (intervals * interval_ms)
    end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    local until_next = interval_ms - (now_ms - last_refill)
    if until_next < 0 then until_next = 0 end
    retry_after_ms = until_next
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// Decision is the outcome of one Take.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter applies one Rate per key.
type Limiter struct {
	client *redis.Client
	prefix string
	rate   config.Rate
	now    func() time.Time
}

// NewLimiter returns a limiter that allows rate.Limit requests per
// rate.Window, refilled one token at a time. client may be nil.
func NewLimiter(client *redis.Client, prefix string, rate config.Rate) *Limiter {
	return &Limiter{client: client, prefix: prefix, rate: rate, now: time.Now}
}

func (l *Limiter) refillInterval() time.Duration {
	if l.rate.Limit <= 0 {
		return l.rate.Window
	}
	interval := l.rate.Window / time.Duration(l.rate.Limit)
	// the script refills in whole milliseconds
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return interval
}

// Take consumes one token for key. Errors are returned together with an
// allowing decision so that callers can fail open.
func (l *Limiter) Take(ctx context.Context, key string) (Decision, error) {
	if l == nil {
		return Decision{Allowed: true}, nil
	}
	open := Decision{Allowed: true, Limit: l.rate.Limit, Remaining: int64(l.rate.Limit)}
	if l.client == nil {
		return open, nil
	}

	ttl := l.rate.Window
	if ttl < time.Second {
		ttl = time.Second
	}
	args := []interface{}{
		l.now().UnixMilli(),
		l.rate.Limit,
		1,
		l.refillInterval().Milliseconds(),
		int64(ttl / time.Second),
	}
	vals, err := bucketScript.Run(ctx, l.client, []string{l.prefix + ":" + key}, args...).Result()
	if err != nil {
		return open, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return open, fmt.Errorf("unexpected script result %#v", vals)
	}
	return Decision{
		Allowed:    asInt64(arr[0]) == 1,
		Limit:      l.rate.Limit,
		Remaining:  asInt64(arr[1]),
		RetryAfter: time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// NewRedisClient connects to REDIS_ADDR. It returns nil when no address is
// configured or the server does not answer a ping within two seconds.
func NewRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable, rate limiting disabled")
		_ = client.Close()
		return nil
	}
	return client
}
