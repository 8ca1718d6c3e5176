// Package ratelimit throttles anonymous write endpoints with fixed-window
// counters kept in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/portfolio-web/apiserver/config"
)

// Counter is the subset of the Redis client used by the limiter.
type Counter interface {
	Incr(ctx context.Context, key string) *goredis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *goredis.BoolCmd
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Limiter allows at most max hits per client within each window.
type Limiter struct {
	counter Counter
	scope   string
	max     int64
	window  time.Duration
	logger  *slog.Logger
}

func NewLimiter(counter Counter, scope string, max int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		counter: counter,
		scope:   scope,
		max:     int64(max),
		window:  window,
		logger:  logger,
	}
}

// Allow records a hit for client and reports whether it is within the limit.
// A nil limiter allows everything. Redis failures allow the request.
func (l *Limiter) Allow(ctx context.Context, client string) bool {
	if l == nil || l.counter == nil || l.max <= 0 {
		return true
	}

	key := l.key(client)
	count, err := l.counter.Incr(ctx, key).Result()
	if err != nil {
		l.logger.WarnContext(ctx, "rate limit check failed, allowing request", "key", key, "error", err)
		return true
	}
	// EXPIRE NX on every hit so a window whose first EXPIRE failed still ends.
	if err := l.counter.ExpireNX(ctx, key, l.window).Err(); err != nil {
		l.logger.WarnContext(ctx, "failed to set rate limit window", "key", key, "error", err)
	}
	return count <= l.max
}

// Window returns the length of one counting window.
func (l *Limiter) Window() time.Duration {
	if l == nil {
		return 0
	}
	return l.window
}

func (l *Limiter) key(client string) string {
	return "ratelimit:" + l.scope + ":" + client
}
