package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts    map[string]int64
	expires   map[string]time.Duration
	incrErr   error
	expireErr error
	incrKeys  []string
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *goredis.IntCmd {
	f.incrKeys = append(f.incrKeys, key)
	if f.incrErr != nil {
		return goredis.NewIntResult(0, f.incrErr)
	}
	f.counts[key]++
	return goredis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) ExpireNX(_ context.Context, key string, expiration time.Duration) *goredis.BoolCmd {
	if f.expireErr != nil {
		return goredis.NewBoolResult(false, f.expireErr)
	}
	if _, ok := f.expires[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.expires[key] = expiration
	return goredis.NewBoolResult(true, nil)
}

func TestLimiterAllowsUpToMax(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewLimiter(counter, "contact", 2, time.Hour, nil)
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "10.0.0.1"))
	assert.True(t, limiter.Allow(ctx, "10.0.0.1"))
	assert.False(t, limiter.Allow(ctx, "10.0.0.1"))

	// other clients have their own window
	assert.True(t, limiter.Allow(ctx, "10.0.0.2"))

	require.Contains(t, counter.expires, "ratelimit:contact:10.0.0.1")
	assert.Equal(t, time.Hour, counter.expires["ratelimit:contact:10.0.0.1"])
}

func TestLimiterKeepsExistingWindow(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewLimiter(counter, "contact", 5, time.Minute, nil)

	limiter.Allow(context.Background(), "a")
	counter.expires["ratelimit:contact:a"] = 30 * time.Second
	limiter.Allow(context.Background(), "a")

	assert.Equal(t, 30*time.Second, counter.expires["ratelimit:contact:a"])
}

func TestLimiterRepairsWindowAfterExpireFailure(t *testing.T) {
	counter := newFakeCounter()
	counter.expireErr = errors.New("connection reset")
	limiter := NewLimiter(counter, "contact", 1, time.Minute, nil)
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "a"))
	assert.NotContains(t, counter.expires, "ratelimit:contact:a")

	counter.expireErr = nil
	assert.False(t, limiter.Allow(ctx, "a"))
	assert.Equal(t, time.Minute, counter.expires["ratelimit:contact:a"])
}

func TestLimiterFailsOpenOnRedisError(t *testing.T) {
	counter := newFakeCounter()
	counter.incrErr = errors.New("connection refused")
	limiter := NewLimiter(counter, "contact", 1, time.Minute, nil)

	for range 3 {
		assert.True(t, limiter.Allow(context.Background(), "a"))
	}
}

func TestNilLimiterAllows(t *testing.T) {
	var limiter *Limiter
	assert.True(t, limiter.Allow(context.Background(), "a"))
	assert.Zero(t, limiter.Window())
}
