package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const limiterKeyPrefix = "ratelimit"

// ClientLimiter admits at most limit requests per client in each fixed
// window. Every window gets its own counter key, which expires with it.
type ClientLimiter struct {
	c      *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// Verdict is the outcome of one ClientLimiter.Allow call.
type Verdict struct {
	Allowed bool
	Count   int64
	// RetryAfter is the time left in the current window. Zero when allowed.
	RetryAfter time.Duration
}

func NewClientLimiter(addr string, limit int64, window time.Duration) *ClientLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &ClientLimiter{
		c:      redis.NewClient(&redis.Options{Addr: addr}),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *ClientLimiter) WithClock(now func() time.Time) *ClientLimiter {
	if now != nil {
		l.now = now
	}
	return l
}

// Allow counts one request from client in the current window.
func (l *ClientLimiter) Allow(ctx context.Context, client string) (Verdict, error) {
	now := l.now()
	bucket := now.UnixNano() / int64(l.window)
	windowEnd := time.Unix(0, (bucket+1)*int64(l.window))
	key := fmt.Sprintf("%s:%s:%d", limiterKeyPrefix, client, bucket)

	pipe := l.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Verdict{}, errors.Wrap(err, "redis ratelimit")
	}

	v := Verdict{Count: incr.Val()}
	v.Allowed = v.Count <= l.limit
	if !v.Allowed {
		v.RetryAfter = windowEnd.Sub(now)
	}
	return v, nil
}

func (l *ClientLimiter) Close() error {
	return l.c.Close()
}
