package httpmiddleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

var _ Limiter = (*RedisLimiter)(nil)

// RedisLimiter is a fixed window limiter shared by every replica that uses
// the same Redis.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	max    int
	period time.Duration
}

// NewRedisLimiter allows limit requests per period and key.
func NewRedisLimiter(client redis.UniversalClient, prefix string, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, max: limit, period: period}
}

func (l *RedisLimiter) Limit() int { return l.max }

func (l *RedisLimiter) Allow(ctx context.Context, key string, now time.Time) (Decision, error) {
	start := now.Truncate(l.period)
	k := fmt.Sprintf("%s:%s:%d", l.prefix, key, start.Unix())

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.PExpire(ctx, k, l.period)
		return nil
	})
	if err != nil {
		return Decision{}, errors.Wrap(err, "redis incr")
	}

	n := int(incr.Val())
	d := Decision{ResetAt: start.Add(l.period)}
	if n > l.max {
		return d, nil
	}
	d.Allowed = true
	d.Remaining = l.max - n
	return d, nil
}
