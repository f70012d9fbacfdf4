package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// RedisThrottle implements domain.AttemptThrottle over a shared Redis
// instance so all service replicas see one attempt count per key.
type RedisThrottle struct {
	client redis.UniversalClient
	prefix string
	policy Policy
}

// NewRedisThrottle creates a Redis-backed throttle. The name scopes keys so
// independent use sites (login, two-factor) never share counters.
func NewRedisThrottle(client redis.UniversalClient, name string, policy Policy) *RedisThrottle {
	return &RedisThrottle{
		client: client,
		prefix: "throttle:" + name + ":",
		policy: policy,
	}
}

func (t *RedisThrottle) countKey(key string) string { return t.prefix + "count:" + key }
func (t *RedisThrottle) lockKey(key string) string  { return t.prefix + "lock:" + key }

// RecordFailure implements domain.AttemptThrottle
func (t *RedisThrottle) RecordFailure(ctx context.Context, key string) (*domain.ThrottleResult, error) {
	if locked, until, err := t.locked(ctx, key); err != nil {
		return nil, err
	} else if locked {
		return &domain.ThrottleResult{Locked: true, LockedUntil: until}, nil
	}

	count, err := t.client.Incr(ctx, t.countKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("throttle: increment failed: %w", err)
	}
	// TTL only on the first hit so the window slides from the first failure.
	if count == 1 {
		if err := t.client.Expire(ctx, t.countKey(key), t.policy.Window).Err(); err != nil {
			return nil, fmt.Errorf("throttle: expire failed: %w", err)
		}
	}

	if count >= int64(t.policy.MaxAttempts) {
		until := time.Now().Add(t.policy.Lockout)
		pipe := t.client.TxPipeline()
		pipe.Set(ctx, t.lockKey(key), until.Unix(), t.policy.Lockout)
		pipe.Del(ctx, t.countKey(key))
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("throttle: lockout failed: %w", err)
		}
		return &domain.ThrottleResult{Locked: true, LockedUntil: until}, nil
	}

	return &domain.ThrottleResult{Remaining: t.policy.MaxAttempts - int(count)}, nil
}

// CheckLocked implements domain.AttemptThrottle
func (t *RedisThrottle) CheckLocked(ctx context.Context, key string) (*domain.ThrottleResult, error) {
	if locked, until, err := t.locked(ctx, key); err != nil {
		return nil, err
	} else if locked {
		return &domain.ThrottleResult{Locked: true, LockedUntil: until}, nil
	}

	count, err := t.client.Get(ctx, t.countKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &domain.ThrottleResult{Remaining: t.policy.MaxAttempts}, nil
		}
		return nil, fmt.Errorf("throttle: count read failed: %w", err)
	}

	remaining := t.policy.MaxAttempts - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &domain.ThrottleResult{Remaining: remaining}, nil
}

// Clear implements domain.AttemptThrottle
func (t *RedisThrottle) Clear(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, t.countKey(key), t.lockKey(key)).Err(); err != nil {
		return fmt.Errorf("throttle: clear failed: %w", err)
	}
	return nil
}

// Close implements domain.AttemptThrottle. The client is shared and owned by
// the container, nothing to release here.
func (t *RedisThrottle) Close() error { return nil }

func (t *RedisThrottle) locked(ctx context.Context, key string) (bool, time.Time, error) {
	unix, err := t.client.Get(ctx, t.lockKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, time.Time{}, nil
		}
		return false, time.Time{}, fmt.Errorf("throttle: lock read failed: %w", err)
	}
	until := time.Unix(unix, 0)
	if until.Before(time.Now()) {
		return false, time.Time{}, nil
	}
	return true, until, nil
}

var _ domain.AttemptThrottle = (*RedisThrottle)(nil)
