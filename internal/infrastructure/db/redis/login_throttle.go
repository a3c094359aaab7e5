package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxFailures = 5
	defaultLockout     = 15 * time.Minute
	throttleKeyPrefix  = "login:fail:"
)

// LoginThrottle counts failed logins per email in Redis and blocks further
// attempts once the limit is reached inside the lockout window.
// Key format: login:fail:<sha256(email)>
type LoginThrottle struct {
	client      *redis.Client
	maxFailures int64
	lockout     time.Duration
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client *redis.Client, maxFailures int, lockout time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginThrottle{client: client, maxFailures: int64(maxFailures), lockout: lockout}
}

// Blocked returns the remaining lockout for email, or zero while it still has
// attempts left.
func (t *LoginThrottle) Blocked(ctx context.Context, email string) (time.Duration, error) {
	key := t.key(email)
	pipe := t.client.Pipeline()
	count := pipe.Get(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("login throttle check: %w", err)
	}

	n, err := count.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("login throttle check: %w", err)
	}
	return t.remaining(n, ttl.Val()), nil
}

// remaining maps a failure count and key TTL to a lockout duration. A key
// without a usable TTL is treated as a fresh window.
func (t *LoginThrottle) remaining(failures int64, ttl time.Duration) time.Duration {
	if failures < t.maxFailures {
		return 0
	}
	if ttl <= 0 {
		return t.lockout
	}
	return ttl
}

// RecordFailure increments the failure counter. The window starts at the
// first failure and is not extended by later ones.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	key := t.key(email)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("login throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.key(email)).Err()
}

// key hashes the address so raw emails never land in Redis.
func (t *LoginThrottle) key(email string) string {
	sum := sha256.Sum256([]byte(email))
	return throttleKeyPrefix + hex.EncodeToString(sum[:])
}
