// Package ratelimit bounds how often credentials may be presented.
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

const loginKeyPrefix = "storefront:login-failures:"

// Counter is a windowed failure counter.
type Counter interface {
	Count(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

// RedisCounter implements Counter on top of go-redis.
type RedisCounter struct {
	client redis.Cmdable
}

// NewRedisCounter wraps a redis client.
func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Count(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Increment bumps the counter; the first increment starts the window.
func (r *RedisCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (r *RedisCounter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// LoginThrottle refuses logins for an email after too many failures within
// a window. Counter errors never block a login.
type LoginThrottle struct {
	counter     Counter
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginThrottle builds a throttle. A nil counter or non-positive
// maxAttempts disables it.
func NewLoginThrottle(counter Counter, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginThrottle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginThrottle{counter: counter, maxAttempts: maxAttempts, window: window, logger: logger}
}

func (t *LoginThrottle) enabled() bool {
	return t != nil && t.counter != nil && t.maxAttempts > 0
}

// Check returns a TooManyRequests error when email is locked out.
func (t *LoginThrottle) Check(ctx context.Context, email string) error {
	if !t.enabled() {
		return nil
	}
	n, err := t.counter.Count(ctx, loginKey(email))
	if err != nil {
		t.logger.Warn("login throttle unavailable", zap.Error(err))
		return nil
	}
	if n >= int64(t.maxAttempts) {
		return apperrors.NewTooManyRequests("too many failed login attempts, try again later")
	}
	return nil
}

// Failed records a failed attempt for email.
func (t *LoginThrottle) Failed(ctx context.Context, email string) {
	if !t.enabled() {
		return
	}
	if _, err := t.counter.Increment(ctx, loginKey(email), t.window); err != nil {
		t.logger.Warn("login throttle increment failed", zap.Error(err))
	}
}

// Succeeded clears the failure count for email.
func (t *LoginThrottle) Succeeded(ctx context.Context, email string) {
	if !t.enabled() {
		return
	}
	if err := t.counter.Reset(ctx, loginKey(email)); err != nil {
		t.logger.Warn("login throttle reset failed", zap.Error(err))
	}
}

func loginKey(email string) string {
	return loginKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}
