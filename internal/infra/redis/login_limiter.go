package redis

import (
	"context"
	"log/slog"
	"time"

	"gatehouse/config"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter caps login attempts per client using a fixed window
// counter in Redis. It fails open: when Redis is unreachable the limiter
// allows the attempt and logs, so an outage never locks everyone out.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
}

// NewLoginLimiter creates a limiter from config. A nil Redis client
// yields a limiter that allows everything.
func NewLoginLimiter(cfg *config.Config, client *redis.Client, logger *slog.Logger) *LoginLimiter {
	limiter := &LoginLimiter{client: client, logger: logger}
	if cfg.RateLimit != nil {
		limiter.maxAttempts = cfg.RateLimit.MaxAttempts
		limiter.window = cfg.RateLimit.Window
	}

	return limiter
}

// Allow records one attempt under the given key and reports whether it is
// within the window's budget, along with how long until the window resets
// when it is not.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l.client == nil || l.maxAttempts <= 0 || l.window <= 0 {
		return true, 0, nil
	}

	redisKey := "gatehouse:login:" + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// NX keeps the expiry anchored to the first attempt in the window.
	pipe.ExpireNX(ctx, redisKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("Rate limiter unavailable, allowing attempt",
			slog.String("error", err.Error()),
		)

		return true, 0, err
	}

	if incr.Val() > int64(l.maxAttempts) {
		ttl, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}

		return false, ttl, nil
	}

	return true, 0, nil
}

// Reset clears the attempt counter for a key, called after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, key string) {
	if l.client == nil {
		return
	}

	if err := l.client.Del(ctx, "gatehouse:login:"+key).Err(); err != nil {
		l.logger.Debug("Failed to reset rate limit counter",
			slog.String("error", err.Error()),
		)
	}
}
