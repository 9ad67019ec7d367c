// Package redis wires the Redis client used for login rate limiting.
package redis

import (
	"context"
	"log/slog"

	"gatehouse/config"
	"gatehouse/internal/domain/lifecycle"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the Redis client, or nil when rate limiting is not
// configured. Callers must treat a nil client as "limiting disabled".
func New(params Params) (*redis.Client, error) {
	cfg := params.Config.RateLimit
	if cfg == nil || !cfg.Enabled() {
		params.Logger.Info("Rate limiting not configured, skipping Redis client")

		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			// Connection failures surface at startup, not first request.
			return client.Ping(ctx).Err()
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
