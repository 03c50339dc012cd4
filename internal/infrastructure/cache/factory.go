package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/erp/bankfeed/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// GuardFactoryOption configures NewDeliveryGuard
type GuardFactoryOption func(*guardFactory)

type guardFactory struct {
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// WithLogger sets the logger used to report fallbacks
func WithLogger(logger *zap.Logger) GuardFactoryOption {
	return func(f *guardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory guard. Default true.
func WithInMemoryFallback(allow bool) GuardFactoryOption {
	return func(f *guardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewDeliveryGuard builds the guard selected by webhook.guard. The returned
// closer releases the Redis client or stops the in-memory sweeper.
func NewDeliveryGuard(kind string, redisCfg config.RedisConfig, opts ...GuardFactoryOption) (DeliveryGuard, io.Closer, error) {
	f := &guardFactory{
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}

	switch kind {
	case "none":
		return NoopGuard{}, nopCloser{}, nil
	case "", "memory":
		g := NewInMemoryGuard()
		return g, g, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), f.pingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			if !f.allowInMemoryFallback {
				return nil, nil, fmt.Errorf("redis required for delivery guard but unavailable: %w", err)
			}
			f.logger.Warn("Redis unavailable, falling back to in-memory delivery guard",
				zap.String("addr", redisCfg.Addr()),
				zap.Error(err),
			)
			g := NewInMemoryGuard()
			return g, g, nil
		}

		f.logger.Info("Using Redis delivery guard", zap.String("addr", redisCfg.Addr()))
		return NewRedisGuard(client, ""), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown delivery guard %q", kind)
	}
}
