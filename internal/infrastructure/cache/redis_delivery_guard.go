package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultGuardPrefix = "bankfeed:delivery:"

// releaseScript deletes the key only while it still carries the releasing
// hold's token, so a hold that expired and was retaken is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard implements DeliveryGuard with SET NX PX, shared by all instances
// pointing at the same Redis
type RedisGuard struct {
	client    redis.Cmdable
	keyPrefix string
	newToken  func() string
}

// NewRedisGuard creates a guard on an existing client
func NewRedisGuard(client redis.Cmdable, keyPrefix string) *RedisGuard {
	if keyPrefix == "" {
		keyPrefix = defaultGuardPrefix
	}
	return &RedisGuard{
		client:    client,
		keyPrefix: keyPrefix,
		newToken:  uuid.NewString,
	}
}

// Acquire implements DeliveryGuard
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := g.newToken()
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire delivery guard: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release implements DeliveryGuard
func (g *RedisGuard) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("release delivery guard: %w", err)
	}
	return nil
}

var _ DeliveryGuard = (*RedisGuard)(nil)
