// Package guard keeps concurrent deliveries of the same review from being
// processed twice at once, using short-lived Redis claims.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL bounds how long a claim survives a crashed holder.
const DefaultTTL = 2 * time.Minute

const keyPrefix = "autoreply:inflight:"

// releaseScript deletes the claim only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Guard hands out per-review claims. A nil *Guard grants every claim.
type Guard struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

// New wraps an existing Redis client.
func New(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{client: client, ttl: ttl, log: log}
}

// Connect parses a redis:// URL, checks connectivity and returns a guard.
func Connect(ctx context.Context, redisURL string, ttl time.Duration, log *zap.Logger) (*Guard, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return New(client, ttl, log), nil
}

// Claim tries to take the in-flight claim for reviewID. It reports false if
// another holder has it. The returned release func is always safe to call.
// Redis errors grant the claim.
func (g *Guard) Claim(ctx context.Context, reviewID string) (bool, func()) {
	noop := func() {}
	if g == nil {
		return true, noop
	}

	key := keyPrefix + reviewID
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		g.log.Warn("in-flight claim failed, continuing unguarded", zap.String("review_id", reviewID), zap.Error(err))
		return true, noop
	}
	if !ok {
		return false, noop
	}

	return true, func() {
		// The request context may already be done.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, g.client, []string{key}, token).Err(); err != nil {
			g.log.Warn("failed to release in-flight claim", zap.String("review_id", reviewID), zap.Error(err))
		}
	}
}

// Close closes the Redis client.
func (g *Guard) Close() error {
	if g == nil {
		return nil
	}
	return g.client.Close()
}
