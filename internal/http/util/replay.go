package util

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard marks continue tokens as redeemed so each token
// authorizes exactly one click.
type ReplayGuard interface {
	// FirstUse reports whether token has not been redeemed before,
	// marking it redeemed for ttl.
	FirstUse(ctx context.Context, token string, ttl time.Duration) bool
}

const redeemedKeyPrefix = "adshort:redeemed:"

// RedisReplayGuard tracks redeemed tokens in Redis so replay
// protection holds across instances. A Redis failure lets the token
// through rather than blocking redirects.
type RedisReplayGuard struct {
	client *redis.Client
}

// NewRedisReplayGuard creates a Redis-backed replay guard.
func NewRedisReplayGuard(client *redis.Client) *RedisReplayGuard {
	return &RedisReplayGuard{client: client}
}

func (g *RedisReplayGuard) FirstUse(ctx context.Context, token string, ttl time.Duration) bool {
	ok, err := g.client.SetNX(ctx, redeemedKeyPrefix+token, 1, ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// MemoryReplayGuard is a process-local replay guard for deployments
// without Redis.
type MemoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time

	now func() time.Time
}

// NewMemoryReplayGuard creates an in-memory replay guard.
func NewMemoryReplayGuard() *MemoryReplayGuard {
	return &MemoryReplayGuard{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (g *MemoryReplayGuard) FirstUse(_ context.Context, token string, ttl time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for tok, deadline := range g.seen {
		if now.After(deadline) {
			delete(g.seen, tok)
		}
	}

	if _, used := g.seen[token]; used {
		return false
	}
	g.seen[token] = now.Add(ttl)
	return true
}
