package agents

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "estate:agents:v1"

// CachedDirectory keeps the agent list in Redis for a short TTL. Redis
// failures fall through to the wrapped directory.
type CachedDirectory struct {
	next Directory
	rdb  redis.Cmdable
	ttl  time.Duration
	log  *logger.Logger
}

// NewCachedDirectory wraps next with a Redis cache.
func NewCachedDirectory(next Directory, rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) *CachedDirectory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedDirectory{next: next, rdb: rdb, ttl: ttl, log: log}
}

// ListAgents serves from cache when possible.
func (d *CachedDirectory) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	raw, err := d.rdb.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var cached []domain.Agent
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
	case !errors.Is(err, redis.Nil):
		d.warn("agent cache read failed", err)
	}

	agents, err := d.next.ListAgents(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(agents); err == nil {
		if err := d.rdb.Set(ctx, cacheKey, payload, d.ttl).Err(); err != nil {
			d.warn("agent cache write failed", err)
		}
	}
	return agents, nil
}

// Invalidate drops the cached list.
func (d *CachedDirectory) Invalidate(ctx context.Context) error {
	return d.rdb.Del(ctx, cacheKey).Err()
}

func (d *CachedDirectory) warn(msg string, err error) {
	if d.log != nil {
		d.log.Warn(msg, "error", err)
	}
}
