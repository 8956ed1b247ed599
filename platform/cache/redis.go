// Package cache opens the shared redis connection used for the agent
// directory cache and cross-process notification fan-out.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"

	"estate_portal_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewClient parses the configured redis URL. It does not dial.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	raw := cfg.GetRedisURL()
	if raw == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(raw)
	if err != nil {
		return nil, err
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}

// Health adapts a redis client to the readiness check.
type Health struct {
	rdb redis.Cmdable
}

func NewHealth(rdb redis.Cmdable) Health {
	return Health{rdb: rdb}
}

func (h Health) Ping(ctx context.Context) error {
	return h.rdb.Ping(ctx).Err()
}
