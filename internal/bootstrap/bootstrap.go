// Package bootstrap holds the wiring shared by the API, the scheduler and
// the report CLI: database connection, access policy and the analytics
// service over a lead snapshot cache.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/agents"
	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/internal/leads/filter"
	"estate_portal_backend/internal/leads/repository"
	"estate_portal_backend/internal/leads/snapshot"
	"estate_portal_backend/platform/config"
	"estate_portal_backend/platform/db"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/metrics"
	"estate_portal_backend/platform/phone"
	"estate_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	retryAttempts  = 5
	retryBaseDelay = 2 * time.Second
)

// Config is everything the shared wiring reads.
type Config interface {
	config.DatabaseConfig
	config.ReportConfig
	config.AgentDirectoryConfig
	config.AccessConfig
	config.PhoneConfig
}

// Connect opens the pool, retrying while the database comes up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := WithRetry(ctx, log, "database connection", retryAttempts, retryBaseDelay, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	return pool, err
}

// Migrate applies pending migrations, retrying while the database comes up.
func Migrate(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) error {
	return WithRetry(ctx, log, "database migrations", retryAttempts, retryBaseDelay, func() error {
		return db.RunMigrations(ctx, cfg)
	})
}

// Validator returns a validator with the lead filter rules registered.
func Validator() (*validator.Validator, error) {
	val := validator.New()
	if err := filter.RegisterValidations(val); err != nil {
		return nil, fmt.Errorf("register filter validations: %w", err)
	}
	return val, nil
}

// Analytics builds the analytics service. rdb and m may be nil; without
// redis the agent directory is read from the database every time.
func Analytics(cfg Config, pool *pgxpool.Pool, rdb redis.Cmdable, m *metrics.Reporting, log *logger.Logger) (*analytics.Service, error) {
	policy, err := access.LoadPolicy(cfg.GetAccessPolicyFile())
	if err != nil {
		return nil, fmt.Errorf("load access policy: %w", err)
	}

	var dir agents.Directory = agents.NewRepository(pool)
	if rdb != nil {
		dir = agents.NewCachedDirectory(dir, rdb, cfg.GetAgentCacheTTL(), log)
	}

	store := repository.NewStore(pool, phone.NewNormalizer(cfg.GetPhoneDefaultRegion()))
	var opts []snapshot.Option
	if m != nil {
		opts = append(opts, snapshot.WithMetrics(m))
	}
	snapshots := snapshot.New(store, dir, cfg.GetSnapshotTTL(), log, opts...)

	return analytics.NewService(snapshots, policy, cfg.GetReportLocation()), nil
}

// WithRetry runs fn until it succeeds, backing off quadratically.
func WithRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
