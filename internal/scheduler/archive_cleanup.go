package scheduler

import (
	"context"
	"time"

	"estate_portal_backend/platform/logger"
)

const (
	defaultArchiveCleanupInterval = time.Hour
	defaultArchiveRetention       = 30 * 24 * time.Hour
)

// ArchivePruner deletes stored reports created before a cutoff.
type ArchivePruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// ArchiveCleanup periodically removes report archives past retention.
type ArchiveCleanup struct {
	pruner    ArchivePruner
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewArchiveCleanup(pruner ArchivePruner, log *logger.Logger, interval, retention time.Duration) *ArchiveCleanup {
	if interval <= 0 {
		interval = defaultArchiveCleanupInterval
	}
	if retention <= 0 {
		retention = defaultArchiveRetention
	}

	return &ArchiveCleanup{
		pruner:    pruner,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

func (c *ArchiveCleanup) Run(ctx context.Context) {
	if c == nil || c.pruner == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *ArchiveCleanup) cleanup(ctx context.Context) {
	deleted, err := c.pruner.PruneBefore(ctx, c.now().Add(-c.retention))
	if err != nil {
		c.log.Warn("report archive cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("report archive cleanup deleted archives", "deleted", deleted)
	}
}
