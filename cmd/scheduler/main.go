package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"estate_portal_backend/internal/adapters/storage"
	"estate_portal_backend/internal/bootstrap"
	"estate_portal_backend/internal/events"
	"estate_portal_backend/internal/notification"
	"estate_portal_backend/internal/notification/inapp"
	"estate_portal_backend/internal/notification/sse"
	"estate_portal_backend/internal/reports"
	"estate_portal_backend/internal/scheduler"
	"estate_portal_backend/platform/cache"
	"estate_portal_backend/platform/config"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GetRedisURL() == "" || !cfg.IsMinIOEnabled() {
		panic("scheduler requires REDIS_URL and MINIO_ENDPOINT")
	}

	pool, err := bootstrap.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	rdb, err := cache.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		panic("failed to initialize redis client: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()

	objects, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	if err := bootstrap.WithRetry(ctx, log, "ensure reports bucket", 5, 2*time.Second, func() error {
		return objects.EnsureBucketExists(ctx, cfg.GetMinioBucketReports())
	}); err != nil {
		panic("failed to ensure reports bucket: " + err.Error())
	}

	val, err := bootstrap.Validator()
	if err != nil {
		panic(err.Error())
	}

	reporting := metrics.NewReporting()
	analyticsSvc, err := bootstrap.Analytics(cfg, pool, rdb, reporting, log)
	if err != nil {
		log.Error("failed to initialize analytics", "error", err)
		panic("failed to initialize analytics: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)

	// Notifications land in the database here; API processes holding the
	// streams pick them up from redis.
	notificationModule := notification.New(inapp.NewRepository(pool), analyticsSvc.Policy(), log)
	notificationModule.SetPusher(sse.NewBroadcaster(rdb, log))
	notificationModule.RegisterHandlers(eventBus)

	exporter := reports.NewExporter(analyticsSvc, log, reporting)
	archiver := reports.NewArchiver(exporter, reports.NewRepository(pool), objects, cfg.GetMinioBucketReports(), eventBus, val, log)

	cleanupInterval := getDurationEnv("REPORT_ARCHIVE_CLEANUP_INTERVAL", time.Hour)
	archiveCleanup := scheduler.NewArchiveCleanup(archiver, log, cleanupInterval, cfg.GetArchiveRetention())
	go archiveCleanup.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, archiver, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
