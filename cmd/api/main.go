package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estate_portal_backend/internal/adapters/storage"
	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/internal/bootstrap"
	"estate_portal_backend/internal/events"
	apphttp "estate_portal_backend/internal/http"
	"estate_portal_backend/internal/http/router"
	"estate_portal_backend/internal/leads"
	"estate_portal_backend/internal/notification"
	"estate_portal_backend/internal/notification/inapp"
	"estate_portal_backend/internal/notification/sse"
	"estate_portal_backend/internal/reports"
	"estate_portal_backend/internal/scheduler"
	"estate_portal_backend/platform/cache"
	"estate_portal_backend/platform/config"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/metrics"

	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := bootstrap.Migrate(ctx, cfg, log); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	pool, err := bootstrap.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	rdb := initRedis(cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	eventBus := events.NewInMemoryBus(log)
	reporting := metrics.NewReporting()

	val, err := bootstrap.Validator()
	if err != nil {
		panic(err.Error())
	}

	var cmd redis.Cmdable
	if rdb != nil {
		cmd = rdb
	}
	analyticsSvc, err := bootstrap.Analytics(cfg, pool, cmd, reporting, log)
	if err != nil {
		log.Error("failed to initialize analytics", "error", err)
		panic("failed to initialize analytics: " + err.Error())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	exporter := reports.NewExporter(analyticsSvc, log, reporting)
	reportsModule := reports.NewModule(exporter, val)

	queue, closeQueue := initArchiveQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}
	if objects := initStorage(ctx, cfg, log); objects != nil && queue != nil {
		archiver := reports.NewArchiver(exporter, reports.NewRepository(pool), objects, cfg.GetMinioBucketReports(), eventBus, val, log)
		reportsModule.SetArchiving(queue, archiver)
		log.Info("report archiving enabled", "bucket", cfg.GetMinioBucketReports())
	}

	notificationModule := notification.New(inapp.NewRepository(pool), analyticsSvc.Policy(), log)
	notificationModule.RegisterHandlers(eventBus)
	streams := sse.New(log)
	notificationModule.SetSSE(streams)
	if rdb != nil {
		go func() {
			if err := streams.Relay(ctx, rdb); err != nil {
				log.Error("notification relay stopped", "error", err)
			}
		}()
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Metrics:  reporting,
		Modules: []apphttp.Module{
			analytics.NewModule(analyticsSvc, val),
			leads.NewModule(analyticsSvc, val),
			reportsModule,
			notificationModule,
		},
	}
	if rdb != nil {
		app.Cache = cache.NewHealth(rdb)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; agent cache, archiving and live notifications disabled")
		return nil
	}
	rdb, err := cache.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		return nil
	}
	return rdb
}

func initArchiveQueue(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.ArchiveScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize report archive queue", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initStorage(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) storage.ObjectStore {
	if cfg.GetMinIOEndpoint() == "" {
		log.Warn("MINIO_ENDPOINT not configured; report archiving disabled")
		return nil
	}
	svc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		return nil
	}
	if err := bootstrap.WithRetry(ctx, log, "ensure reports bucket", 5, 2*time.Second, func() error {
		return svc.EnsureBucketExists(ctx, cfg.GetMinioBucketReports())
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketReports())
		return nil
	}
	return svc
}
