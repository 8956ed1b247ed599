package scheduler

import (
	"context"
	"fmt"

	"estate_portal_backend/platform/apperr"
	"estate_portal_backend/platform/config"
	"estate_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// ReportArchiver builds and stores a queued report.
type ReportArchiver interface {
	Archive(ctx context.Context, payload ReportArchivePayload) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	archiver ReportArchiver
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, archiver ReportArchiver, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		archiver: archiver,
		log:      log,
	}

	mux.HandleFunc(TaskReportArchive, w.handleReportArchive)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleReportArchive(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReportArchivePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	err = w.archiver.Archive(ctx, payload)
	if err == nil {
		return nil
	}
	if !retryable(err) {
		w.log.Warn("report archive dropped", "userId", payload.UserID, "reportType", payload.ReportType, "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}

// retryable reports whether a failed archive may succeed on a later attempt.
// Refusals and bad input are final.
func retryable(err error) bool {
	switch apperr.GetKind(err) {
	case apperr.KindForbidden, apperr.KindUnauthorized, apperr.KindNoData,
		apperr.KindValidation, apperr.KindBadRequest, apperr.KindNotFound:
		return false
	}
	return true
}
