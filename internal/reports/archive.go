package reports

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"path"
	"time"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/adapters/storage"
	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/internal/events"
	"estate_portal_backend/internal/leads/filter"
	"estate_portal_backend/internal/scheduler"
	"estate_portal_backend/platform/apperr"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/validator"

	"github.com/google/uuid"
)

const (
	opArchive       = "reports.archiver.archive"
	archiveListSize = 50
	pruneBatchSize  = 200
	archiveFolder   = "reports"
)

// Archiver builds queued reports, stores them and keeps the archive index.
type Archiver struct {
	exporter *Exporter
	store    ArchiveStore
	objects  storage.ObjectStore
	bucket   string
	bus      events.Bus
	val      *validator.Validator
	log      *logger.Logger
}

// NewArchiver wires the archive pipeline.
func NewArchiver(exporter *Exporter, store ArchiveStore, objects storage.ObjectStore, bucket string, bus events.Bus, val *validator.Validator, log *logger.Logger) *Archiver {
	return &Archiver{
		exporter: exporter,
		store:    store,
		objects:  objects,
		bucket:   bucket,
		bus:      bus,
		val:      val,
		log:      log,
	}
}

// Archive rebuilds the report described by payload with the requester's
// grants, uploads it and records it. Refusals are published as
// ReportArchiveFailed so the requester learns why nothing arrived.
func (a *Archiver) Archive(ctx context.Context, payload scheduler.ReportArchivePayload) error {
	t, ok := ParseType(payload.ReportType)
	if !ok {
		return apperr.Validation("unknown report type").WithOp(opArchive)
	}
	format, ok := ParseFormat(payload.Format)
	if !ok {
		return apperr.Validation("unknown report format").WithOp(opArchive)
	}

	var loc *time.Location
	if payload.TimeZone != "" {
		l, err := time.LoadLocation(payload.TimeZone)
		if err != nil {
			return apperr.Validation("invalid time zone").WithOp(opArchive)
		}
		loc = l
	}

	svc := a.exporter.Analytics()
	criteria, err := filter.QueryFromValues(url.Values(payload.Query)).Build(a.val, svc.Now(loc))
	if err != nil {
		return err
	}

	principal := access.Principal{UserID: payload.UserID, Roles: payload.Roles}
	for _, perm := range payload.Permissions {
		principal.Permissions = append(principal.Permissions, access.Permission(perm))
	}

	file, err := a.exporter.Export(ctx, ExportRequest{
		Request: analytics.Request{
			Principal: principal,
			Criteria:  criteria,
			Refresh:   true,
			Location:  loc,
		},
		Type:   t,
		Format: format,
	})
	if err != nil {
		if k := apperr.GetKind(err); k == apperr.KindNoData || k == apperr.KindForbidden {
			a.publish(ctx, events.ReportArchiveFailed{
				BaseEvent:  events.NewBaseEvent(),
				UserID:     payload.UserID,
				ReportType: string(t),
				Reason:     userMessage(err),
			})
		}
		return err
	}

	key, err := a.objects.UploadFile(ctx, a.bucket, path.Join(archiveFolder, payload.UserID), file.Name, file.ContentType,
		bytes.NewReader(file.Data), int64(len(file.Data)))
	if err != nil {
		return apperr.Unavailable("failed to store report", err).WithOp(opArchive)
	}

	archive, err := a.store.Create(ctx, Archive{
		ID:         uuid.New(),
		UserID:     payload.UserID,
		ReportType: string(t),
		Format:     string(format),
		FileName:   file.Name,
		ObjectKey:  key,
		RowCount:   file.Rows,
	})
	if err != nil {
		if delErr := a.objects.DeleteObject(ctx, a.bucket, key); delErr != nil {
			a.log.Warn("orphaned report object", "key", key, "error", delErr)
		}
		return err
	}

	a.publish(ctx, events.ReportArchived{
		BaseEvent:  events.NewBaseEvent(),
		ArchiveID:  archive.ID,
		UserID:     archive.UserID,
		ReportType: archive.ReportType,
		Format:     archive.Format,
		FileName:   archive.FileName,
		RowCount:   archive.RowCount,
	})
	return nil
}

// List returns the caller's most recent archives.
func (a *Archiver) List(ctx context.Context, userID string) ([]Archive, error) {
	return a.store.ListByUser(ctx, userID, archiveListSize)
}

// DownloadURL returns a presigned link to one of the caller's archives.
func (a *Archiver) DownloadURL(ctx context.Context, id uuid.UUID, userID string) (*storage.PresignedURL, error) {
	archive, err := a.store.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	u, err := a.objects.GenerateDownloadURL(ctx, a.bucket, archive.ObjectKey, archive.FileName)
	if err != nil {
		return nil, apperr.Unavailable("failed to create download link", err)
	}
	return u, nil
}

// PruneBefore deletes archives created before cutoff, objects first.
func (a *Archiver) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	expired, err := a.store.ListCreatedBefore(ctx, cutoff, pruneBatchSize)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, archive := range expired {
		if err := a.objects.DeleteObject(ctx, a.bucket, archive.ObjectKey); err != nil {
			a.log.Warn("report object delete failed", "key", archive.ObjectKey, "error", err)
			continue
		}
		if err := a.store.Delete(ctx, archive.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (a *Archiver) publish(ctx context.Context, event events.Event) {
	if a.bus != nil {
		a.bus.Publish(ctx, event)
	}
}

func userMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

var _ scheduler.ReportArchiver = (*Archiver)(nil)
var _ scheduler.ArchivePruner = (*Archiver)(nil)
