package reports

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"estate_portal_backend/internal/adapters/storage"
	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/internal/scheduler"
	"estate_portal_backend/platform/apperr"
	"estate_portal_backend/platform/httpkit"
	"estate_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerReportRows = "X-Report-Rows"
	msgInvalidFormat = "unsupported report format"
	msgUnknownReport = "unknown report type"
	msgArchivingOff  = "report archiving is not available"
)

// ArchiveReader lists stored reports and signs download links for them.
type ArchiveReader interface {
	List(ctx context.Context, userID string) ([]Archive, error)
	DownloadURL(ctx context.Context, id uuid.UUID, userID string) (*storage.PresignedURL, error)
}

// Handler serves report downloads and the report archive.
type Handler struct {
	exporter *Exporter
	val      *validator.Validator
	queue    scheduler.ArchiveScheduler
	archives ArchiveReader
}

// NewHandler creates a report handler. Archiving stays disabled until
// SetArchiving is called.
func NewHandler(exporter *Exporter, val *validator.Validator) *Handler {
	return &Handler{exporter: exporter, val: val}
}

// SetArchiving enables the queued archive endpoints.
func (h *Handler) SetArchiving(queue scheduler.ArchiveScheduler, archives ArchiveReader) {
	h.queue = queue
	h.archives = archives
}

// Download streams a report as an attachment.
// GET /reports/:type?format=csv|xlsx&<filters>
func (h *Handler) Download(c *gin.Context) {
	t, ok := ParseType(c.Param("type"))
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgUnknownReport, nil)
		return
	}
	format, ok := ParseFormat(c.Query("format"))
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidFormat, nil)
		return
	}

	req, err := analytics.ParseRequest(c, h.exporter.Analytics(), h.val)
	if httpkit.HandleError(c, err) {
		return
	}

	file, err := h.exporter.Export(c.Request.Context(), ExportRequest{Request: req, Type: t, Format: format})
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header(headerReportRows, strconv.Itoa(file.Rows))
	httpkit.Attachment(c, file.Name, file.ContentType, file.Data)
}

// RequestArchive queues a report to be built and stored for later download.
// The filters are validated now so a bad query fails fast.
// POST /reports/:type/archive?format=csv|xlsx&<filters>
func (h *Handler) RequestArchive(c *gin.Context) {
	if h.queue == nil {
		httpkit.HandleError(c, apperr.Unavailable(msgArchivingOff, nil))
		return
	}
	t, ok := ParseType(c.Param("type"))
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgUnknownReport, nil)
		return
	}
	format, ok := ParseFormat(c.Query("format"))
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidFormat, nil)
		return
	}

	req, err := analytics.ParseRequest(c, h.exporter.Analytics(), h.val)
	if httpkit.HandleError(c, err) {
		return
	}
	if !h.exporter.Analytics().Policy().CanExport(req.Principal) {
		httpkit.HandleError(c, apperr.Forbidden(MsgNoPermission))
		return
	}

	payload := scheduler.ReportArchivePayload{
		UserID:      req.Principal.UserID,
		Roles:       req.Principal.Roles,
		ReportType:  string(t),
		Format:      string(format),
		Query:       filterQuery(c.Request.URL.Query()),
		RequestedAt: time.Now().UTC(),
	}
	for _, p := range req.Principal.Permissions {
		payload.Permissions = append(payload.Permissions, string(p))
	}
	if req.Location != nil {
		payload.TimeZone = req.Location.String()
	}

	taskID, err := h.queue.EnqueueReportArchive(c.Request.Context(), payload)
	if err != nil {
		httpkit.HandleError(c, apperr.Unavailable("failed to queue report", err))
		return
	}
	httpkit.Accepted(c, gin.H{"taskId": taskID, "status": "queued"})
}

// ListArchives returns the caller's stored reports, newest first.
// GET /reports/archives
func (h *Handler) ListArchives(c *gin.Context) {
	if h.archives == nil {
		httpkit.HandleError(c, apperr.Unavailable(msgArchivingOff, nil))
		return
	}
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	items, err := h.archives.List(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	if items == nil {
		items = []Archive{}
	}
	httpkit.OK(c, gin.H{"items": items})
}

// DownloadArchive returns a presigned link to one stored report.
// GET /reports/archives/:id/download
func (h *Handler) DownloadArchive(c *gin.Context) {
	if h.archives == nil {
		httpkit.HandleError(c, apperr.Unavailable(msgArchivingOff, nil))
		return
	}
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	archiveID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid archive id", nil)
		return
	}
	link, err := h.archives.DownloadURL(c.Request.Context(), archiveID, id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, link)
}

// filterQuery keeps only the filter parameters; format and refresh are
// decided by the archive job itself.
func filterQuery(values url.Values) map[string][]string {
	out := make(map[string][]string, len(values))
	for k, v := range values {
		switch k {
		case "format", "refresh", "tz":
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	return out
}
