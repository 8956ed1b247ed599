package reports

import (
	"bytes"
	"context"

	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/platform/apperr"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/metrics"
)

const opExport = "reports.exporter.export"

// ExportRequest is an analytics request plus the report to produce.
type ExportRequest struct {
	analytics.Request
	Type   Type
	Format Format
}

// File is an encoded report.
type File struct {
	Name         string
	ContentType  string
	Data         []byte
	Rows         int
	Type         Type
	Format       Format
	OwnLeadsOnly bool
}

// Exporter produces report files for a principal.
type Exporter struct {
	analytics *analytics.Service
	log       *logger.Logger
	metrics   *metrics.Reporting
}

// NewExporter creates an exporter. m may be nil.
func NewExporter(svc *analytics.Service, log *logger.Logger, m *metrics.Reporting) *Exporter {
	return &Exporter{analytics: svc, log: log, metrics: m}
}

// Analytics returns the service the exporter loads data through.
func (e *Exporter) Analytics() *analytics.Service {
	return e.analytics
}

// Export checks the caller may export, builds the report and encodes it.
// Callers without an export grant get a Forbidden error; an empty report
// yields a NoData error and no file.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (File, error) {
	p := req.Principal
	if p.UserID == "" {
		return File{}, apperr.Unauthorized("unauthorized").WithOp(opExport)
	}
	if !e.analytics.Policy().CanExport(p) {
		e.refused(p.UserID, req.Type, "forbidden")
		return File{}, apperr.Forbidden(MsgNoPermission).WithOp(opExport)
	}
	if req.Format == "" {
		req.Format = FormatCSV
	}

	ds, err := e.analytics.Load(ctx, req.Request)
	if err != nil {
		return File{}, err
	}

	table, err := Build(req.Type, ds)
	if err != nil {
		return File{}, apperr.NotFound("unknown report type").WithOp(opExport)
	}
	if table.IsEmpty() {
		e.refused(p.UserID, req.Type, "no_data")
		return File{}, apperr.NoData(MsgNoData).WithOp(opExport)
	}

	var buf bytes.Buffer
	switch req.Format {
	case FormatXLSX:
		err = WriteXLSX(&buf, table)
	default:
		err = WriteCSV(&buf, table)
	}
	if err != nil {
		return File{}, apperr.Wrap(apperr.KindInternal, "failed to encode report", err).WithOp(opExport)
	}

	e.log.ReportExported(p.UserID, string(req.Type), string(req.Format), len(table.Rows))
	if e.metrics != nil {
		e.metrics.ReportsExported.WithLabelValues(string(req.Type), string(req.Format)).Inc()
	}

	return File{
		Name:         FileName(req.Type, req.Format, ds.OwnLeadsOnly, ds.Now),
		ContentType:  req.Format.ContentType(),
		Data:         buf.Bytes(),
		Rows:         len(table.Rows),
		Type:         req.Type,
		Format:       req.Format,
		OwnLeadsOnly: ds.OwnLeadsOnly,
	}, nil
}

func (e *Exporter) refused(userID string, t Type, reason string) {
	e.log.ExportRefused(userID, string(t), reason)
	if e.metrics != nil {
		e.metrics.ExportsRefused.WithLabelValues(reason).Inc()
	}
}
