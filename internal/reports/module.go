package reports

import (
	apphttp "estate_portal_backend/internal/http"
	"estate_portal_backend/internal/scheduler"
	"estate_portal_backend/platform/validator"
)

// Module is the reports bounded context module implementing http.Module.
type Module struct {
	handler  *Handler
	exporter *Exporter
}

// NewModule creates the reports module.
func NewModule(exporter *Exporter, val *validator.Validator) *Module {
	return &Module{
		handler:  NewHandler(exporter, val),
		exporter: exporter,
	}
}

// SetArchiving enables queued archives. Call before RegisterRoutes.
func (m *Module) SetArchiving(queue scheduler.ArchiveScheduler, archives ArchiveReader) {
	m.handler.SetArchiving(queue, archives)
}

// Exporter returns the module's exporter for the archive worker.
func (m *Module) Exporter() *Exporter {
	return m.exporter
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reports"
}

// RegisterRoutes mounts report routes on the provided router context.
// Permission to export is decided by the exporter so refusals carry the
// user-facing message.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/reports")

	g.GET("/archives", m.handler.ListArchives)
	g.GET("/archives/:id/download", m.handler.DownloadArchive)

	limited := g.Group("")
	if ctx.ExportLimiter != nil {
		limited.Use(ctx.ExportLimiter.RateLimit())
	}
	limited.GET("/:type", m.handler.Download)
	limited.POST("/:type/archive", m.handler.RequestArchive)
}

var _ apphttp.Module = (*Module)(nil)
