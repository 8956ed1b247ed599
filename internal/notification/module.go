// Package notification turns report domain events into in-app notifications
// and serves them over HTTP and a live event stream.
package notification

import (
	"context"
	"fmt"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/events"
	apphttp "estate_portal_backend/internal/http"
	notifhandler "estate_portal_backend/internal/notification/handler"
	"estate_portal_backend/internal/notification/inapp"
	"estate_portal_backend/internal/notification/sse"
	"estate_portal_backend/platform/httpkit"
	"estate_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module wires notification event handlers and routes.
type Module struct {
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
	sse          *sse.Service
	policy       *access.Policy
	log          *logger.Logger
}

// New creates the notification module on top of a notification store.
func New(store inapp.Store, policy *access.Policy, log *logger.Logger) *Module {
	svc := inapp.NewService(store, log)
	return &Module{
		inAppService: svc,
		inAppHandler: notifhandler.NewHTTPHandler(svc),
		policy:       policy,
		log:          log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers notification API routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notifications := ctx.Protected.Group("/notifications")
	notifications.Use(access.RequirePermission(m.policy, access.ResourceNotifications, access.ActionRead))
	m.inAppHandler.RegisterRoutes(notifications)

	if m.sse != nil {
		notifications.GET("/stream", m.sse.Handler(func(c *gin.Context) (string, bool) {
			id := httpkit.GetIdentity(c)
			return id.UserID(), id.IsAuthenticated()
		}))
	}
}

// SetSSE serves live streams from s and pushes notifications created in this
// process to it.
func (m *Module) SetSSE(s *sse.Service) {
	m.sse = s
	m.inAppService.SetPusher(s)
}

// SetPusher overrides live delivery, e.g. with a redis broadcaster in a
// process that holds no streams.
func (m *Module) SetPusher(p inapp.Pusher) {
	m.inAppService.SetPusher(p)
}

// InAppService exposes the in-app notification service for integration points.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// RegisterHandlers subscribes to report events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ReportArchived{}.EventName(), m)
	bus.Subscribe(events.ReportArchiveFailed{}.EventName(), m)
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ReportArchived:
		return m.handleReportArchived(ctx, e)
	case events.ReportArchiveFailed:
		return m.handleReportArchiveFailed(ctx, e)
	default:
		m.log.Debug("notification module ignoring event", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleReportArchived(ctx context.Context, e events.ReportArchived) error {
	id := e.ArchiveID
	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.UserID,
		Title:        "Your report is ready",
		Content:      fmt.Sprintf("%s (%d rows) is ready to download.", e.FileName, e.RowCount),
		ResourceID:   &id,
		ResourceType: inapp.ResourceReportArchive,
		Category:     inapp.CategorySuccess,
	})
}

func (m *Module) handleReportArchiveFailed(ctx context.Context, e events.ReportArchiveFailed) error {
	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.UserID,
		Title:        "Report could not be created",
		Content:      fmt.Sprintf("The %s report was not created: %s", e.ReportType, e.Reason),
		ResourceType: inapp.ResourceReportArchive,
		Category:     inapp.CategoryWarning,
	})
}

var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
