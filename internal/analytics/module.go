package analytics

import (
	"estate_portal_backend/internal/access"
	apphttp "estate_portal_backend/internal/http"
	"estate_portal_backend/platform/validator"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	policy  *access.Policy
}

// NewModule creates the analytics module on top of a shared service.
func NewModule(svc *Service, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(svc, val), policy: svc.Policy()}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// RegisterRoutes mounts analytics routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/analytics")
	g.Use(access.RequirePermission(m.policy, access.ResourceAnalytics, access.ActionView))
	g.GET("/dashboard", m.handler.HandleDashboard)
	g.GET("/sources", m.handler.HandleSources)
	g.GET("/agents", m.handler.HandleAgents)
	g.GET("/funnel", m.handler.HandleFunnel)
	g.GET("/activities", m.handler.HandleActivities)
	g.GET("/overview", m.handler.HandleOverview)
}

var _ apphttp.Module = (*Module)(nil)
