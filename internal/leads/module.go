package leads

import (
	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/analytics"
	apphttp "estate_portal_backend/internal/http"
	"estate_portal_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	policy  *access.Policy
}

// NewModule creates the leads module on top of the shared analytics service,
// which owns loading and visibility.
func NewModule(svc *analytics.Service, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(svc, val), policy: svc.Policy()}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/leads")
	g.Use(access.RequirePermission(m.policy, access.ResourceLeads, access.ActionRead))
	g.GET("", m.handler.List)
	g.GET("/filter-options", m.handler.FilterOptions)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
