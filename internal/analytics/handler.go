package analytics

import (
	"estate_portal_backend/platform/httpkit"
	"estate_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler serves the analytics endpoints.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a new analytics handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) dataset(c *gin.Context) (Dataset, bool) {
	req, err := ParseRequest(c, h.svc, h.val)
	if httpkit.HandleError(c, err) {
		return Dataset{}, false
	}
	ds, err := h.svc.Load(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return Dataset{}, false
	}
	return ds, true
}

func (h *Handler) HandleDashboard(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		httpkit.OK(c, ds.Dashboard())
	}
}

func (h *Handler) HandleSources(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		httpkit.OK(c, ds.Sources())
	}
}

func (h *Handler) HandleAgents(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		httpkit.OK(c, ds.AgentPerformance())
	}
}

func (h *Handler) HandleFunnel(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		httpkit.OK(c, ds.Funnel())
	}
}

func (h *Handler) HandleActivities(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		httpkit.OK(c, ds.Activities())
	}
}

func (h *Handler) HandleOverview(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		httpkit.OK(c, ds.Overview())
	}
}
