package leads

import (
	"net/http"
	"sort"
	"strings"

	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/internal/leads/filter"
	"estate_portal_backend/platform/httpkit"
	"estate_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

// Handler serves the lead list endpoints.
type Handler struct {
	svc *analytics.Service
	val *validator.Validator
}

// NewHandler creates a new leads handler.
func NewHandler(svc *analytics.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) List(c *gin.Context) {
	var page ListLeadsRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(page); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", validator.Describe(err))
		return
	}

	req, err := analytics.ParseRequest(c, h.svc, h.val)
	if httpkit.HandleError(c, err) {
		return
	}
	ds, err := h.svc.Load(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, paginate(ds.Leads, page, ds.OwnLeadsOnly))
}

func (h *Handler) FilterOptions(c *gin.Context) {
	req, err := analytics.ParseRequest(c, h.svc, h.val)
	if httpkit.HandleError(c, err) {
		return
	}
	// Options describe the unfiltered collection.
	req.Criteria = filter.Criteria{}
	ds, err := h.svc.Load(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	opts := FilterOptions{
		Statuses:      domain.Statuses,
		Sources:       mergeSources(ds.Leads),
		PropertyTypes: domain.PropertyTypes,
		LeadScores:    domain.LeadScores,
		LeadTypes:     domain.LeadTypes,
		DatePresets:   filter.Presets,
		DateFields:    []filter.DateField{filter.DateFieldCreated, filter.DateFieldReceived},
		BudgetRanges:  budgetRanges(ds.Leads),
		Agents:        []AgentOption{},
	}
	if !ds.OwnLeadsOnly {
		for _, a := range ds.Agents {
			if a.IsActive {
				opts.Agents = append(opts.Agents, AgentOption{ID: a.ID, Name: a.Name})
			}
		}
	}
	httpkit.OK(c, opts)
}

func paginate(leads []domain.Lead, req ListLeadsRequest, ownOnly bool) LeadListResponse {
	size := req.PageSize
	if size == 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}

	sorted := sortLeads(leads, req.SortBy, req.SortOrder == "desc")
	total := len(sorted)
	// Compare in pages first so (page-1)*size cannot overflow.
	start := total
	if page-1 <= total/size {
		start = min((page-1)*size, total)
	}
	end := start + size
	if end > total {
		end = total
	}

	return LeadListResponse{
		Items:        sorted[start:end],
		Total:        total,
		Page:         page,
		PageSize:     size,
		TotalPages:   (total + size - 1) / size,
		OwnLeadsOnly: ownOnly,
	}
}

// sortLeads returns leads ordered by field. An empty field keeps store order.
func sortLeads(leads []domain.Lead, field string, desc bool) []domain.Lead {
	out := make([]domain.Lead, len(leads))
	copy(out, leads)

	var less func(a, b domain.Lead) bool
	switch field {
	case "createdAt":
		less = func(a, b domain.Lead) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "receivedDate":
		less = func(a, b domain.Lead) bool {
			if a.ReceivedDate == nil || b.ReceivedDate == nil {
				return a.ReceivedDate == nil && b.ReceivedDate != nil
			}
			return a.ReceivedDate.Before(*b.ReceivedDate)
		}
	case "name":
		less = func(a, b domain.Lead) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "status":
		less = func(a, b domain.Lead) bool { return a.Status.Rank() < b.Status.Rank() }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// mergeSources returns the known sources followed by any free-text source
// seen in leads.
func mergeSources(leads []domain.Lead) []string {
	seen := make(map[string]bool, len(domain.Sources))
	out := append([]string(nil), domain.Sources...)
	for _, s := range out {
		seen[s] = true
	}
	for _, l := range leads {
		if l.Source != "" && !seen[l.Source] {
			seen[l.Source] = true
			out = append(out, l.Source)
		}
	}
	return out
}

func budgetRanges(leads []domain.Lead) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, l := range leads {
		if l.BudgetRange != "" && !seen[l.BudgetRange] {
			seen[l.BudgetRange] = true
			out = append(out, l.BudgetRange)
		}
	}
	sort.Strings(out)
	return out
}
