// Package leads serves the filtered lead list and the filter control
// options. Lead loading, visibility and filtering live in the analytics
// service; this package only pages and sorts the result.
package leads

import (
	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/internal/leads/filter"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxPage         = 100000
)

// ListLeadsRequest holds the paging and sorting parameters of GET /leads.
// Filter parameters are read separately by analytics.ParseRequest.
type ListLeadsRequest struct {
	Page      int    `form:"page" validate:"omitempty,min=1,max=100000"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=createdAt receivedDate name status"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type LeadListResponse struct {
	Items        []domain.Lead `json:"items"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	PageSize     int           `json:"pageSize"`
	TotalPages   int           `json:"totalPages"`
	OwnLeadsOnly bool          `json:"ownLeadsOnly"`
}

// AgentOption is an entry of the assigned agent dropdown.
type AgentOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilterOptions lists the values the filter controls offer.
type FilterOptions struct {
	Statuses      []domain.Status       `json:"statuses"`
	Sources       []string              `json:"sources"`
	PropertyTypes []domain.PropertyType `json:"propertyTypes"`
	LeadScores    []domain.LeadScore    `json:"leadScores"`
	LeadTypes     []domain.LeadType     `json:"leadTypes"`
	DatePresets   []filter.Preset       `json:"datePresets"`
	DateFields    []filter.DateField    `json:"dateFields"`
	BudgetRanges  []string              `json:"budgetRanges"`
	// Agents is empty for callers restricted to their own leads.
	Agents []AgentOption `json:"agents"`
}
