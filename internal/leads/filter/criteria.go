// Package filter narrows a lead collection by the criteria the user picked.
// Criteria are plain values; Matches and Apply have no side effects.
package filter

import (
	"strings"
	"time"

	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/platform/phone"
)

// Unassigned is the assignedAgent value that selects leads without an agent.
const Unassigned = "unassigned"

// minPhoneDigits is the shortest digit run in a search term that is also
// compared against phone numbers with formatting stripped.
const minPhoneDigits = 3

// DateField selects which lead date a date range applies to.
type DateField string

const (
	DateFieldReceived DateField = "receivedDate"
	DateFieldCreated  DateField = "createdAt"
)

// Criteria is the immutable filter state. Empty slices and strings mean
// "no constraint" for that dimension.
type Criteria struct {
	Search        string
	Statuses      []domain.Status
	Sources       []string
	PropertyTypes []domain.PropertyType
	LeadScores    []domain.LeadScore
	LeadTypes     []domain.LeadType
	AssignedAgent string
	BudgetRange   string
	DateRange     *Range
	DateField     DateField
}

// IsEmpty reports whether c constrains nothing.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Search) == "" &&
		len(c.Statuses) == 0 &&
		len(c.Sources) == 0 &&
		len(c.PropertyTypes) == 0 &&
		len(c.LeadScores) == 0 &&
		len(c.LeadTypes) == 0 &&
		c.AssignedAgent == "" &&
		c.BudgetRange == "" &&
		c.DateRange == nil
}

// Matches reports whether lead satisfies every active constraint in c.
// Dimensions combine with AND; values inside one dimension combine with OR.
func Matches(lead domain.Lead, c Criteria) bool {
	if !matchesSearch(lead, c.Search) {
		return false
	}
	if len(c.Statuses) > 0 && !contains(c.Statuses, lead.Status) {
		return false
	}
	if len(c.Sources) > 0 && !contains(c.Sources, lead.Source) {
		return false
	}
	if len(c.PropertyTypes) > 0 && !contains(c.PropertyTypes, lead.PropertyType) {
		return false
	}
	if len(c.LeadScores) > 0 && !contains(c.LeadScores, lead.LeadScore) {
		return false
	}
	if len(c.LeadTypes) > 0 && !contains(c.LeadTypes, lead.LeadType) {
		return false
	}
	if !matchesAgent(lead, c.AssignedAgent) {
		return false
	}
	if c.BudgetRange != "" && lead.BudgetRange != c.BudgetRange {
		return false
	}
	if c.DateRange != nil {
		at, ok := leadDate(lead, c.DateField)
		if !ok || !c.DateRange.Contains(at) {
			return false
		}
	}
	return true
}

// Apply returns the leads matching c, preserving input order.
func Apply(leads []domain.Lead, c Criteria) []domain.Lead {
	if c.IsEmpty() {
		out := make([]domain.Lead, len(leads))
		copy(out, leads)
		return out
	}
	out := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		if Matches(lead, c) {
			out = append(out, lead)
		}
	}
	return out
}

func matchesSearch(lead domain.Lead, search string) bool {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return true
	}

	fields := []string{lead.Name, lead.PrimaryEmail, lead.SecondaryEmail, lead.PrimaryPhone, lead.SecondaryPhone}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}

	digits := phone.Digits(term)
	if !looksLikePhone(term) || len(digits) < minPhoneDigits {
		return false
	}
	for _, p := range []string{lead.PrimaryPhone, lead.SecondaryPhone} {
		if p != "" && strings.Contains(phone.Digits(p), digits) {
			return true
		}
	}
	return false
}

func looksLikePhone(term string) bool {
	for _, r := range term {
		switch {
		case r >= '0' && r <= '9':
		case r == ' ', r == '+', r == '-', r == '(', r == ')', r == '.':
		default:
			return false
		}
	}
	return true
}

func matchesAgent(lead domain.Lead, agent string) bool {
	switch agent {
	case "":
		return true
	case Unassigned:
		return lead.AssignedAgent == nil || *lead.AssignedAgent == ""
	default:
		return lead.IsAssignedTo(agent)
	}
}

func leadDate(lead domain.Lead, field DateField) (t time.Time, ok bool) {
	switch field {
	case DateFieldReceived:
		if lead.ReceivedDate == nil {
			return time.Time{}, false
		}
		return *lead.ReceivedDate, true
	default:
		if lead.CreatedAt.IsZero() {
			return time.Time{}, false
		}
		return lead.CreatedAt, true
	}
}

func contains[T comparable](set []T, v T) bool {
	for _, item := range set {
		if item == v {
			return true
		}
	}
	return false
}
