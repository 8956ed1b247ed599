// Package analytics folds a lead collection into the dashboard, source,
// agent, funnel and activity aggregates. The folds are pure: callers apply
// visibility and filters first and pass the resulting slice in.
package analytics

import (
	"math"
	"time"

	"estate_portal_backend/internal/leads/domain"
)

const hoursPerDay = 24

// DashboardMetrics are the headline KPIs for a lead set.
type DashboardMetrics struct {
	TotalLeads           int     `json:"totalLeads"`
	ConvertedLeads       int     `json:"convertedLeads"`
	ConversionRate       float64 `json:"conversionRate"`
	ActiveLeads          int     `json:"activeLeads"`
	NewLeadsThisMonth    int     `json:"newLeadsThisMonth"`
	AverageTimeToConvert int     `json:"averageTimeToConvert"`
}

// Rate returns part/total as a percentage rounded to one decimal, or 0 when
// total is 0.
func Rate(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func days(d time.Duration) float64 {
	return d.Hours() / hoursPerDay
}

// AverageTimeToConvert is the mean number of whole days between creation and
// conversion. Leads without a conversion timestamp are left out; the result
// is 0 when none qualify.
func AverageTimeToConvert(leads []domain.Lead) int {
	total, n := 0, 0
	for _, l := range leads {
		if l.Status != domain.StatusConverted {
			continue
		}
		at, ok := l.ConvertedAt()
		if !ok || l.CreatedAt.IsZero() || at.Before(l.CreatedAt) {
			continue
		}
		total += int(days(at.Sub(l.CreatedAt)))
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}

// Dashboard computes the headline KPIs. now decides the current month.
func Dashboard(leads []domain.Lead, now time.Time) DashboardMetrics {
	m := DashboardMetrics{TotalLeads: len(leads)}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	for _, l := range leads {
		if l.Status == domain.StatusConverted {
			m.ConvertedLeads++
		}
		if l.Status.IsActive() {
			m.ActiveLeads++
		}
		arrived := arrivalDate(l)
		if !arrived.Before(monthStart) && arrived.Before(nextMonth) {
			m.NewLeadsThisMonth++
		}
	}

	m.ConversionRate = Rate(m.ConvertedLeads, m.TotalLeads)
	m.AverageTimeToConvert = AverageTimeToConvert(leads)
	return m
}

// arrivalDate is when the lead entered the system: the received date when
// known, else the creation time.
func arrivalDate(l domain.Lead) time.Time {
	if l.ReceivedDate != nil {
		return *l.ReceivedDate
	}
	return l.CreatedAt
}
