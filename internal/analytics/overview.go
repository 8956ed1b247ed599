package analytics

import (
	"time"

	"estate_portal_backend/internal/leads/domain"
)

const trendMonths = 6

// DistributionItem is one slice of a categorical breakdown.
type DistributionItem struct {
	Name       string  `json:"name"`
	Value      int     `json:"value"`
	Percentage float64 `json:"percentage"`
}

// TrendPoint counts arrivals and conversions in one calendar month.
type TrendPoint struct {
	Month     string `json:"month"`
	NewLeads  int    `json:"newLeads"`
	Converted int    `json:"converted"`
}

// Overview bundles the aggregates shown on the analytics landing page.
type Overview struct {
	Metrics       DashboardMetrics   `json:"metrics"`
	Activities    []ActivityCount    `json:"activities"`
	LeadScores    []DistributionItem `json:"leadScores"`
	PropertyTypes []DistributionItem `json:"propertyTypes"`
	Trend         []TrendPoint       `json:"trend"`
}

// BuildOverview computes every overview aggregate for leads.
func BuildOverview(leads []domain.Lead, now time.Time) Overview {
	return Overview{
		Metrics:       Dashboard(leads, now),
		Activities:    ActivityCounts(leads),
		LeadScores:    ScoreDistribution(leads),
		PropertyTypes: PropertyDistribution(leads),
		Trend:         MonthlyTrend(leads, now, trendMonths),
	}
}

// ScoreDistribution counts leads per score in High, Medium, Low order.
func ScoreDistribution(leads []domain.Lead) []DistributionItem {
	names := make([]string, len(domain.LeadScores))
	for i, s := range domain.LeadScores {
		names[i] = string(s)
	}
	return distribution(leads, names, func(l domain.Lead) string { return string(l.LeadScore) })
}

// PropertyDistribution counts leads per property type.
func PropertyDistribution(leads []domain.Lead) []DistributionItem {
	names := make([]string, len(domain.PropertyTypes))
	for i, p := range domain.PropertyTypes {
		names[i] = string(p)
	}
	return distribution(leads, names, func(l domain.Lead) string { return string(l.PropertyType) })
}

func distribution(leads []domain.Lead, names []string, key func(domain.Lead) string) []DistributionItem {
	counts := make(map[string]int, len(names))
	for _, l := range leads {
		counts[key(l)]++
	}
	out := make([]DistributionItem, 0, len(names))
	for _, n := range names {
		out = append(out, DistributionItem{Name: n, Value: counts[n], Percentage: Rate(counts[n], len(leads))})
	}
	return out
}

// MonthlyTrend returns the last months calendar months ending with now's
// month, oldest first.
func MonthlyTrend(leads []domain.Lead, now time.Time, months int) []TrendPoint {
	if months < 1 {
		return []TrendPoint{}
	}
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	first := current.AddDate(0, -(months - 1), 0)

	points := make([]TrendPoint, months)
	for i := range points {
		points[i].Month = first.AddDate(0, i, 0).Format("2006-01")
	}

	slot := func(t time.Time) int {
		t = t.In(now.Location())
		i := (t.Year()-first.Year())*12 + int(t.Month()) - int(first.Month())
		if i < 0 || i >= months {
			return -1
		}
		return i
	}

	for _, l := range leads {
		if i := slot(arrivalDate(l)); i >= 0 {
			points[i].NewLeads++
		}
		if at, ok := l.ConvertedAt(); ok && l.Status == domain.StatusConverted {
			if i := slot(at); i >= 0 {
				points[i].Converted++
			}
		}
	}
	return points
}
