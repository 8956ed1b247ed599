package analytics

import (
	"sort"

	"estate_portal_backend/internal/leads/domain"
)

// ActivityCount is the number of logged activities of one type.
type ActivityCount struct {
	Type       domain.ActivityType `json:"type"`
	Count      int                 `json:"count"`
	Percentage float64             `json:"percentage"`
}

// ActivityCounts scans every lead's log and counts by type. The known types
// are always listed, in enumeration order; unknown types follow in the order
// they are first seen.
func ActivityCounts(leads []domain.Lead) []ActivityCount {
	counts := make(map[domain.ActivityType]int)
	order := append([]domain.ActivityType(nil), domain.ActivityTypes...)
	known := make(map[domain.ActivityType]bool, len(order))
	for _, t := range order {
		known[t] = true
	}

	total := 0
	for _, l := range leads {
		for _, a := range l.Activities {
			if !known[a.Type] {
				known[a.Type] = true
				order = append(order, a.Type)
			}
			counts[a.Type]++
			total++
		}
	}

	out := make([]ActivityCount, 0, len(order))
	for _, t := range order {
		out = append(out, ActivityCount{Type: t, Count: counts[t], Percentage: Rate(counts[t], total)})
	}
	return out
}

// ActivityLogEntry is an activity together with the lead it belongs to.
type ActivityLogEntry struct {
	LeadID   string          `json:"leadId"`
	LeadName string          `json:"leadName"`
	Activity domain.Activity `json:"activity"`
}

// ActivityLog flattens all activities, newest first.
func ActivityLog(leads []domain.Lead) []ActivityLogEntry {
	out := make([]ActivityLogEntry, 0)
	for _, l := range leads {
		for _, a := range l.Activities {
			out = append(out, ActivityLogEntry{LeadID: l.ID, LeadName: l.Name, Activity: a})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Activity.Date.After(out[j].Activity.Date)
	})
	return out
}
