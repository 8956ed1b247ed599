package analytics

import (
	"time"

	"estate_portal_backend/internal/leads/domain"
)

// StatusFunnelEntry describes one pipeline stage across a lead set.
//
// A lead has reached a ranked stage once its furthest funnel rank is at or
// beyond that stage; unranked stages (Hold and the drop stages) count as
// reached when the lead is or was in them. ConversionRate is the share of
// leads that reached the stage and are now Converted. DropOffRate is the
// share that reached it and are now dropped with this stage as their
// furthest point.
type StatusFunnelEntry struct {
	Status              domain.Status `json:"status"`
	Count               int           `json:"count"`
	Percentage          float64       `json:"percentage"`
	AverageTimeInStatus float64       `json:"averageTimeInStatus"`
	ConversionRate      float64       `json:"conversionRate"`
	DropOffRate         float64       `json:"dropOffRate"`
}

// Funnel lists every enumerated stage, zero counts included, in display
// order. now closes the visit of each lead's current stage.
func Funnel(leads []domain.Lead, now time.Time) []StatusFunnelEntry {
	timelines := make([][]domain.StatusVisit, len(leads))
	highest := make([]int, len(leads))
	for i, l := range leads {
		timelines[i] = l.Timeline()
		highest[i] = l.HighestRank()
	}

	out := make([]StatusFunnelEntry, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		e := StatusFunnelEntry{Status: s}
		reached, converted, dropped := 0, 0, 0
		for i, l := range leads {
			if l.Status == s {
				e.Count++
			}

			var hit bool
			if rank := s.Rank(); rank > 0 {
				hit = highest[i] >= rank
			} else {
				hit = l.HasVisited(s)
			}
			if !hit {
				continue
			}
			reached++
			if l.Status == domain.StatusConverted {
				converted++
			}
			if l.Status.IsDropped() && (s.Rank() == 0 || highest[i] == s.Rank()) {
				dropped++
			}
		}

		e.Percentage = Rate(e.Count, len(leads))
		e.ConversionRate = Rate(converted, reached)
		e.DropOffRate = Rate(dropped, reached)
		e.AverageTimeInStatus = averageTimeIn(s, timelines, now)
		out = append(out, e)
	}
	return out
}

func averageTimeIn(s domain.Status, timelines [][]domain.StatusVisit, now time.Time) float64 {
	var total time.Duration
	visits := 0
	for _, tl := range timelines {
		for _, v := range tl {
			if v.Status != s {
				continue
			}
			end := now
			if v.Left != nil {
				end = *v.Left
			}
			if d := end.Sub(v.Entered); d > 0 {
				total += d
			}
			visits++
		}
	}
	if visits == 0 {
		return 0
	}
	return round1(days(total) / float64(visits))
}
