package analytics

import (
	"estate_portal_backend/internal/leads/domain"
)

// SourceAnalytics summarizes the leads from one source.
type SourceAnalytics struct {
	Source               string  `json:"source"`
	TotalLeads           int     `json:"totalLeads"`
	ConvertedLeads       int     `json:"convertedLeads"`
	QualifiedLeads       int     `json:"qualifiedLeads"`
	ConversionRate       float64 `json:"conversionRate"`
	AverageTimeToConvert int     `json:"averageTimeToConvert"`
}

// AgentPerformance summarizes one agent's leads and the work logged on them.
type AgentPerformance struct {
	AgentID              string  `json:"agentId"`
	AgentName            string  `json:"agentName"`
	TotalLeads           int     `json:"totalLeads"`
	ConvertedLeads       int     `json:"convertedLeads"`
	ActiveLeads          int     `json:"activeLeads"`
	ConversionRate       float64 `json:"conversionRate"`
	AverageTimeToConvert int     `json:"averageTimeToConvert"`
	TotalActivities      int     `json:"totalActivities"`
	CallsCount           int     `json:"callsCount"`
	EmailsCount          int     `json:"emailsCount"`
	MeetingsCount        int     `json:"meetingsCount"`
	NotesCount           int     `json:"notesCount"`
}

// group collects leads under a key in first-appearance order.
type group struct {
	key   string
	leads []domain.Lead
}

func groupBy(leads []domain.Lead, key func(domain.Lead) (string, bool)) []group {
	index := make(map[string]int)
	groups := make([]group, 0)
	for _, l := range leads {
		k, ok := key(l)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k})
		}
		groups[i].leads = append(groups[i].leads, l)
	}
	return groups
}

// BySource groups leads by source. Only sources with at least one lead are
// listed, in the order they first appear.
func BySource(leads []domain.Lead) []SourceAnalytics {
	qualifiedRank := domain.StatusQualified.Rank()
	out := make([]SourceAnalytics, 0)
	for _, g := range groupBy(leads, func(l domain.Lead) (string, bool) {
		if l.Source == "" {
			return domain.SourceOther, true
		}
		return l.Source, true
	}) {
		s := SourceAnalytics{Source: g.key, TotalLeads: len(g.leads)}
		for _, l := range g.leads {
			if l.Status == domain.StatusConverted {
				s.ConvertedLeads++
			}
			if l.HighestRank() >= qualifiedRank {
				s.QualifiedLeads++
			}
		}
		s.ConversionRate = Rate(s.ConvertedLeads, s.TotalLeads)
		s.AverageTimeToConvert = AverageTimeToConvert(g.leads)
		out = append(out, s)
	}
	return out
}

// ByAgent groups assigned leads by agent. Unassigned leads form no group;
// agents with no leads are omitted. Names come from directory, falling back
// to domain.UnknownAgentName.
func ByAgent(leads []domain.Lead, directory []domain.Agent) []AgentPerformance {
	names := make(map[string]string, len(directory))
	for _, a := range directory {
		names[a.ID] = a.Name
	}

	out := make([]AgentPerformance, 0)
	for _, g := range groupBy(leads, func(l domain.Lead) (string, bool) {
		if l.AssignedAgent == nil || *l.AssignedAgent == "" {
			return "", false
		}
		return *l.AssignedAgent, true
	}) {
		p := AgentPerformance{AgentID: g.key, AgentName: names[g.key], TotalLeads: len(g.leads)}
		if p.AgentName == "" {
			p.AgentName = domain.UnknownAgentName
		}
		for _, l := range g.leads {
			if l.Status == domain.StatusConverted {
				p.ConvertedLeads++
			}
			if l.Status.IsActive() {
				p.ActiveLeads++
			}
			for _, a := range l.Activities {
				p.TotalActivities++
				switch a.Type {
				case domain.ActivityCall:
					p.CallsCount++
				case domain.ActivityEmail:
					p.EmailsCount++
				case domain.ActivityMeeting:
					p.MeetingsCount++
				case domain.ActivityNote:
					p.NotesCount++
				}
			}
		}
		p.ConversionRate = Rate(p.ConvertedLeads, p.TotalLeads)
		p.AverageTimeToConvert = AverageTimeToConvert(g.leads)
		out = append(out, p)
	}
	return out
}
