package analytics

import (
	"fmt"
	"time"

	"estate_portal_backend/internal/leads/domain"
)

var testNow = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

func agentRef(id string) *string { return &id }

func status(s domain.Status) *domain.Status { return &s }

func lead(id string, st domain.Status, source string) domain.Lead {
	return domain.Lead{
		ID:           id,
		Name:         "Lead " + id,
		Status:       st,
		Source:       source,
		LeadScore:    domain.ScoreMedium,
		LeadType:     domain.TypeLead,
		PropertyType: domain.PropertyResidential,
		CreatedAt:    time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		Activities:   []domain.Activity{},
	}
}

func converted(id, source string, createdDay, convertedDay int) domain.Lead {
	l := lead(id, domain.StatusConverted, source)
	l.CreatedAt = time.Date(2024, time.February, createdDay, 9, 0, 0, 0, time.UTC)
	l.Activities = []domain.Activity{{
		ID:       id + "-sc",
		Type:     domain.ActivityStatusChange,
		Date:     time.Date(2024, time.February, convertedDay, 18, 0, 0, 0, time.UTC),
		ToStatus: status(domain.StatusConverted),
	}}
	return l
}

// tenLeads assigns three leads to agent-1, five to agent-2, two unassigned.
func tenLeads() []domain.Lead {
	out := make([]domain.Lead, 0, 10)
	for i := 0; i < 10; i++ {
		l := lead(fmt.Sprintf("l%d", i), domain.StatusNew, domain.SourceWebsite)
		switch {
		case i < 3:
			l.AssignedAgent = agentRef("agent-1")
		case i < 8:
			l.AssignedAgent = agentRef("agent-2")
		}
		out = append(out, l)
	}
	return out
}
