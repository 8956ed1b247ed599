package reports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/internal/leads/filter"
	"estate_portal_backend/internal/leads/repository"
	"estate_portal_backend/internal/leads/snapshot"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/metrics"
	"estate_portal_backend/platform/validator"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	leads   []domain.Lead
	err     error
	refresh bool
	calls   int
}

func (f *fakeSource) Get(_ context.Context, _ repository.Scope, refresh bool) (snapshot.Snapshot, error) {
	f.refresh = refresh
	f.calls++
	if f.err != nil {
		return snapshot.Snapshot{}, f.err
	}
	return snapshot.Snapshot{Leads: f.leads, Agents: testAgents()}, nil
}

func testAgents() []domain.Agent {
	return []domain.Agent{
		{ID: "agent-1", Name: "Priya Shah", Role: access.RoleAgent, IsActive: true},
		{ID: "agent-2", Name: "Rahul Mehta", Role: access.RoleAgent, IsActive: true},
	}
}

func ref(s string) *string { return &s }

func testLead(id string, st domain.Status, agent string) domain.Lead {
	l := domain.Lead{
		ID:           id,
		Name:         "Lead " + id,
		PrimaryPhone: "+91 98200 0000" + id[len(id)-1:],
		Status:       st,
		Source:       domain.SourceWebsite,
		LeadScore:    domain.ScoreMedium,
		LeadType:     domain.TypeLead,
		PropertyType: domain.PropertyResidential,
		CreatedAt:    time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
	if agent != "" {
		l.AssignedAgent = ref(agent)
	}
	return l
}

// sampleLeads gives agent-1 three leads, agent-2 two and leaves one open.
func sampleLeads() []domain.Lead {
	agents := []string{"agent-1", "agent-1", "agent-1", "agent-2", "agent-2", ""}
	out := make([]domain.Lead, 0, len(agents))
	for i, a := range agents {
		st := domain.StatusNew
		if i%2 == 1 {
			st = domain.StatusContacted
		}
		out = append(out, testLead(fmt.Sprintf("l%d", i), st, a))
	}
	return out
}

func newTestExporter(src analytics.SnapshotSource) (*Exporter, *metrics.Reporting) {
	svc := analytics.NewService(src, access.DefaultPolicy(), nil).WithClock(func() time.Time { return testNow })
	m := metrics.NewReporting()
	return NewExporter(svc, logger.Discard(), m), m
}

func newTestValidator(t *testing.T) *validator.Validator {
	t.Helper()
	val := validator.New()
	require.NoError(t, filter.RegisterValidations(val))
	return val
}

func admin() access.Principal {
	return access.Principal{UserID: "root", Roles: []string{access.RoleAdmin}}
}

func agent(id string) access.Principal {
	return access.Principal{UserID: id, Roles: []string{access.RoleAgent}}
}
