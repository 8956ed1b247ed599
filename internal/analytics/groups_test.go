package analytics

import (
	"testing"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/leads/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBySource_TwoWebsiteLeads(t *testing.T) {
	leads := []domain.Lead{
		lead("a", domain.StatusConverted, domain.SourceWebsite),
		lead("b", domain.StatusLost, domain.SourceWebsite),
	}

	got := BySource(leads)
	require.Len(t, got, 1)
	assert.Equal(t, domain.SourceWebsite, got[0].Source)
	assert.Equal(t, 2, got[0].TotalLeads)
	assert.Equal(t, 1, got[0].ConvertedLeads)
	assert.Equal(t, 50.0, got[0].ConversionRate)
}

func TestBySource_FirstAppearanceOrderAndNoEmptyGroups(t *testing.T) {
	leads := []domain.Lead{
		lead("a", domain.StatusNew, domain.SourceReferral),
		lead("b", domain.StatusNew, domain.SourceWebsite),
		lead("c", domain.StatusQualified, domain.SourceReferral),
		lead("d", domain.StatusNew, ""),
	}

	got := BySource(leads)
	require.Len(t, got, 3)
	assert.Equal(t, []string{domain.SourceReferral, domain.SourceWebsite, domain.SourceOther},
		[]string{got[0].Source, got[1].Source, got[2].Source})
	assert.Equal(t, 2, got[0].TotalLeads)
	assert.Equal(t, 1, got[0].QualifiedLeads)
	for _, s := range got {
		assert.Positive(t, s.TotalLeads)
	}
}

func TestByAgent_GroupsAssignedLeadsOnly(t *testing.T) {
	leads := tenLeads()
	leads[0].Status = domain.StatusConverted
	leads[1].Activities = []domain.Activity{
		{ID: "x1", Type: domain.ActivityCall},
		{ID: "x2", Type: domain.ActivityEmail},
		{ID: "x3", Type: domain.ActivityNote},
		{ID: "x4", Type: domain.ActivityPropertyShown},
	}
	directory := []domain.Agent{{ID: "agent-1", Name: "Priya Shah"}}

	got := ByAgent(leads, directory)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "agent-1", first.AgentID)
	assert.Equal(t, "Priya Shah", first.AgentName)
	assert.Equal(t, 3, first.TotalLeads)
	assert.Equal(t, 1, first.ConvertedLeads)
	assert.Equal(t, 2, first.ActiveLeads)
	assert.Equal(t, 33.3, first.ConversionRate)
	assert.Equal(t, 4, first.TotalActivities)
	assert.Equal(t, 1, first.CallsCount)
	assert.Equal(t, 1, first.EmailsCount)
	assert.Equal(t, 0, first.MeetingsCount)
	assert.Equal(t, 1, first.NotesCount)

	assert.Equal(t, domain.UnknownAgentName, got[1].AgentName)
	assert.Equal(t, 5, got[1].TotalLeads)
}

func TestVisibleLeads_AgentSeesOwnLeads(t *testing.T) {
	pol := access.DefaultPolicy()
	agent := access.Principal{UserID: "agent-1", Roles: []string{access.RoleAgent}}
	admin := access.Principal{UserID: "root", Roles: []string{access.RoleAdmin}}

	own := VisibleLeads(tenLeads(), agent, pol)
	assert.Len(t, own, 3)
	assert.Equal(t, 3, Dashboard(own, testNow).TotalLeads)

	assert.Len(t, VisibleLeads(tenLeads(), admin, pol), 10)
}

func TestRates_StayWithinBounds(t *testing.T) {
	leads := append(tenLeads(), converted("c1", domain.SourceReferral, 1, 3))
	for _, s := range BySource(leads) {
		assert.GreaterOrEqual(t, s.ConversionRate, 0.0)
		assert.LessOrEqual(t, s.ConversionRate, 100.0)
	}
	for _, p := range ByAgent(leads, nil) {
		assert.GreaterOrEqual(t, p.ConversionRate, 0.0)
		assert.LessOrEqual(t, p.ConversionRate, 100.0)
	}
	for _, f := range Funnel(leads, testNow) {
		assert.GreaterOrEqual(t, f.DropOffRate, 0.0)
		assert.LessOrEqual(t, f.DropOffRate, 100.0)
	}
}
