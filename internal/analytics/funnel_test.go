package analytics

import (
	"math"
	"testing"
	"time"

	"estate_portal_backend/internal/leads/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunnel_ListsEveryStatusAndPercentagesSumToHundred(t *testing.T) {
	leads := []domain.Lead{
		lead("a", domain.StatusNew, domain.SourceWebsite),
		lead("b", domain.StatusQualified, domain.SourceWebsite),
		lead("c", domain.StatusLost, domain.SourceWebsite),
		converted("d", domain.SourceReferral, 1, 3),
		converted("e", domain.SourceReferral, 2, 9),
		lead("f", domain.StatusHold, domain.SourceWebsite),
	}

	got := Funnel(leads, testNow)
	require.Len(t, got, len(domain.Statuses))

	sum := 0.0
	for i, e := range got {
		assert.Equal(t, domain.Statuses[i], e.Status)
		sum += e.Percentage
	}
	assert.LessOrEqual(t, math.Abs(sum-100), 0.5)
}

func TestFunnel_CanonicalizedStatusesStillSumToHundred(t *testing.T) {
	leads := []domain.Lead{
		lead("a", domain.CanonicalStatus("converted"), domain.SourceWebsite),
		lead("b", domain.CanonicalStatus("follow up"), domain.SourceWebsite),
		lead("c", domain.CanonicalStatus("NEW"), domain.SourceWebsite),
	}

	got := Funnel(leads, testNow)
	sum := 0.0
	counted := 0
	for _, e := range got {
		sum += e.Percentage
		counted += e.Count
	}
	assert.Equal(t, len(leads), counted)
	assert.LessOrEqual(t, math.Abs(sum-100), 0.5)
}

func TestFunnel_EmptySetHasZeroEntries(t *testing.T) {
	got := Funnel(nil, testNow)
	require.Len(t, got, 20)
	for _, e := range got {
		assert.Zero(t, e.Count)
		assert.Zero(t, e.Percentage)
		assert.Zero(t, e.ConversionRate)
	}
}

func TestFunnel_ConversionAndDropOffAtStage(t *testing.T) {
	lost := lead("lost", domain.StatusLost, domain.SourceWebsite)
	lost.Activities = []domain.Activity{{
		Type:        domain.ActivityStatusChange,
		Description: "Status changed from Qualified to Lost",
		Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
	}}
	won := converted("won", domain.SourceWebsite, 1, 10)

	entries := map[domain.Status]StatusFunnelEntry{}
	for _, e := range Funnel([]domain.Lead{lost, won}, testNow) {
		entries[e.Status] = e
	}

	qualified := entries[domain.StatusQualified]
	assert.Equal(t, 0, qualified.Count)
	assert.Equal(t, 50.0, qualified.ConversionRate)
	assert.Equal(t, 50.0, qualified.DropOffRate)

	negotiation := entries[domain.StatusNegotiation]
	assert.Equal(t, 100.0, negotiation.ConversionRate)
	assert.Equal(t, 0.0, negotiation.DropOffRate)

	assert.Equal(t, 1, entries[domain.StatusLost].Count)
	assert.Equal(t, 100.0, entries[domain.StatusLost].DropOffRate)
}

func TestFunnel_AverageTimeInStatus(t *testing.T) {
	l := lead("a", domain.StatusContacted, domain.SourceWebsite)
	l.CreatedAt = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	l.Activities = []domain.Activity{{
		Type:       domain.ActivityStatusChange,
		Date:       time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC),
		FromStatus: status(domain.StatusNew),
		ToStatus:   status(domain.StatusContacted),
	}}

	entries := map[domain.Status]StatusFunnelEntry{}
	for _, e := range Funnel([]domain.Lead{l}, testNow) {
		entries[e.Status] = e
	}
	assert.Equal(t, 4.0, entries[domain.StatusNew].AverageTimeInStatus)
	// Open visit runs until now: March 14 12:00 to March 20 12:00.
	assert.Equal(t, 6.0, entries[domain.StatusContacted].AverageTimeInStatus)
}
