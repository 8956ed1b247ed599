package reports

import (
	"context"
	"errors"
	"strings"
	"testing"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/internal/leads/filter"
	"estate_portal_backend/platform/apperr"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportReq(p access.Principal, t Type, f Format) ExportRequest {
	return ExportRequest{Request: analytics.Request{Principal: p}, Type: t, Format: f}
}

func TestExport_AdminGetsFullLeadReport(t *testing.T) {
	exp, m := newTestExporter(&fakeSource{leads: sampleLeads()})

	file, err := exp.Export(context.Background(), exportReq(admin(), TypeLeads, FormatCSV))
	require.NoError(t, err)

	assert.Equal(t, "leads_report_2024-03-20.csv", file.Name)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, 6, file.Rows)
	assert.False(t, file.OwnLeadsOnly)
	assert.Equal(t, 7, strings.Count(string(file.Data), "\n"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsExported.WithLabelValues("leads", "csv")))
}

func TestExport_AgentFileIsMarkedAsOwnLeads(t *testing.T) {
	exp, _ := newTestExporter(&fakeSource{leads: sampleLeads()})

	file, err := exp.Export(context.Background(), exportReq(agent("agent-1"), TypeLeads, ""))
	require.NoError(t, err)

	assert.Equal(t, "my_leads_report_2024-03-20.csv", file.Name)
	assert.Equal(t, 3, file.Rows)
	assert.True(t, file.OwnLeadsOnly)
}

func TestExport_XLSX(t *testing.T) {
	exp, _ := newTestExporter(&fakeSource{leads: sampleLeads()})

	file, err := exp.Export(context.Background(), exportReq(admin(), TypePerformance, FormatXLSX))
	require.NoError(t, err)
	assert.Equal(t, "performance_report_2024-03-20.xlsx", file.Name)
	assert.Equal(t, FormatXLSX.ContentType(), file.ContentType)
	assert.NotEmpty(t, file.Data)
}

func TestExport_RefusesWithoutPermission(t *testing.T) {
	src := &fakeSource{leads: sampleLeads()}
	exp, m := newTestExporter(src)

	_, err := exp.Export(context.Background(), exportReq(access.Principal{UserID: "guest", Roles: []string{"viewer"}}, TypeLeads, FormatCSV))
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindForbidden, appErr.Kind)
	assert.Equal(t, MsgNoPermission, appErr.Message)
	assert.Zero(t, src.calls, "refused exports load nothing")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsRefused.WithLabelValues("forbidden")))
}

func TestExport_TokenPermissionIsEnough(t *testing.T) {
	exp, _ := newTestExporter(&fakeSource{leads: sampleLeads()})
	p := access.Principal{UserID: "ops", Roles: []string{"viewer"}, Permissions: []access.Permission{
		access.Perm(access.ResourceAnalytics, access.ActionExport),
		access.Perm(access.ResourceLeads, access.ActionRead),
		access.Perm(access.ResourceLeads, access.ActionViewAll),
	}}

	_, err := exp.Export(context.Background(), exportReq(p, TypeSources, FormatCSV))
	assert.NoError(t, err)
}

func TestExport_RefusesEmptyReport(t *testing.T) {
	exp, m := newTestExporter(&fakeSource{leads: sampleLeads()})
	req := exportReq(admin(), TypeLeads, FormatCSV)
	req.Criteria = filter.Criteria{Statuses: []domain.Status{domain.StatusConverted}}

	_, err := exp.Export(context.Background(), req)
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindNoData, appErr.Kind)
	assert.Equal(t, MsgNoData, appErr.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsRefused.WithLabelValues("no_data")))
}

func TestExport_RequiresCaller(t *testing.T) {
	exp, _ := newTestExporter(&fakeSource{leads: sampleLeads()})

	_, err := exp.Export(context.Background(), exportReq(access.Principal{}, TypeLeads, FormatCSV))
	assert.Equal(t, apperr.KindUnauthorized, apperr.GetKind(err))
}

func TestExport_PropagatesStoreFailure(t *testing.T) {
	exp, _ := newTestExporter(&fakeSource{err: apperr.Unavailable("lead store unavailable", errors.New("timeout"))})

	_, err := exp.Export(context.Background(), exportReq(admin(), TypeOverview, FormatCSV))
	assert.Equal(t, apperr.KindUnavailable, apperr.GetKind(err))
}
