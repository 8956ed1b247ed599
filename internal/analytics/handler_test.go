package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/internal/leads/filter"
	"estate_portal_backend/platform/httpkit"
	"estate_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, src SnapshotSource, userID string, roles []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	val := validator.New()
	require.NoError(t, filter.RegisterValidations(val))
	h := NewHandler(newTestService(src), val)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		c.Set(httpkit.ContextRolesKey, roles)
		c.Next()
	})
	r.GET("/dashboard", h.HandleDashboard)
	r.GET("/sources", h.HandleSources)
	r.GET("/funnel", h.HandleFunnel)
	r.GET("/agents", h.HandleAgents)
	return r
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestHandleDashboard_AppliesStatusFilter(t *testing.T) {
	src := &fakeSource{leads: []domain.Lead{
		lead("a", domain.StatusConverted, domain.SourceWebsite),
		lead("b", domain.StatusNew, domain.SourceReferral),
	}}
	r := newTestEngine(t, src, "root", []string{access.RoleAdmin})

	w := get(r, "/dashboard?status=Converted&refresh=true")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var m DashboardMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, 1, m.TotalLeads)
	assert.Equal(t, 100.0, m.ConversionRate)
	assert.True(t, src.refresh)
}

func TestHandleDashboard_AgentSeesOwnLeadsOnly(t *testing.T) {
	r := newTestEngine(t, &fakeSource{leads: tenLeads()}, "agent-1", []string{access.RoleAgent})

	w := get(r, "/dashboard")
	require.Equal(t, http.StatusOK, w.Code)

	var m DashboardMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, 3, m.TotalLeads)
}

func TestHandleAgents_ActivityCountFields(t *testing.T) {
	l := lead("a", domain.StatusContacted, domain.SourceWebsite)
	l.AssignedAgent = agentRef("agent-1")
	l.Activities = []domain.Activity{
		{ID: "a-1", Type: domain.ActivityCall, Date: testNow},
		{ID: "a-2", Type: domain.ActivityCall, Date: testNow},
		{ID: "a-3", Type: domain.ActivityNote, Date: testNow},
	}
	r := newTestEngine(t, &fakeSource{leads: []domain.Lead{l}}, "root", []string{access.RoleAdmin})

	w := get(r, "/agents")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "agent-1", rows[0]["agentId"])
	assert.EqualValues(t, 2, rows[0]["callsCount"])
	assert.EqualValues(t, 0, rows[0]["emailsCount"])
	assert.EqualValues(t, 0, rows[0]["meetingsCount"])
	assert.EqualValues(t, 1, rows[0]["notesCount"])
	assert.EqualValues(t, 3, rows[0]["totalActivities"])
	assert.NotContains(t, rows[0], "calls")
}

func TestHandleSources_RejectsUnknownStatus(t *testing.T) {
	r := newTestEngine(t, &fakeSource{}, "root", []string{access.RoleAdmin})

	w := get(r, "/sources?status=Bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSources_RejectsUnknownTimeZone(t *testing.T) {
	r := newTestEngine(t, &fakeSource{}, "root", []string{access.RoleAdmin})

	w := get(r, "/sources?tz=Mars/Olympus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleFunnel_FetchFailureCarriesRetryHint(t *testing.T) {
	r := newTestEngine(t, &fakeSource{err: errors.New("timeout")}, "root", []string{access.RoleAdmin})

	w := get(r, "/funnel")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Error   string          `json:"error"`
		Details map[string]bool `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Details["retry"])
}
