package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/adapters/storage"
	"estate_portal_backend/internal/scheduler"
	"estate_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	payload scheduler.ReportArchivePayload
	err     error
}

func (q *fakeQueue) EnqueueReportArchive(_ context.Context, p scheduler.ReportArchivePayload) (string, error) {
	q.payload = p
	if q.err != nil {
		return "", q.err
	}
	return "task-1", nil
}

type fakeArchives struct {
	items []Archive
}

func (f *fakeArchives) List(context.Context, string) ([]Archive, error) {
	return f.items, nil
}

func (f *fakeArchives) DownloadURL(_ context.Context, id uuid.UUID, _ string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://files.example/" + id.String(), FileKey: id.String()}, nil
}

func newReportEngine(t *testing.T, src *fakeSource, userID string, roles []string, setup func(*Handler)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	exp, _ := newTestExporter(src)
	h := NewHandler(exp, newTestValidator(t))
	if setup != nil {
		setup(h)
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(httpkit.ContextUserIDKey, userID)
			c.Set(httpkit.ContextRolesKey, roles)
		}
		c.Next()
	})
	r.GET("/reports/archives", h.ListArchives)
	r.GET("/reports/archives/:id/download", h.DownloadArchive)
	r.GET("/reports/:type", h.Download)
	r.POST("/reports/:type/archive", h.RequestArchive)
	return r
}

func serve(r *gin.Engine, method, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, url, nil))
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpkit.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestDownload_ServesAttachment(t *testing.T) {
	r := newReportEngine(t, &fakeSource{leads: sampleLeads()}, "agent-1", []string{access.RoleAgent}, nil)

	w := serve(r, http.MethodGet, "/reports/leads?status=New")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "attachment; filename=my_leads_report_2024-03-20.csv", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", w.Header().Get("X-Report-Rows"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestDownload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		roles   []string
		leads   bool
		url     string
		status  int
		message string
	}{
		{"unknown type", []string{access.RoleAdmin}, true, "/reports/forecast", http.StatusNotFound, msgUnknownReport},
		{"bad format", []string{access.RoleAdmin}, true, "/reports/leads?format=pdf", http.StatusBadRequest, msgInvalidFormat},
		{"no export grant", []string{"viewer"}, true, "/reports/leads", http.StatusForbidden, MsgNoPermission},
		{"nothing to export", []string{access.RoleAdmin}, false, "/reports/overview", http.StatusUnprocessableEntity, MsgNoData},
		{"filtered to nothing", []string{access.RoleAdmin}, true, "/reports/leads?status=Converted", http.StatusUnprocessableEntity, MsgNoData},
		{"bad filter", []string{access.RoleAdmin}, true, "/reports/leads?leadScore=Hot", http.StatusBadRequest, "invalid filter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			if tt.leads {
				src.leads = sampleLeads()
			}
			r := newReportEngine(t, src, "u1", tt.roles, nil)

			w := serve(r, http.MethodGet, tt.url)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, errorMessage(t, w))
		})
	}
}

func TestDownload_Unauthenticated(t *testing.T) {
	r := newReportEngine(t, &fakeSource{leads: sampleLeads()}, "", nil, nil)
	w := serve(r, http.MethodGet, "/reports/leads")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestArchive_QueuesCallerAndFilters(t *testing.T) {
	q := &fakeQueue{}
	r := newReportEngine(t, &fakeSource{}, "agent-1", []string{access.RoleAgent}, func(h *Handler) {
		h.SetArchiving(q, &fakeArchives{})
	})

	w := serve(r, http.MethodPost, "/reports/Sources/archive?format=xlsx&status=New,Contacted&tz=Asia/Kolkata&refresh=true")
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "task-1", body["taskId"])
	assert.Equal(t, "queued", body["status"])

	assert.Equal(t, "agent-1", q.payload.UserID)
	assert.Equal(t, []string{access.RoleAgent}, q.payload.Roles)
	assert.Equal(t, "sources", q.payload.ReportType)
	assert.Equal(t, "xlsx", q.payload.Format)
	assert.Equal(t, "Asia/Kolkata", q.payload.TimeZone)
	assert.Equal(t, map[string][]string{"status": {"New,Contacted"}}, q.payload.Query)
}

func TestRequestArchive_Refusals(t *testing.T) {
	r := newReportEngine(t, &fakeSource{}, "root", []string{access.RoleAdmin}, nil)
	w := serve(r, http.MethodPost, "/reports/leads/archive")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	q := &fakeQueue{}
	r = newReportEngine(t, &fakeSource{}, "guest", []string{"viewer"}, func(h *Handler) { h.SetArchiving(q, &fakeArchives{}) })
	w = serve(r, http.MethodPost, "/reports/leads/archive")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, MsgNoPermission, errorMessage(t, w))
	assert.Empty(t, q.payload.UserID)

	q = &fakeQueue{err: errors.New("redis down")}
	r = newReportEngine(t, &fakeSource{}, "root", []string{access.RoleAdmin}, func(h *Handler) { h.SetArchiving(q, &fakeArchives{}) })
	w = serve(r, http.MethodPost, "/reports/leads/archive")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListArchives(t *testing.T) {
	id := uuid.New()
	archives := &fakeArchives{items: []Archive{{ID: id, UserID: "root", FileName: "leads_report_2024-03-20.csv", ObjectKey: "secret/key"}}}
	r := newReportEngine(t, &fakeSource{}, "root", []string{access.RoleAdmin}, func(h *Handler) { h.SetArchiving(&fakeQueue{}, archives) })

	w := serve(r, http.MethodGet, "/reports/archives")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	assert.NotContains(t, w.Body.String(), "secret/key")

	w = serve(r, http.MethodGet, "/reports/archives/"+id.String()+"/download")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://files.example/"+id.String())

	w = serve(r, http.MethodGet, "/reports/archives/not-a-uuid/download")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
