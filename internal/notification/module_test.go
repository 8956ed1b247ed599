package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/events"
	apphttp "estate_portal_backend/internal/http"
	"estate_portal_backend/internal/notification/inapp"
	"estate_portal_backend/platform/apperr"
	"estate_portal_backend/platform/httpkit"
	"estate_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store struct {
	mu    sync.Mutex
	items []inapp.Notification
}

func (s *store) Create(_ context.Context, p inapp.CreateParams) (inapp.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := inapp.Notification{ID: uuid.New(), UserID: p.UserID, Title: p.Title, Content: p.Content,
		ResourceID: p.ResourceID, ResourceType: p.ResourceType, Category: p.Category}
	s.items = append(s.items, n)
	return n, nil
}

func (s *store) List(_ context.Context, userID string, _, _ int) ([]inapp.Notification, int, error) {
	var out []inapp.Notification
	for _, n := range s.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (s *store) CountUnread(_ context.Context, userID string) (int, error) {
	c := 0
	for _, n := range s.items {
		if n.UserID == userID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

func (s *store) MarkRead(_ context.Context, userID string, id uuid.UUID) error {
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].UserID == userID {
			s.items[i].IsRead = true
			return nil
		}
	}
	return apperr.NotFound("notification not found")
}

func (s *store) MarkAllRead(context.Context, string) (int, error) { return 0, nil }

func (s *store) Delete(context.Context, string, uuid.UUID) error { return nil }

func TestHandle_ReportArchivedCreatesSuccessNotification(t *testing.T) {
	st := &store{}
	m := New(st, access.DefaultPolicy(), logger.Discard())
	bus := events.NewInMemoryBus(logger.Discard())
	m.RegisterHandlers(bus)

	archiveID := uuid.New()
	require.NoError(t, bus.PublishSync(context.Background(), events.ReportArchived{
		BaseEvent: events.NewBaseEvent(),
		ArchiveID: archiveID,
		UserID:    "agent-1",
		FileName:  "my_leads_report_2024-03-20.csv",
		RowCount:  12,
	}))

	require.Len(t, st.items, 1)
	n := st.items[0]
	assert.Equal(t, "agent-1", n.UserID)
	assert.Equal(t, inapp.CategorySuccess, n.Category)
	assert.Equal(t, &archiveID, n.ResourceID)
	assert.Contains(t, n.Content, "my_leads_report_2024-03-20.csv (12 rows)")
}

func TestHandle_ReportArchiveFailedCarriesReason(t *testing.T) {
	st := &store{}
	m := New(st, access.DefaultPolicy(), logger.Discard())

	require.NoError(t, m.Handle(context.Background(), events.ReportArchiveFailed{
		UserID:     "root",
		ReportType: "funnel",
		Reason:     "No data available to export",
	}))

	require.Len(t, st.items, 1)
	assert.Equal(t, inapp.CategoryWarning, st.items[0].Category)
	assert.Equal(t, "The funnel report was not created: No data available to export", st.items[0].Content)
}

func newNotificationEngine(t *testing.T, m *Module, userID string, roles []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/api/v1")
	protected.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		c.Set(httpkit.ContextRolesKey, roles)
		c.Next()
	})
	m.RegisterRoutes(&apphttp.RouterContext{Engine: r, V1: protected, Protected: protected})
	return r
}

func TestRoutes_UnreadCountAndMarkRead(t *testing.T) {
	st := &store{}
	m := New(st, access.DefaultPolicy(), logger.Discard())
	require.NoError(t, m.Handle(context.Background(), events.ReportArchiveFailed{UserID: "agent-1", ReportType: "leads", Reason: "x"}))
	require.NoError(t, m.Handle(context.Background(), events.ReportArchiveFailed{UserID: "agent-1", ReportType: "agents", Reason: "y"}))
	r := newNotificationEngine(t, m, "agent-1", []string{access.RoleAgent})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var count map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &count))
	assert.Equal(t, 2, count["count"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/notifications/"+st.items[0].ID.String()+"/read", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, st.items[0].IsRead)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/notifications/"+uuid.NewString()+"/read", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_RequireNotificationGrant(t *testing.T) {
	m := New(&store{}, access.DefaultPolicy(), logger.Discard())
	r := newNotificationEngine(t, m, "guest", []string{"viewer"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoutes_ListCarriesUnreadCount(t *testing.T) {
	st := &store{}
	m := New(st, access.DefaultPolicy(), logger.Discard())
	require.NoError(t, m.Handle(context.Background(), events.ReportArchiveFailed{UserID: "agent-1", ReportType: "leads", Reason: "x"}))
	require.NoError(t, m.Handle(context.Background(), events.ReportArchiveFailed{UserID: "agent-2", ReportType: "leads", Reason: "x"}))
	r := newNotificationEngine(t, m, "agent-1", []string{access.RoleAgent})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=10", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items  []inapp.Notification `json:"items"`
		Total  int                  `json:"total"`
		Unread int                  `json:"unread"`
		Page   int                  `json:"page"`
		Limit  int                  `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Unread)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=500", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/notifications/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
