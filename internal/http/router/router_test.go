package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "estate_portal_backend/internal/http"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	origins []string
}

func (testConfig) GetHTTPAddr() string                { return ":0" }
func (testConfig) GetCORSAllowAll() bool              { return false }
func (c testConfig) GetCORSOrigins() []string         { return c.origins }
func (testConfig) GetCORSAllowCreds() bool            { return true }
func (testConfig) GetJWTAccessSecret() string         { return "secret" }
func (testConfig) GetReportLocation() *time.Location  { return time.UTC }
func (testConfig) GetSnapshotTTL() time.Duration      { return time.Minute }
func (testConfig) GetExportRatePerMinute() int        { return 10 }
func (testConfig) GetArchiveRetention() time.Duration { return time.Hour }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type ptrPinger struct{ err error }

func (p *ptrPinger) Ping(context.Context) error { return p.err }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func newTestApp(cache apphttp.HealthChecker) *apphttp.App {
	gin.SetMode(gin.TestMode)
	return &apphttp.App{
		Config:  testConfig{origins: []string{"https://crm.example.com"}},
		Logger:  logger.Discard(),
		Health:  pinger{},
		Cache:   cache,
		Metrics: metrics.NewReporting(),
		Modules: []apphttp.Module{pingModule{}},
	}
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	engine := New(newTestApp(nil))

	rec := serve(engine, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_ReadinessReportsDownDependency(t *testing.T) {
	engine := New(newTestApp(pinger{err: errors.New("connection refused")}))

	rec := serve(engine, http.MethodGet, "/api/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"checks":{"database":"up","redis":"down"}}`, rec.Body.String())
}

func TestRouter_ReadinessSkipsUnconfiguredCache(t *testing.T) {
	engine := New(newTestApp(nil))

	rec := serve(engine, http.MethodGet, "/api/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"checks":{"database":"up"}}`, rec.Body.String())
}

func TestRouter_ReadinessSkipsNilPointerCache(t *testing.T) {
	var cache *ptrPinger
	engine := New(newTestApp(cache))

	rec := serve(engine, http.MethodGet, "/api/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"checks":{"database":"up"}}`, rec.Body.String())
}

func TestRouter_ServesMetrics(t *testing.T) {
	engine := New(newTestApp(nil))

	rec := serve(engine, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_ModulesSitBehindAuth(t *testing.T) {
	engine := New(newTestApp(nil))

	rec := serve(engine, http.MethodGet, "/api/v1/ping")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CORSAllowsConfiguredOrigin(t *testing.T) {
	engine := New(newTestApp(nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	engine.ServeHTTP(rec, req)

	assert.Equal(t, "https://crm.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
