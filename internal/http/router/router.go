// Package router assembles the gin engine from the application's modules.
package router

import (
	"context"
	"net/http"
	"reflect"
	"time"

	apphttp "estate_portal_backend/internal/http"
	"estate_portal_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// New builds the engine: global middleware, health and metrics endpoints,
// then every module under /api/v1.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/api/ready", readiness(healthChecks(app)))
	if app.Metrics != nil {
		engine.GET("/metrics", app.Metrics.Handler())
	}

	v1 := engine.Group("/api/v1")
	auth := httpkit.AuthRequired(app.Config)
	protected := v1.Group("")
	protected.Use(auth)

	ctx := &apphttp.RouterContext{
		Engine:         engine,
		V1:             v1,
		Protected:      protected,
		Config:         app.Config,
		AuthMiddleware: auth,
		ExportLimiter:  httpkit.NewPerMinuteLimiter(app.Config.GetExportRatePerMinute(), app.Logger),
	}
	for _, m := range app.Modules {
		m.RegisterRoutes(ctx)
		app.Logger.Debug("module registered", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Disposition", httpkit.HeaderRequestID, "X-Report-Rows"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() || len(cfg.GetCORSOrigins()) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}

type healthCheck struct {
	name    string
	checker apphttp.HealthChecker
}

// healthChecks lists the configured dependencies. A nil pointer stored in
// the interface counts as unconfigured.
func healthChecks(app *apphttp.App) []healthCheck {
	var out []healthCheck
	for _, hc := range []healthCheck{{"database", app.Health}, {"redis", app.Cache}} {
		if configured(hc.checker) {
			out = append(out, hc)
		}
	}
	return out
}

func configured(hc apphttp.HealthChecker) bool {
	if hc == nil {
		return false
	}
	v := reflect.ValueOf(hc)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !v.IsNil()
	}
	return true
}

func readiness(checks []healthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		result := gin.H{}
		status := http.StatusOK
		for _, hc := range checks {
			if err := hc.checker.Ping(ctx); err != nil {
				result[hc.name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			result[hc.name] = "up"
		}
		c.JSON(status, gin.H{"checks": result})
	}
}
