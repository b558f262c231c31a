package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/disputeq-io/disputeq/internal/auth"
	"github.com/disputeq-io/disputeq/internal/config"
	"github.com/disputeq-io/disputeq/internal/middleware"
	"github.com/disputeq-io/disputeq/internal/repository"
)

// Router wires the HTTP surface over a Store.
type Router struct {
	engine *gin.Engine
	store  repository.Store
	cfg    *config.Config
	jwt    *auth.JWTManager
}

// NewRouter creates the router. A JWT manager is only constructed when a
// secret is configured; without one the API runs open, which is the local
// development mode.
func NewRouter(store repository.Store, cfg *config.Config) *Router {
	if cfg == nil {
		cfg = config.Get()
	}
	var jwtManager *auth.JWTManager
	if cfg.Auth.JWT.Secret != "" {
		jwtManager = auth.NewJWTManager(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer,
			cfg.Auth.JWT.Audience, cfg.Auth.JWT.AccessTokenTTL)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	if cfg.Metrics.Enabled {
		engine.Use(middleware.Metrics())
	}

	return &Router{engine: engine, store: store, cfg: cfg, jwt: jwtManager}
}

// SetupRoutes registers all endpoints.
func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", r.handleHealth)
	if r.cfg.Metrics.Enabled {
		r.engine.GET(r.cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	r.engine.POST("/api/v1/auth/token", r.handleIssueToken)

	authn := middleware.NewAuthMiddleware(r.jwt)
	v1 := r.engine.Group("/api/v1", authn.RequireAuth())

	lateFees := v1.Group("/latefees")
	lateFees.POST("/search", r.handleSearchLateFees)
	lateFees.POST("/assigned", r.handleAssignedLateFees)
	lateFees.POST("/assign", r.handleAssignLateFees)
	lateFees.POST("/unassign", r.handleUnassignLateFees)
	lateFees.PUT("", r.handleUpdateLateFee)
	lateFees.GET("", r.handleListLateFees)
	lateFees.GET("/export", r.handleExportLateFees)

	pastDues := v1.Group("/pastdues")
	pastDues.POST("/search", r.handleSearchPastDues)
	pastDues.POST("/assigned", r.handleAssignedPastDues)
	pastDues.POST("/assign", r.handleAssignPastDues)
	pastDues.POST("/unassign", r.handleUnassignPastDues)
	pastDues.PUT("", r.handleUpdatePastDue)
	pastDues.GET("", r.handleListPastDues)
	pastDues.GET("/export", r.handleExportPastDues)

	notices := v1.Group("/notices")
	notices.POST("/search", r.handleSearchNotices)
	notices.POST("/assigned", r.handleAssignedNotices)
	notices.POST("/assign", r.handleAssignNotices)
	notices.POST("/unassign", r.handleUnassignNotices)
	notices.PUT("", r.handleUpdateNotice)
	notices.GET("", r.handleListNotices)
	notices.GET("/export", r.handleExportNotices)

	v1.GET("/pmcs", r.handlePmcs)
	v1.GET("/refdetails", r.handleRefDetails)
	v1.GET("/refdetails/rootcauses", r.handleRootCauses)
}

// GetEngine exposes the underlying engine for the HTTP server and tests.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
