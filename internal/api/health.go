package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/disputeq-io/disputeq/internal/database"
	"github.com/disputeq-io/disputeq/internal/version"
)

// handleHealth reports liveness and, when a database is wired, its
// reachability. A store-only deployment (tests, in-memory mode) is healthy
// without a database.
func (r *Router) handleHealth(c *gin.Context) {
	status := gin.H{
		"status":  "ok",
		"app":     r.cfg.App.Name,
		"version": version.GetInfo(),
	}
	if db, err := database.Get(); err == nil {
		if err := db.PingContext(c.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}
