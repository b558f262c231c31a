package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handlePmcs returns the PMC names for the grid filter dropdown.
// ?pageType=latefee|pastdue|notice picks the population.
func (r *Router) handlePmcs(c *gin.Context) {
	pageType := c.DefaultQuery("pageType", "latefee")
	pmcs, err := r.store.Pmcs(c.Request.Context(), pageType)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if pmcs == nil {
		pmcs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": pmcs})
}

// handleRefDetails returns the code-to-label catalog, including the 0 -> ""
// sentinel.
func (r *Router) handleRefDetails(c *gin.Context) {
	catalog, err := r.store.AllRefDetails(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": catalog})
}

// handleRootCauses returns the secondary root causes grouped under their
// primary cause.
func (r *Router) handleRootCauses(c *gin.Context) {
	groups, err := r.store.MapRootCauses(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": groups})
}
