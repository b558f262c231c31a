package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/disputeq-io/disputeq/internal/models"
	"github.com/disputeq-io/disputeq/internal/repository"
)

func bindFilter(c *gin.Context) (models.Filter, bool) {
	var f models.Filter
	if err := c.ShouldBindJSON(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid search request: "+err.Error())
		return f, false
	}
	f.Normalize()
	return f, true
}

// runAssign executes an assignment batch and maps a ConflictError to 409 so
// the grid can tell the user who lost the race.
func runAssign(c *gin.Context, fn func(context.Context, models.AssignRequest) error) {
	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid assign request: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		respondError(c, http.StatusBadRequest, "no item ids given")
		return
	}
	if err := fn(c.Request.Context(), req); err != nil {
		if errors.Is(err, repository.ErrAlreadyAssigned) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "assigned": len(req.IDs)})
}

func runUnassign(c *gin.Context, fn func(context.Context, models.UnassignRequest) error) {
	var req models.UnassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid unassign request: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		respondError(c, http.StatusBadRequest, "no item ids given")
		return
	}
	if err := fn(c.Request.Context(), req); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "released": len(req.IDs)})
}

func (r *Router) handleSearchLateFees(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	fees, total, err := r.store.SearchLateFees(c.Request.Context(), f)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, fees, f.Page, f.PageSize, total)
}

// handleAssignedLateFees serves a reviewer's worklist. The reviewer comes
// from the request body but an authenticated caller may omit it.
func (r *Router) handleAssignedLateFees(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	if f.UserID == 0 {
		f.UserID = c.GetInt("user_id")
	}
	fees, total, err := r.store.AssignedLateFees(c.Request.Context(), f)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, fees, f.Page, f.PageSize, total)
}

// handleListLateFees returns the full late-fee population without paging,
// for the external JSON-export consumers.
func (r *Router) handleListLateFees(c *gin.Context) {
	fees, err := r.store.AllLateFees(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": fees})
}

func (r *Router) handleAssignLateFees(c *gin.Context) {
	runAssign(c, r.store.AssignInvoices)
}

func (r *Router) handleUnassignLateFees(c *gin.Context) {
	runUnassign(c, r.store.UnassignInvoices)
}

func (r *Router) handleUpdateLateFee(c *gin.Context) {
	var req models.UpdateLateFee
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid update request: "+err.Error())
		return
	}
	if _, err := strconv.Atoi(req.InvoiceID); err != nil {
		respondError(c, http.StatusBadRequest, "invalid invoice id")
		return
	}
	fee, found, err := r.store.UpdateLateFee(c.Request.Context(), req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, "invoice not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": fee})
}
