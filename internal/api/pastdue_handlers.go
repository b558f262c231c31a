package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/disputeq-io/disputeq/internal/models"
)

func (r *Router) handleSearchPastDues(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	dues, total, err := r.store.SearchPastDues(c.Request.Context(), f)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, dues, f.Page, f.PageSize, total)
}

func (r *Router) handleAssignedPastDues(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	if f.UserID == 0 {
		f.UserID = c.GetInt("user_id")
	}
	dues, total, err := r.store.AssignedPastDues(c.Request.Context(), f)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, dues, f.Page, f.PageSize, total)
}

func (r *Router) handleListPastDues(c *gin.Context) {
	dues, err := r.store.AllPastDues(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dues})
}

func (r *Router) handleAssignPastDues(c *gin.Context) {
	runAssign(c, r.store.AssignInvoices)
}

func (r *Router) handleUnassignPastDues(c *gin.Context) {
	runUnassign(c, r.store.UnassignInvoices)
}

func (r *Router) handleUpdatePastDue(c *gin.Context) {
	var req models.UpdatePastDue
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid update request: "+err.Error())
		return
	}
	if _, err := strconv.Atoi(req.InvoiceID); err != nil {
		respondError(c, http.StatusBadRequest, "invalid invoice id")
		return
	}
	due, found, err := r.store.UpdatePastDue(c.Request.Context(), req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, "invoice not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": due})
}
