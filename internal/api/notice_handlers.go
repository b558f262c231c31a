package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/disputeq-io/disputeq/internal/models"
)

func (r *Router) handleSearchNotices(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	items, total, err := r.store.SearchNotices(c.Request.Context(), f)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, items, f.Page, f.PageSize, total)
}

func (r *Router) handleAssignedNotices(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	if f.UserID == 0 {
		f.UserID = c.GetInt("user_id")
	}
	items, total, err := r.store.AssignedNotices(c.Request.Context(), f)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, items, f.Page, f.PageSize, total)
}

func (r *Router) handleListNotices(c *gin.Context) {
	items, err := r.store.AllNotices(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

func (r *Router) handleAssignNotices(c *gin.Context) {
	runAssign(c, r.store.AssignNotices)
}

func (r *Router) handleUnassignNotices(c *gin.Context) {
	runUnassign(c, r.store.UnassignNotices)
}

func (r *Router) handleUpdateNotice(c *gin.Context) {
	var req models.UpdateNotice
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid update request: "+err.Error())
		return
	}
	if _, err := strconv.Atoi(req.ID); err != nil {
		respondError(c, http.StatusBadRequest, "invalid notice id")
		return
	}
	item, found, err := r.store.UpdateNotice(c.Request.Context(), req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, "notice not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": item})
}
