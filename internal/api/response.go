package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListResponse is the envelope for the grid endpoints. The total always
// covers the whole filtered population, not just the returned page.
type ListResponse struct {
	Success    bool           `json:"success"`
	Data       interface{}    `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// PaginationInfo contains pagination metadata.
type PaginationInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func paginationInfo(page, perPage, total int) PaginationInfo {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	totalPages := (total + perPage - 1) / perPage
	return PaginationInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func respondList(c *gin.Context, data interface{}, page, perPage, total int) {
	c.JSON(http.StatusOK, ListResponse{
		Success:    true,
		Data:       data,
		Pagination: paginationInfo(page, perPage, total),
	})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   msg,
	})
}
