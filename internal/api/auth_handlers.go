package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	UserID   int    `json:"userId" binding:"required"`
	UserName string `json:"userName" binding:"required"`
	Role     string `json:"role"`
}

// handleIssueToken exchanges a trusted identity for an access token. The
// endpoint is meant to sit behind the SSO gateway, which is why it does
// not check a password itself.
func (r *Router) handleIssueToken(c *gin.Context) {
	if r.jwt == nil {
		respondError(c, http.StatusServiceUnavailable, "authentication is not configured")
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid token request: "+err.Error())
		return
	}
	if req.Role == "" {
		req.Role = "reviewer"
	}
	token, err := r.jwt.GenerateToken(req.UserID, req.UserName, req.Role)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     token,
		"expiresIn": int(r.jwt.TokenTTL().Seconds()),
	})
}
