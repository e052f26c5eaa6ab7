package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type authRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

// Auth validates Telegram init data and returns a JWT, creating the
// account on first login.
func (h *Handler) AuthLogin(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data is required"})
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.InitData)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
