package handlers

import (
	"net/http"

	"teleearn/internal/domain"
	"teleearn/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// WatchAd grants the ad view reward.
func (h *Handler) WatchAd(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	res, err := h.Rewards.WatchAd(c.Request.Context(), userID)
	if err != nil {
		middleware.RewardsDenied.WithLabelValues(domain.TxAdReward, metricReason(err)).Inc()
		respondError(c, err)
		return
	}
	middleware.RewardsGranted.WithLabelValues(domain.TxAdReward).Inc()
	c.JSON(http.StatusOK, res)
}

// ResetAdLimit zeroes a user's daily ad counter. Admin only.
func (h *Handler) ResetAdLimit(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if err := h.Rewards.ResetDailyAdLimit(c.Request.Context(), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
