package handlers

import (
	"net/http"

	"teleearn/internal/domain"
	"teleearn/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ClaimBonus pays the 30-minute daily bonus.
func (h *Handler) ClaimBonus(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	res, err := h.Rewards.ClaimDailyBonus(c.Request.Context(), userID)
	if err != nil {
		middleware.RewardsDenied.WithLabelValues(domain.TxDailyBonus, metricReason(err)).Inc()
		respondError(c, err)
		return
	}
	middleware.RewardsGranted.WithLabelValues(domain.TxDailyBonus).Inc()
	c.JSON(http.StatusOK, res)
}

// StreakStatus reports what today's streak claim would pay.
func (h *Handler) StreakStatus(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	status, err := h.Rewards.GetStreakStatus(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ClaimStreak pays the daily streak reward.
func (h *Handler) ClaimStreak(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	res, err := h.Rewards.ClaimDailyStreak(c.Request.Context(), userID)
	if err != nil {
		middleware.RewardsDenied.WithLabelValues(domain.TxDailyStreak, metricReason(err)).Inc()
		respondError(c, err)
		return
	}
	middleware.RewardsGranted.WithLabelValues(domain.TxDailyStreak).Inc()
	c.JSON(http.StatusOK, res)
}
