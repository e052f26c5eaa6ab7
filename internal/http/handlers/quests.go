package handlers

import (
	"net/http"
	"strconv"

	"teleearn/internal/domain"
	"teleearn/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// MyQuests returns the active quests with the user's live progress.
func (h *Handler) MyQuests(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	quests, err := h.Rewards.ListQuests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

// ClaimQuest pays a quest reward once.
func (h *Handler) ClaimQuest(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	questID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest id"})
		return
	}

	res, err := h.Rewards.ClaimQuest(c.Request.Context(), userID, questID)
	if err != nil {
		middleware.RewardsDenied.WithLabelValues(domain.TxQuestReward, metricReason(err)).Inc()
		respondError(c, err)
		return
	}
	middleware.RewardsGranted.WithLabelValues(domain.TxQuestReward).Inc()
	c.JSON(http.StatusOK, res)
}
