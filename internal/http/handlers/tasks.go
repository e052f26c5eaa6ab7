package handlers

import (
	"net/http"
	"strconv"

	"teleearn/internal/domain"
	"teleearn/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ListTasks returns the active tasks of one type.
func (h *Handler) ListTasks(c *gin.Context) {
	taskType := domain.TaskType(c.Param("type"))
	if !taskType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown task type"})
		return
	}

	tasks, err := h.Rewards.ListTasks(c.Request.Context(), taskType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// CompleteTask grants a one-shot task reward.
func (h *Handler) CompleteTask(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	taskType := domain.TaskType(c.Param("type"))
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || !taskType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task"})
		return
	}

	res, err := h.Rewards.CompleteTask(c.Request.Context(), userID, taskType, taskID)
	if err != nil {
		middleware.RewardsDenied.WithLabelValues(domain.TxTaskReward, metricReason(err)).Inc()
		respondError(c, err)
		return
	}
	middleware.RewardsGranted.WithLabelValues(domain.TxTaskReward).Inc()
	c.JSON(http.StatusOK, res)
}
