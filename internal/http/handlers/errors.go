package handlers

import (
	"errors"
	"net/http"

	"teleearn/internal/logger"
	"teleearn/internal/service"

	"github.com/gin-gonic/gin"
)

// errorStatus maps service sentinels to HTTP statuses. Eligibility
// denials are 400 with a reason code, idempotency replays 409,
// missing things 404.
var errorStatus = map[error]int{
	service.ErrUserNotFound:       http.StatusNotFound,
	service.ErrTaskNotFound:       http.StatusNotFound,
	service.ErrQuestNotFound:      http.StatusNotFound,
	service.ErrPackageNotFound:    http.StatusNotFound,
	service.ErrInvestmentNotFound: http.StatusNotFound,
	service.ErrRequestNotFound:    http.StatusNotFound,

	service.ErrInvalidAmount:   http.StatusBadRequest,
	service.ErrInvalidCurrency: http.StatusBadRequest,
	service.ErrBelowMinimum:    http.StatusBadRequest,
	service.ErrTaskInactive:    http.StatusBadRequest,
	service.ErrPackageInactive: http.StatusBadRequest,

	service.ErrInsufficientBalance: http.StatusBadRequest,
	service.ErrDepositRequired:     http.StatusBadRequest,

	service.ErrCooldownActive:           http.StatusBadRequest,
	service.ErrDailyLimitReached:        http.StatusBadRequest,
	service.ErrBonusNotReady:            http.StatusBadRequest,
	service.ErrAlreadyClaimed:           http.StatusBadRequest,
	service.ErrQuestNotCompleted:        http.StatusBadRequest,
	service.ErrInvestmentExpired:        http.StatusBadRequest,
	service.ErrInvestmentAdLimitReached: http.StatusBadRequest,
	service.ErrInvestmentTaskDone:       http.StatusBadRequest,

	service.ErrTaskAlreadyCompleted: http.StatusConflict,
	service.ErrQuestAlreadyClaimed:  http.StatusConflict,
	service.ErrRequestProcessed:     http.StatusConflict,

	service.ErrInvalidInitData: http.StatusUnauthorized,
	service.ErrInvalidToken:    http.StatusUnauthorized,
}

// reasonCode gives clients a machine-readable reason alongside the
// human message.
var reasonCode = map[error]string{
	service.ErrCooldownActive:           "cooldown_active",
	service.ErrDailyLimitReached:        "daily_limit_reached",
	service.ErrBonusNotReady:            "cooldown_active",
	service.ErrAlreadyClaimed:           "already_claimed_today",
	service.ErrInvestmentExpired:        "investment_expired",
	service.ErrInvestmentAdLimitReached: "daily_limit_reached",
	service.ErrInvestmentTaskDone:       "already_claimed_today",
	service.ErrDepositRequired:          "deposit_required",
	service.ErrInsufficientBalance:      "insufficient_balance",
}

// denyReason covers the remaining sentinels a reward endpoint can
// return that have no client-facing reason code.
var denyReason = map[error]string{
	service.ErrTaskAlreadyCompleted: "already_completed",
	service.ErrQuestAlreadyClaimed:  "already_claimed",
	service.ErrQuestNotCompleted:    "not_completed",
	service.ErrTaskInactive:         "inactive",
	service.ErrUserNotFound:         "not_found",
	service.ErrTaskNotFound:         "not_found",
	service.ErrQuestNotFound:        "not_found",
	service.ErrInvestmentNotFound:   "not_found",
}

// metricReason buckets an error into a fixed label value for the
// denial counter. Metrics never see raw error strings; those are
// unbounded and would explode label cardinality.
func metricReason(err error) string {
	for sentinel, reason := range reasonCode {
		if errors.Is(err, sentinel) {
			return reason
		}
	}
	for sentinel, reason := range denyReason {
		if errors.Is(err, sentinel) {
			return reason
		}
	}
	return "internal"
}

func respondError(c *gin.Context, err error) {
	for sentinel, status := range errorStatus {
		if errors.Is(err, sentinel) {
			body := gin.H{"error": sentinel.Error()}
			if reason, ok := reasonCode[sentinel]; ok {
				body["reason"] = reason
			}
			var notDone *service.QuestNotCompletedError
			if errors.As(err, &notDone) {
				body["progress"] = notDone.Progress
				body["target"] = notDone.Target
			}
			c.JSON(status, body)
			return
		}
	}

	logger.Error("internal error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
