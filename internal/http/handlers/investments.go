package handlers

import (
	"net/http"
	"strconv"

	"teleearn/internal/domain"
	"teleearn/internal/http/middleware"
	"teleearn/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListPackages returns the packages open for subscription.
func (h *Handler) ListPackages(c *gin.Context) {
	packages, err := repository.NewCatalogRepository(h.DB).GetActivePackages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

// MyInvestments returns the user's subscriptions, expired ones
// included.
func (h *Handler) MyInvestments(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	investments, err := h.Investments.ListUserInvestments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investments": investments})
}

// Subscribe buys an investment package.
func (h *Handler) Subscribe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req struct {
		PackageID int64 `json:"package_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "package_id is required"})
		return
	}

	inv, err := h.Investments.Subscribe(c.Request.Context(), userID, req.PackageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investment": inv})
}

// CompleteInvestmentTask claims today's task reward for a subscription.
func (h *Handler) CompleteInvestmentTask(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	investmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid investment id"})
		return
	}

	res, err := h.Investments.CompleteDailyTask(c.Request.Context(), userID, investmentID)
	if err != nil {
		middleware.RewardsDenied.WithLabelValues(domain.TxInvestmentTask, metricReason(err)).Inc()
		respondError(c, err)
		return
	}
	middleware.RewardsGranted.WithLabelValues(domain.TxInvestmentTask).Inc()
	c.JSON(http.StatusOK, res)
}

// WatchInvestmentAd claims one of the ten daily ad rewards.
func (h *Handler) WatchInvestmentAd(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	investmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid investment id"})
		return
	}

	res, err := h.Investments.WatchInvestmentAd(c.Request.Context(), userID, investmentID)
	if err != nil {
		middleware.RewardsDenied.WithLabelValues(domain.TxInvestmentAd, metricReason(err)).Inc()
		respondError(c, err)
		return
	}
	middleware.RewardsGranted.WithLabelValues(domain.TxInvestmentAd).Inc()
	c.JSON(http.StatusOK, res)
}

// TransferToMain moves investment balance into the main wallet.
func (h *Handler) TransferToMain(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req struct {
		Amount   int64  `json:"amount" binding:"required"`
		Currency string `json:"currency" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and currency are required"})
		return
	}

	res, err := h.Investments.TransferToMain(c.Request.Context(), userID, req.Amount, domain.RewardCurrency(req.Currency))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
