package handlers

import (
	"net/http"

	"teleearn/internal/domain"
	"teleearn/internal/service"

	"github.com/gin-gonic/gin"
)

// ExchangeRates returns the effective points-to-fiat rates.
func (h *Handler) ExchangeRates(c *gin.Context) {
	rates, err := h.Exchange.GetRates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates, "min_points": service.MinExchangePoints})
}

type exchangeRequest struct {
	Points   int64  `json:"points" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

// ExchangePoints converts points to usd or egp minor units.
func (h *Handler) ExchangePoints(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req exchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "points and currency are required"})
		return
	}

	res, err := h.Exchange.ExchangePoints(c.Request.Context(), userID, req.Points, domain.RewardCurrency(req.Currency))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExchangeToCoins converts points to coins one to one.
func (h *Handler) ExchangeToCoins(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req struct {
		Points int64 `json:"points" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "points is required"})
		return
	}

	res, err := h.Exchange.ExchangeToCoins(c.Request.Context(), userID, req.Points)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
