package handlers

import (
	"net/http"
	"strconv"

	"teleearn/internal/domain"

	"github.com/gin-gonic/gin"
)

type withdrawalRequest struct {
	Amount         int64  `json:"amount" binding:"required"`
	Currency       string `json:"currency" binding:"required"`
	Method         string `json:"method" binding:"required"`
	AccountDetails string `json:"account_details"`
}

// CreateWithdrawal reserves funds and files the request.
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req withdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount, currency and method are required"})
		return
	}

	w := &domain.WithdrawalRequest{
		UserID:         userID,
		Amount:         req.Amount,
		Currency:       domain.RewardCurrency(req.Currency),
		Method:         req.Method,
		AccountDetails: req.AccountDetails,
	}
	if err := h.Wallet.CreateWithdrawal(c.Request.Context(), w); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": w})
}

// MyWithdrawals returns the user's withdrawal history.
func (h *Handler) MyWithdrawals(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	requests, err := h.Wallet.ListWithdrawals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

type depositRequest struct {
	Amount           int64  `json:"amount" binding:"required"`
	Currency         string `json:"currency" binding:"required"`
	Method           string `json:"method" binding:"required"`
	DepositType      string `json:"deposit_type" binding:"required"`
	AccountDetails   string `json:"account_details"`
	TransactionProof string `json:"transaction_proof"`
}

// CreateDeposit files a deposit request for admin review.
func (h *Handler) CreateDeposit(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount, currency, method and deposit_type are required"})
		return
	}

	d := &domain.DepositRequest{
		UserID:           userID,
		Amount:           req.Amount,
		Currency:         domain.RewardCurrency(req.Currency),
		Method:           req.Method,
		DepositType:      domain.DepositType(req.DepositType),
		AccountDetails:   req.AccountDetails,
		TransactionProof: req.TransactionProof,
	}
	if err := h.Wallet.CreateDeposit(c.Request.Context(), d); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": d})
}

// MyDeposits returns the user's deposit history.
func (h *Handler) MyDeposits(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	requests, err := h.Wallet.ListDeposits(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// Admin review queue and decisions.

func (h *Handler) PendingWithdrawals(c *gin.Context) {
	requests, err := h.Wallet.ListPendingWithdrawals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *Handler) PendingDeposits(c *gin.Context) {
	requests, err := h.Wallet.ListPendingDeposits(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *Handler) decide(c *gin.Context, decide func(int64) error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	if err := decide(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	h.decide(c, func(id int64) error {
		return h.Wallet.ApproveWithdrawal(c.Request.Context(), id)
	})
}

func (h *Handler) RejectWithdrawal(c *gin.Context) {
	h.decide(c, func(id int64) error {
		return h.Wallet.RejectWithdrawal(c.Request.Context(), id)
	})
}

func (h *Handler) ApproveDeposit(c *gin.Context) {
	h.decide(c, func(id int64) error {
		return h.Wallet.ApproveDeposit(c.Request.Context(), id)
	})
}

func (h *Handler) RejectDeposit(c *gin.Context) {
	h.decide(c, func(id int64) error {
		return h.Wallet.RejectDeposit(c.Request.Context(), id)
	})
}
