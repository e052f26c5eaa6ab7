package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReferralHandler serves referral stats and invite links.
type ReferralHandler struct {
	handler     *Handler
	botUsername string
}

func NewReferralHandler(h *Handler, botUsername string) *ReferralHandler {
	return &ReferralHandler{handler: h, botUsername: botUsername}
}

// Stats returns the user's code, invite count and earnings.
func (r *ReferralHandler) Stats(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	stats, err := r.handler.Referrals.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Link returns the deep link a user shares to invite friends.
func (r *ReferralHandler) Link(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	stats, err := r.handler.Referrals.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": stats.Code,
		"link": "https://t.me/" + r.botUsername + "?start=ref_" + stats.Code,
	})
}
