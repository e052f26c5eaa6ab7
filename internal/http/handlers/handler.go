package handlers

import (
	"teleearn/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler bundles the services behind the HTTP API.
type Handler struct {
	DB          *pgxpool.Pool
	Auth        *service.AuthService
	Users       *service.UserService
	Rewards     *service.RewardService
	Exchange    *service.ExchangeService
	Investments *service.InvestmentService
	Wallet      *service.WalletService
	Referrals   *service.ReferralService
}

func getUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// mustUserID aborts with 401 when the JWT middleware did not run.
func mustUserID(c *gin.Context) (int64, bool) {
	id, ok := getUserID(c)
	if !ok {
		c.AbortWithStatusJSON(401, gin.H{"error": "unauthorized"})
	}
	return id, ok
}
