package http

import (
	"strconv"
	"time"

	"teleearn/internal/config"
	"teleearn/internal/http/handlers"
	"teleearn/internal/http/middleware"
	"teleearn/internal/repository"
	"teleearn/internal/reward"
	"teleearn/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires services, middleware and endpoints onto the
// engine.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) {
	middleware.RegisterMetrics()

	defaults := reward.Defaults{
		AppTaskReward:  cfg.AppTaskReward,
		LinkTaskReward: cfg.LinkTaskReward,
		USDRate:        cfg.USDRate,
		EGPRate:        cfg.EGPRate,
	}

	ledger := service.NewLedger(db)
	referrals := service.NewReferralService(db, ledger)
	h := &handlers.Handler{
		DB:          db,
		Auth:        service.NewAuthService(db, ledger, referrals, cfg.BotToken, cfg.JWTSecret),
		Users:       service.NewUserService(db),
		Rewards:     service.NewRewardService(db, ledger, defaults, cfg.DailyBonusAmount),
		Exchange:    service.NewExchangeService(db, ledger, defaults),
		Investments: service.NewInvestmentService(db, ledger),
		Wallet:      service.NewWalletService(db, ledger),
		Referrals:   referrals,
	}
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health and metrics sit outside the rate limiters.
	r.GET("/health", healthHandler.Readiness)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jwtAuth := middleware.JWT(h.Auth.ParseToken)
	actionLimit := middleware.ActionRateLimit(cfg.ActionRateLimit, time.Duration(cfg.ActionRateWindow)*time.Second)

	userRepo := repository.NewUserRepository(db)
	adminOnly := middleware.Admin(func(c *gin.Context, userID int64) bool {
		u, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			return false
		}
		tgID, err := strconv.ParseInt(u.TelegramID, 10, 64)
		if err != nil {
			return false
		}
		return cfg.IsAdmin(tgID)
	})

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(120, time.Minute))

	// Auth gets a tighter per-IP window than the rest of the API.
	api.POST("/auth", middleware.RedisRateLimit(10, time.Minute), h.AuthLogin)

	// Profile
	api.GET("/me", jwtAuth, h.Me)
	api.GET("/me/transactions", jwtAuth, h.MyTransactions)

	// Earning: ads, tasks, quests, daily rewards. These credit points,
	// so the per-user action limiter applies on top of the JWT.
	api.POST("/ads/watch", jwtAuth, actionLimit, h.WatchAd)
	api.GET("/tasks/:type", h.ListTasks)
	api.POST("/tasks/:type/:id/complete", jwtAuth, actionLimit, h.CompleteTask)
	api.GET("/me/quests", jwtAuth, h.MyQuests)
	api.POST("/quests/:id/claim", jwtAuth, actionLimit, h.ClaimQuest)
	api.POST("/daily/bonus", jwtAuth, actionLimit, h.ClaimBonus)
	api.GET("/daily/streak", jwtAuth, h.StreakStatus)
	api.POST("/daily/streak", jwtAuth, actionLimit, h.ClaimStreak)

	// Exchange
	api.GET("/exchange/rates", h.ExchangeRates)
	api.POST("/exchange", jwtAuth, actionLimit, h.ExchangePoints)
	api.POST("/exchange/coins", jwtAuth, actionLimit, h.ExchangeToCoins)

	// Investments
	api.GET("/investments/packages", h.ListPackages)
	api.GET("/me/investments", jwtAuth, h.MyInvestments)
	api.POST("/investments/subscribe", jwtAuth, h.Subscribe)
	api.POST("/investments/:id/task", jwtAuth, actionLimit, h.CompleteInvestmentTask)
	api.POST("/investments/:id/ad", jwtAuth, actionLimit, h.WatchInvestmentAd)
	api.POST("/investments/transfer", jwtAuth, h.TransferToMain)

	// Wallet
	api.POST("/withdrawals", jwtAuth, h.CreateWithdrawal)
	api.GET("/me/withdrawals", jwtAuth, h.MyWithdrawals)
	api.POST("/deposits", jwtAuth, h.CreateDeposit)
	api.GET("/me/deposits", jwtAuth, h.MyDeposits)

	// Referrals
	referralHandler := handlers.NewReferralHandler(h, cfg.BotUsername)
	referral := api.Group("/referral", jwtAuth)
	{
		referral.GET("/stats", referralHandler.Stats)
		referral.GET("/link", referralHandler.Link)
	}

	// Admin decisions: the only balance-mutating surface outside the
	// user's own actions.
	admin := api.Group("/admin", jwtAuth, adminOnly)
	{
		admin.GET("/withdrawals", h.PendingWithdrawals)
		admin.POST("/withdrawals/:id/approve", h.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", h.RejectWithdrawal)
		admin.GET("/deposits", h.PendingDeposits)
		admin.POST("/deposits/:id/approve", h.ApproveDeposit)
		admin.POST("/deposits/:id/reject", h.RejectDeposit)
		admin.POST("/ads/reset", h.ResetAdLimit)
	}
}
