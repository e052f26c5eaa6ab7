package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teleearn/internal/bot"
	"teleearn/internal/config"
	"teleearn/internal/db"
	httpserver "teleearn/internal/http"
	"teleearn/internal/http/middleware"
	"teleearn/internal/logger"
	"teleearn/internal/repository"
	"teleearn/internal/service"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")
	cfg := config.Load()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	middleware.InitRedisRateLimiter(cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), 0)

	r := gin.Default()

	// The mini app frontend is served from another origin.
	r.Use(func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpserver.RegisterRoutes(r, dbPool, cfg, version)

	if cfg.BotEnabled {
		ledger := service.NewLedger(dbPool)
		referrals := service.NewReferralService(dbPool, ledger)
		auth := service.NewAuthService(dbPool, ledger, referrals, cfg.BotToken, cfg.JWTSecret)
		tgBot, err := bot.New(cfg.BotToken, auth, repository.NewUserRepository(dbPool))
		if err != nil {
			logger.Fatal("bot init failed", "error", err)
		}
		go tgBot.Start()
		defer tgBot.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
