package config

import (
	"os"
	"strconv"
	"strings"

	"teleearn/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	RedisAddr   string
	BotToken    string
	BotUsername string
	JWTSecret   string

	AdminTelegramIDs []int64
	BotEnabled       bool

	// Reward defaults; catalog rows override these when present.
	AppTaskReward    int64
	LinkTaskReward   int64
	DailyBonusAmount int64
	USDRate          float64
	EGPRate          float64

	// Per-user API rate limit for reward actions.
	ActionRateLimit  int
	ActionRateWindow int
}

// Load reads the environment, .env included. Missing required vars are
// fatal at startup rather than surfacing as runtime errors later.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	botUsername := os.Getenv("BOT_USERNAME")
	if botUsername == "" {
		botUsername = "TeleEarnBot"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	var adminIDs []int64
	if s := os.Getenv("ADMIN_TELEGRAM_IDS"); s != "" {
		for _, idStr := range strings.Split(s, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	return &Config{
		AppPort:          port,
		DatabaseURL:      dbURL,
		RedisAddr:        redisAddr,
		BotToken:         botToken,
		BotUsername:      botUsername,
		JWTSecret:        jwtSecret,
		AdminTelegramIDs: adminIDs,
		BotEnabled:       os.Getenv("BOT_ENABLED") != "false",
		AppTaskReward:    envInt64("APP_TASK_REWARD", 100),
		LinkTaskReward:   envInt64("LINK_TASK_REWARD", 50),
		DailyBonusAmount: envInt64("DAILY_BONUS_AMOUNT", 100),
		USDRate:          envFloat("USD_RATE", 0.0001),
		EGPRate:          envFloat("EGP_RATE", 0.005),
		ActionRateLimit:  envInt("ACTION_RATE_LIMIT", 60),
		ActionRateWindow: envInt("ACTION_RATE_WINDOW", 60),
	}
}

// IsAdmin reports whether a Telegram id may call the approval endpoints.
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminTelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}
