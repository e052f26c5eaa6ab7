package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"teleearn/internal/logger"
	"teleearn/internal/repository"
	"teleearn/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot runs the Telegram long-poll loop. /start registers the user
// (carrying an optional referral payload), /stats shows balances and
// /help lists the commands.
type Bot struct {
	bot      *tgbotapi.BotAPI
	auth     *service.AuthService
	userRepo *repository.UserRepository
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

func New(token string, auth *service.AuthService, userRepo *repository.UserRepository) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &Bot{
		bot:      api,
		auth:     auth,
		userRepo: userRepo,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start runs the update loop until Stop is called.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop shuts the loop down and waits for in-flight handlers.
func (b *Bot) Stop() {
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout")
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "stats":
		b.handleStats(ctx, msg)
	case "help":
		b.reply(msg.Chat.ID,
			"/start - register and open the app\n"+
				"/stats - your balances\n"+
				"/help - this message")
	}
}

// handleStart registers the sender. The command argument is the deep
// link payload, e.g. "ref_AB12CD" from an invite link.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	from := msg.From
	if from == nil {
		return
	}

	u, isNew, err := b.auth.GetOrCreate(ctx,
		strconv.FormatInt(from.ID, 10),
		from.UserName, from.FirstName, from.LastName,
		msg.CommandArguments(),
	)
	if err != nil {
		b.log.Error("start registration failed", "error", err)
		b.reply(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}

	text := fmt.Sprintf("Welcome back, %s!", from.FirstName)
	if isNew {
		text = fmt.Sprintf(
			"Welcome, %s!\n\nEarn points by watching ads, completing tasks and inviting friends, then convert them to real money.",
			from.FirstName)
		if u.Points > 0 {
			text += fmt.Sprintf("\n\nYour welcome bonus: %d points.", u.Points)
		}
	}
	b.reply(msg.Chat.ID, text)
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	from := msg.From
	if from == nil {
		return
	}

	u, err := b.userRepo.GetByTelegramID(ctx, strconv.FormatInt(from.ID, 10))
	if err != nil {
		b.reply(msg.Chat.ID, "You are not registered yet. Send /start first.")
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Points: %d\nCoins: %d\nUSD: %.2f\nEGP: %.2f\nInvestment USD: %.2f\nInvestment EGP: %.2f\nReferral code: %s",
		u.Points, u.CoinBalance,
		float64(u.USDBalance)/100, float64(u.EGPBalance)/100,
		float64(u.InvestmentUSDBalance)/100, float64(u.InvestmentEGPBalance)/100,
		u.ReferralCode,
	))
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send message failed", "error", err)
	}
}
