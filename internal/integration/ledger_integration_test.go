package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"teleearn/internal/domain"
	"teleearn/internal/repository"
	"teleearn/internal/reward"
	"teleearn/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func testDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func createUser(t *testing.T, db *pgxpool.Pool, telegramID string) *domain.User {
	t.Helper()
	// Reruns against the same database reuse telegram ids; start clean.
	if _, err := db.Exec(context.Background(), `DELETE FROM users WHERE telegram_id = $1`, telegramID); err != nil {
		t.Fatalf("cleanup user: %v", err)
	}
	users := repository.NewUserRepository(db)
	u := &domain.User{TelegramID: telegramID, FirstName: "Test"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// journalSum checks the core ledger invariant: for every account the
// journal rows add up to the stored balance.
func journalSum(t *testing.T, db *pgxpool.Pool, userID int64, account domain.Balance) int64 {
	t.Helper()
	txRepo := repository.NewTransactionRepository(db)
	sum, err := txRepo.SumByUserAndAccount(context.Background(), userID, account.String())
	if err != nil {
		t.Fatalf("sum journal: %v", err)
	}
	return sum
}

func currentBalance(t *testing.T, db *pgxpool.Pool, userID int64, account domain.Balance) int64 {
	t.Helper()
	users := repository.NewUserRepository(db)
	u, err := users.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u.BalanceOf(account)
}

func TestLedgerDebitInsufficient(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ledger := service.NewLedger(db)
	u := createUser(t, db, "it-ledger-1")

	if _, err := ledger.Credit(ctx, u.ID, domain.BalancePoints, 100, domain.TxAdReward, nil); err != nil {
		t.Fatalf("credit: %v", err)
	}
	_, err := ledger.Debit(ctx, u.ID, domain.BalancePoints, 200, domain.TxExchangeOut, nil)
	if !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// A failed debit must leave no trace in balance or journal.
	if got := currentBalance(t, db, u.ID, domain.BalancePoints); got != 100 {
		t.Fatalf("balance after failed debit = %d, want 100", got)
	}
	if got := journalSum(t, db, u.ID, domain.BalancePoints); got != 100 {
		t.Fatalf("journal sum after failed debit = %d, want 100", got)
	}
}

func TestCompleteTaskAtMostOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ledger := service.NewLedger(db)
	rewards := service.NewRewardService(db, ledger, reward.StandardDefaults(), 100)
	u := createUser(t, db, "it-task-1")

	// Concurrent double submit: exactly one must win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = rewards.CompleteTask(ctx, u.ID, domain.TaskTypeApp, 9001)
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrTaskAlreadyCompleted):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Fatalf("expected exactly one success and one duplicate, got %d/%d", ok, dup)
	}

	// Fallback reward for an app task with no catalog row is 100.
	if got := currentBalance(t, db, u.ID, domain.BalancePoints); got != 100 {
		t.Fatalf("points = %d, want 100", got)
	}
}

func TestClaimQuestIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ledger := service.NewLedger(db)
	rewards := service.NewRewardService(db, ledger, reward.StandardDefaults(), 100)
	u := createUser(t, db, "it-quest-1")

	var questID int64
	err := db.QueryRow(ctx,
		`INSERT INTO quests (title, description, quest_type, target, reward, icon, is_active)
		 VALUES ('Complete a task', '', 'complete_tasks', 1, 250, '', true)
		 RETURNING id`).Scan(&questID)
	if err != nil {
		t.Fatalf("insert quest: %v", err)
	}

	// Below target first.
	_, err = rewards.ClaimQuest(ctx, u.ID, questID)
	if !errors.Is(err, service.ErrQuestNotCompleted) {
		t.Fatalf("expected ErrQuestNotCompleted, got %v", err)
	}
	var notDone *service.QuestNotCompletedError
	if !errors.As(err, &notDone) || notDone.Target != 1 {
		t.Fatalf("expected progress detail in error, got %v", err)
	}

	if _, err := rewards.CompleteTask(ctx, u.ID, domain.TaskTypeLink, 9002); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	res, err := rewards.ClaimQuest(ctx, u.ID, questID)
	if err != nil {
		t.Fatalf("claim quest: %v", err)
	}
	if res.Reward != 250 {
		t.Fatalf("quest reward = %d, want 250", res.Reward)
	}

	_, err = rewards.ClaimQuest(ctx, u.ID, questID)
	if !errors.Is(err, service.ErrQuestAlreadyClaimed) {
		t.Fatalf("expected ErrQuestAlreadyClaimed, got %v", err)
	}

	// 50 (link task fallback) + 250 (quest), credited exactly once.
	if got := currentBalance(t, db, u.ID, domain.BalancePoints); got != 300 {
		t.Fatalf("points = %d, want 300", got)
	}
	if got := journalSum(t, db, u.ID, domain.BalancePoints); got != 300 {
		t.Fatalf("journal sum = %d, want 300", got)
	}
}

func TestWithdrawalLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ledger := service.NewLedger(db)
	wallet := service.NewWalletService(db, ledger)
	u := createUser(t, db, "it-withdraw-1")

	if _, err := ledger.Credit(ctx, u.ID, domain.BalanceUSD, 1000, domain.TxDepositCredit, nil); err != nil {
		t.Fatalf("fund user: %v", err)
	}

	// Creation reserves the amount immediately.
	w := &domain.WithdrawalRequest{UserID: u.ID, Amount: 600, Currency: domain.CurrencyUSD, Method: "bank"}
	if err := wallet.CreateWithdrawal(ctx, w); err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}
	if w.Reference == "" {
		t.Fatalf("expected a reference on the request")
	}
	if got := currentBalance(t, db, u.ID, domain.BalanceUSD); got != 400 {
		t.Fatalf("balance after hold = %d, want 400", got)
	}

	// A second request beyond the remaining balance fails cleanly.
	over := &domain.WithdrawalRequest{UserID: u.ID, Amount: 500, Currency: domain.CurrencyUSD, Method: "bank"}
	if err := wallet.CreateWithdrawal(ctx, over); !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := currentBalance(t, db, u.ID, domain.BalanceUSD); got != 400 {
		t.Fatalf("balance after failed request = %d, want 400", got)
	}

	// Rejection refunds once, then the request is terminal.
	if err := wallet.RejectWithdrawal(ctx, w.ID); err != nil {
		t.Fatalf("reject withdrawal: %v", err)
	}
	if got := currentBalance(t, db, u.ID, domain.BalanceUSD); got != 1000 {
		t.Fatalf("balance after refund = %d, want 1000", got)
	}
	if err := wallet.RejectWithdrawal(ctx, w.ID); !errors.Is(err, service.ErrRequestProcessed) {
		t.Fatalf("expected ErrRequestProcessed, got %v", err)
	}
	if err := wallet.ApproveWithdrawal(ctx, w.ID); !errors.Is(err, service.ErrRequestProcessed) {
		t.Fatalf("expected ErrRequestProcessed, got %v", err)
	}
	if got := currentBalance(t, db, u.ID, domain.BalanceUSD); got != 1000 {
		t.Fatalf("balance after terminal retries = %d, want 1000", got)
	}

	// Approval of a fresh request leaves the reserved funds gone.
	w2 := &domain.WithdrawalRequest{UserID: u.ID, Amount: 300, Currency: domain.CurrencyUSD, Method: "bank"}
	if err := wallet.CreateWithdrawal(ctx, w2); err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}
	if err := wallet.ApproveWithdrawal(ctx, w2.ID); err != nil {
		t.Fatalf("approve withdrawal: %v", err)
	}
	if got := currentBalance(t, db, u.ID, domain.BalanceUSD); got != 700 {
		t.Fatalf("balance after approval = %d, want 700", got)
	}
	if got := journalSum(t, db, u.ID, domain.BalanceUSD); got != 700 {
		t.Fatalf("journal sum = %d, want 700", got)
	}
}

func TestExchangeConservation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ledger := service.NewLedger(db)
	exchange := service.NewExchangeService(db, ledger, reward.StandardDefaults())
	u := createUser(t, db, "it-exchange-1")

	if _, err := ledger.Credit(ctx, u.ID, domain.BalancePoints, 1000, domain.TxAdReward, nil); err != nil {
		t.Fatalf("fund user: %v", err)
	}

	_, err := exchange.ExchangePoints(ctx, u.ID, 100, domain.CurrencyUSD)
	if !errors.Is(err, service.ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum for 100 points, got %v", err)
	}

	// 500 points at the fallback rate 0.0001 is 5 cents.
	res, err := exchange.ExchangePoints(ctx, u.ID, 500, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if res.Received != 5 {
		t.Fatalf("received = %d, want 5", res.Received)
	}
	if res.NewPoints != 500 {
		t.Fatalf("new points = %d, want 500", res.NewPoints)
	}
	if got := currentBalance(t, db, u.ID, domain.BalanceUSD); got != 5 {
		t.Fatalf("usd balance = %d, want 5", got)
	}

	// Both sides of the swap are journaled in the same tx.
	if got := journalSum(t, db, u.ID, domain.BalancePoints); got != 500 {
		t.Fatalf("points journal sum = %d, want 500", got)
	}
	if got := journalSum(t, db, u.ID, domain.BalanceUSD); got != 5 {
		t.Fatalf("usd journal sum = %d, want 5", got)
	}
}

func TestExchangeToCoins(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ledger := service.NewLedger(db)
	exchange := service.NewExchangeService(db, ledger, reward.StandardDefaults())
	u := createUser(t, db, "it-coins-1")

	if _, err := ledger.Credit(ctx, u.ID, domain.BalancePoints, 300, domain.TxAdReward, nil); err != nil {
		t.Fatalf("fund user: %v", err)
	}

	res, err := exchange.ExchangeToCoins(ctx, u.ID, 200)
	if err != nil {
		t.Fatalf("exchange to coins: %v", err)
	}
	if res.Received != 200 || res.NewPoints != 100 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := currentBalance(t, db, u.ID, domain.BalanceCoins); got != 200 {
		t.Fatalf("coins = %d, want 200", got)
	}
}

func TestSubscribeInvestment(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ledger := service.NewLedger(db)
	investments := service.NewInvestmentService(db, ledger)
	u := createUser(t, db, "it-invest-1")

	var ownPkg, pointsPkg int64
	err := db.QueryRow(ctx,
		`INSERT INTO investment_packages (title, package_type, price, number_of_days, reward_per_task, reward_currency, ad_reward_percentage, is_active)
		 VALUES ('Own USD', 'own', 5000, 30, 200, 'usd', 10, true)
		 RETURNING id`).Scan(&ownPkg)
	if err != nil {
		t.Fatalf("insert package: %v", err)
	}
	err = db.QueryRow(ctx,
		`INSERT INTO investment_packages (title, package_type, price, number_of_days, reward_per_task, reward_currency, ad_reward_percentage, is_active)
		 VALUES ('Points', 'points', 1000, 30, 50, 'points', 10, true)
		 RETURNING id`).Scan(&pointsPkg)
	if err != nil {
		t.Fatalf("insert package: %v", err)
	}

	// Own-wallet package with an empty wallet: the deposit flow is the
	// signalled way out, not a plain insufficient balance.
	_, err = investments.Subscribe(ctx, u.ID, ownPkg)
	if !errors.Is(err, service.ErrDepositRequired) {
		t.Fatalf("expected ErrDepositRequired, got %v", err)
	}

	_, err = investments.Subscribe(ctx, u.ID, pointsPkg)
	if !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if _, err := ledger.Credit(ctx, u.ID, domain.BalancePoints, 1500, domain.TxAdReward, nil); err != nil {
		t.Fatalf("fund user: %v", err)
	}
	inv, err := investments.Subscribe(ctx, u.ID, pointsPkg)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !inv.IsActive {
		t.Fatalf("expected active subscription")
	}
	if got := currentBalance(t, db, u.ID, domain.BalancePoints); got != 500 {
		t.Fatalf("points after subscribe = %d, want 500", got)
	}

	// First daily task pays into the points account; a second claim the
	// same day is refused.
	earn, err := investments.CompleteDailyTask(ctx, u.ID, inv.ID)
	if err != nil {
		t.Fatalf("daily task: %v", err)
	}
	if earn.Reward != 50 {
		t.Fatalf("task reward = %d, want 50", earn.Reward)
	}
	_, err = investments.CompleteDailyTask(ctx, u.ID, inv.ID)
	if !errors.Is(err, service.ErrInvestmentTaskDone) {
		t.Fatalf("expected ErrInvestmentTaskDone, got %v", err)
	}
}

func TestSubscribeFiatPointsPackage(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ledger := service.NewLedger(db)
	investments := service.NewInvestmentService(db, ledger)
	u := createUser(t, db, "it-invest-2")

	var pkgID int64
	err := db.QueryRow(ctx,
		`INSERT INTO investment_packages (title, package_type, price, number_of_days, reward_per_task, reward_currency, ad_reward_percentage, is_active)
		 VALUES ('Earn USD', 'points', 2000, 30, 100, 'usd', 10, true)
		 RETURNING id`).Scan(&pkgID)
	if err != nil {
		t.Fatalf("insert package: %v", err)
	}

	// A full main wallet must not fund a usd earn package; only the
	// investment balance does.
	if _, err := ledger.Credit(ctx, u.ID, domain.BalanceUSD, 10000, domain.TxDepositCredit, nil); err != nil {
		t.Fatalf("fund main wallet: %v", err)
	}
	_, err = investments.Subscribe(ctx, u.ID, pkgID)
	if !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if _, err := ledger.Credit(ctx, u.ID, domain.BalanceInvestmentUSD, 2500, domain.TxDepositCredit, nil); err != nil {
		t.Fatalf("fund investment balance: %v", err)
	}
	inv, err := investments.Subscribe(ctx, u.ID, pkgID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !inv.IsActive {
		t.Fatalf("expected active subscription")
	}

	if got := currentBalance(t, db, u.ID, domain.BalanceInvestmentUSD); got != 500 {
		t.Fatalf("investment usd after subscribe = %d, want 500", got)
	}
	if got := currentBalance(t, db, u.ID, domain.BalanceUSD); got != 10000 {
		t.Fatalf("main usd after subscribe = %d, want 10000", got)
	}
	if got := journalSum(t, db, u.ID, domain.BalanceInvestmentUSD); got != 500 {
		t.Fatalf("investment usd journal sum = %d, want 500", got)
	}
}

func TestReferralIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ledger := service.NewLedger(db)
	referrals := service.NewReferralService(db, ledger)
	inviter := createUser(t, db, "it-ref-inviter")
	invited := createUser(t, db, "it-ref-invited")

	if err := referrals.Link(ctx, invited.ID, inviter.ReferralCode); err != nil {
		t.Fatalf("link: %v", err)
	}
	// Replays and stale codes are silent no-ops.
	if err := referrals.Link(ctx, invited.ID, inviter.ReferralCode); err != nil {
		t.Fatalf("duplicate link: %v", err)
	}
	if err := referrals.Link(ctx, invited.ID, "NOPE99"); err != nil {
		t.Fatalf("unknown code: %v", err)
	}

	if got := currentBalance(t, db, inviter.ID, domain.BalancePoints); got != service.ReferrerBonus {
		t.Fatalf("inviter points = %d, want %d", got, service.ReferrerBonus)
	}

	stats, err := referrals.Stats(ctx, inviter.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Count != 1 || stats.TotalEarned != service.ReferrerBonus {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
