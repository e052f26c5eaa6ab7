package service

import (
	"context"
	"time"

	"teleearn/internal/domain"
	"teleearn/internal/repository"
	"teleearn/internal/reward"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvestmentService runs the package subscription lifecycle and its
// daily earnings: one task per day, ten ad views per day, and the
// transfer of the segregated investment balance back to the main
// wallet. Expiry is detected lazily whenever a subscription is used.
type InvestmentService struct {
	db             *pgxpool.Pool
	ledger         *Ledger
	userRepo       *repository.UserRepository
	catalogRepo    *repository.CatalogRepository
	investmentRepo *repository.InvestmentRepository
}

func NewInvestmentService(db *pgxpool.Pool, ledger *Ledger) *InvestmentService {
	return &InvestmentService{
		db:             db,
		ledger:         ledger,
		userRepo:       repository.NewUserRepository(db),
		catalogRepo:    repository.NewCatalogRepository(db),
		investmentRepo: repository.NewInvestmentRepository(db),
	}
}

// Subscribe buys a package and creates the subscription in one
// transaction with the debit. Which account pays depends on the
// package: type=points debits the account named by the reward
// currency; type=own debits the main fiat wallet, and a shortfall
// there means the user must deposit first, a distinct outcome from a
// plain insufficient balance.
func (s *InvestmentService) Subscribe(ctx context.Context, userID, packageID int64) (*domain.UserInvestment, error) {
	pkg, err := s.catalogRepo.GetPackageByID(ctx, packageID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrPackageInactive
	}

	account, shortfallErr, err := subscriptionFunding(pkg)
	if err != nil {
		return nil, err
	}

	var inv *domain.UserInvestment
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		_, err := s.ledger.DebitTx(ctx, tx, userID, account, pkg.Price, domain.TxInvestmentBuy,
			map[string]interface{}{"package_id": packageID})
		if err != nil {
			if err == ErrInsufficientBalance {
				return shortfallErr
			}
			return err
		}

		now := time.Now()
		inv = &domain.UserInvestment{
			UserID:    userID,
			PackageID: packageID,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, pkg.NumberOfDays),
			IsActive:  true,
		}
		return s.investmentRepo.CreateTx(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}
	inv.Package = pkg
	return inv, nil
}

// subscriptionFunding resolves which account pays for a package and
// what a shortfall there means to the caller.
func subscriptionFunding(pkg *domain.InvestmentPackage) (domain.Balance, error, error) {
	switch pkg.Type {
	case domain.PackageOwn:
		account, ok := pkg.RewardCurrency.MainAccount()
		if !ok {
			return 0, nil, ErrInvalidCurrency
		}
		return account, ErrDepositRequired, nil
	case domain.PackagePoints:
		// Fiat-priced earn packages charge the segregated investment
		// balance, never the main wallet.
		account, ok := pkg.RewardCurrency.InvestmentAccount()
		if !ok {
			return 0, nil, ErrInvalidCurrency
		}
		return account, ErrInsufficientBalance, nil
	}
	return 0, nil, ErrPackageNotFound
}

// ListUserInvestments returns the user's subscriptions, flipping any
// that expired since the last read.
func (s *InvestmentService) ListUserInvestments(ctx context.Context, userID int64) ([]*domain.UserInvestment, error) {
	investments, err := s.investmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, inv := range investments {
		if inv.IsActive && inv.Expired(now) {
			inv.IsActive = false
			_, err := s.db.Exec(ctx,
				`UPDATE user_investments SET is_active = false WHERE id = $1`, inv.ID)
			if err != nil {
				return nil, err
			}
		}
	}
	return investments, nil
}

// InvestmentEarnResult is returned after a daily task or ad reward.
type InvestmentEarnResult struct {
	Reward     int64  `json:"reward"`
	Currency   string `json:"currency"`
	NewBalance int64  `json:"new_balance"`
	// RemainingAds only applies to ad rewards.
	RemainingAds int `json:"remaining_ads,omitempty"`
}

// CompleteDailyTask pays the package's reward once per calendar day.
// Fiat rewards go to the segregated investment balance.
func (s *InvestmentService) CompleteDailyTask(ctx context.Context, userID, investmentID int64) (*InvestmentEarnResult, error) {
	var result InvestmentEarnResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		inv, pkg, err := s.lockInvestment(ctx, tx, userID, investmentID)
		if err != nil {
			return err
		}

		now := time.Now()
		if inv.Expired(now) {
			_ = s.investmentRepo.DeactivateTx(ctx, tx, inv.ID)
			return ErrInvestmentExpired
		}
		if inv.TaskDoneToday(now) {
			return ErrInvestmentTaskDone
		}

		account, ok := pkg.RewardCurrency.InvestmentAccount()
		if !ok {
			return ErrInvalidCurrency
		}

		if err := s.investmentRepo.RecordTaskTx(ctx, tx, inv.ID, 1, now); err != nil {
			return err
		}
		newBalance, err := s.ledger.CreditTx(ctx, tx, userID, account, pkg.RewardPerTask, domain.TxInvestmentTask,
			map[string]interface{}{"investment_id": inv.ID})
		if err != nil {
			return err
		}

		result = InvestmentEarnResult{
			Reward:     pkg.RewardPerTask,
			Currency:   string(pkg.RewardCurrency),
			NewBalance: newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// WatchInvestmentAd pays a share of the package's task reward, at most
// ten times per calendar day per subscription.
func (s *InvestmentService) WatchInvestmentAd(ctx context.Context, userID, investmentID int64) (*InvestmentEarnResult, error) {
	var result InvestmentEarnResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		inv, pkg, err := s.lockInvestment(ctx, tx, userID, investmentID)
		if err != nil {
			return err
		}

		now := time.Now()
		decision := inv.CanWatchAd(now)
		if !decision.Allowed {
			if decision.Reason == domain.ReasonInvestmentExpired {
				_ = s.investmentRepo.DeactivateTx(ctx, tx, inv.ID)
				return ErrInvestmentExpired
			}
			return ErrInvestmentAdLimitReached
		}

		account, ok := pkg.RewardCurrency.InvestmentAccount()
		if !ok {
			return ErrInvalidCurrency
		}

		watched := inv.EffectiveAdsWatched(now) + 1
		if err := s.investmentRepo.RecordAdWatchTx(ctx, tx, inv.ID, watched, now); err != nil {
			return err
		}

		amount := reward.InvestmentAdShare(pkg)
		newBalance, err := s.ledger.CreditTx(ctx, tx, userID, account, amount, domain.TxInvestmentAd,
			map[string]interface{}{"investment_id": inv.ID})
		if err != nil {
			return err
		}

		result = InvestmentEarnResult{
			Reward:       amount,
			Currency:     string(pkg.RewardCurrency),
			NewBalance:   newBalance,
			RemainingAds: domain.InvestmentDailyAdLimit - watched,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TransferResult reports a completed investment-to-main move.
type TransferResult struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	NewMain   int64  `json:"new_main_balance"`
	NewInvest int64  `json:"new_investment_balance"`
}

// TransferToMain moves funds from the segregated investment balance to
// the main wallet of the same currency.
func (s *InvestmentService) TransferToMain(ctx context.Context, userID, amount int64, currency domain.RewardCurrency) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	mainAccount, ok := currency.MainAccount()
	if !ok {
		return nil, ErrInvalidCurrency
	}
	var investAccount domain.Balance
	switch currency {
	case domain.CurrencyUSD:
		investAccount = domain.BalanceInvestmentUSD
	case domain.CurrencyEGP:
		investAccount = domain.BalanceInvestmentEGP
	}

	var result TransferResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		meta := map[string]interface{}{"currency": string(currency)}
		newInvest, err := s.ledger.DebitTx(ctx, tx, userID, investAccount, amount, domain.TxInvestmentTransferOut, meta)
		if err != nil {
			return err
		}
		newMain, err := s.ledger.CreditTx(ctx, tx, userID, mainAccount, amount, domain.TxInvestmentTransferIn, meta)
		if err != nil {
			return err
		}

		result = TransferResult{
			Amount:    amount,
			Currency:  string(currency),
			NewMain:   newMain,
			NewInvest: newInvest,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// lockInvestment locks one subscription row, verifies ownership and
// joins the package in.
func (s *InvestmentService) lockInvestment(ctx context.Context, tx pgx.Tx, userID, investmentID int64) (*domain.UserInvestment, *domain.InvestmentPackage, error) {
	inv, err := s.investmentRepo.GetByIDForUpdate(ctx, tx, investmentID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil, ErrInvestmentNotFound
		}
		return nil, nil, err
	}
	if inv.UserID != userID {
		return nil, nil, ErrInvestmentNotFound
	}

	pkg, err := s.catalogRepo.GetPackageByID(ctx, inv.PackageID)
	if err != nil {
		return nil, nil, err
	}
	return inv, pkg, nil
}

func (s *InvestmentService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
