package service

import (
	"context"
	"strconv"

	"teleearn/internal/domain"
	"teleearn/internal/repository"
	"teleearn/internal/reward"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MinExchangePoints is the smallest points amount convertible to fiat.
const MinExchangePoints = 500

// ExchangeService converts points into fiat minor units or coins.
// Debit and credit always land in one transaction, so points never
// vanish without the counterpart appearing.
type ExchangeService struct {
	db          *pgxpool.Pool
	ledger      *Ledger
	defaults    reward.Defaults
	userRepo    *repository.UserRepository
	catalogRepo *repository.CatalogRepository
}

func NewExchangeService(db *pgxpool.Pool, ledger *Ledger, defaults reward.Defaults) *ExchangeService {
	return &ExchangeService{
		db:          db,
		ledger:      ledger,
		defaults:    defaults,
		userRepo:    repository.NewUserRepository(db),
		catalogRepo: repository.NewCatalogRepository(db),
	}
}

// ExchangeResult reports both sides of a completed conversion.
type ExchangeResult struct {
	PointsSpent int64  `json:"points_spent"`
	Received    int64  `json:"received"`
	Currency    string `json:"currency"`
	NewPoints   int64  `json:"new_points"`
	NewBalance  int64  `json:"new_balance"`
}

// ExchangePoints converts points into usd or egp minor units at the
// active rate, falling back to the built-in rates when no active rate
// row exists or its value cannot be parsed.
func (s *ExchangeService) ExchangePoints(ctx context.Context, userID, points int64, currency domain.RewardCurrency) (*ExchangeResult, error) {
	if points <= 0 {
		return nil, ErrInvalidAmount
	}
	if points < MinExchangePoints {
		return nil, ErrBelowMinimum
	}
	account, ok := currency.MainAccount()
	if !ok {
		return nil, ErrInvalidCurrency
	}

	rate, err := s.catalogRepo.GetActiveRate(ctx, string(currency))
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}
	amount, ok := reward.ExchangeQuote(points, currency, rate, s.defaults)
	if !ok {
		return nil, ErrInvalidCurrency
	}
	if amount <= 0 {
		return nil, ErrBelowMinimum
	}

	var result ExchangeResult
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		meta := map[string]interface{}{"currency": string(currency), "points": points, "amount": amount}
		newPoints, err := s.ledger.DebitTx(ctx, tx, userID, domain.BalancePoints, points, domain.TxExchangeOut, meta)
		if err != nil {
			return err
		}
		newBalance, err := s.ledger.CreditTx(ctx, tx, userID, account, amount, domain.TxExchangeIn, meta)
		if err != nil {
			return err
		}

		result = ExchangeResult{
			PointsSpent: points,
			Received:    amount,
			Currency:    string(currency),
			NewPoints:   newPoints,
			NewBalance:  newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ExchangeToCoins converts points into coins one to one.
func (s *ExchangeService) ExchangeToCoins(ctx context.Context, userID, points int64) (*ExchangeResult, error) {
	if points <= 0 {
		return nil, ErrInvalidAmount
	}

	var result ExchangeResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		meta := map[string]interface{}{"points": points}
		newPoints, err := s.ledger.DebitTx(ctx, tx, userID, domain.BalancePoints, points, domain.TxExchangeOut, meta)
		if err != nil {
			return err
		}
		newCoins, err := s.ledger.CreditTx(ctx, tx, userID, domain.BalanceCoins, points, domain.TxExchangeIn, meta)
		if err != nil {
			return err
		}

		result = ExchangeResult{
			PointsSpent: points,
			Received:    points,
			Currency:    "coin",
			NewPoints:   newPoints,
			NewBalance:  newCoins,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRates returns the effective points->fiat rates, built-in defaults
// substituted where no active row exists.
func (s *ExchangeService) GetRates(ctx context.Context) (map[string]string, error) {
	result := map[string]string{
		"usd": strconv.FormatFloat(s.defaults.USDRate, 'f', -1, 64),
		"egp": strconv.FormatFloat(s.defaults.EGPRate, 'f', -1, 64),
	}
	for _, currency := range []string{"usd", "egp"} {
		rate, err := s.catalogRepo.GetActiveRate(ctx, currency)
		if err == repository.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[currency] = rate.Rate
	}
	return result, nil
}

func (s *ExchangeService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
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
