package repository

import (
	"context"
	"crypto/rand"
	"errors"

	"teleearn/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

const userColumns = `id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	points, coin_balance, usd_balance, egp_balance, investment_usd_balance, investment_egp_balance,
	ads_watched_today, last_ad_watch, ad_limit_reset_time,
	last_bonus_claim, last_daily_claim_date, daily_streak,
	referral_code, COALESCE(referred_by_code, ''), referred_by_id, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
		&u.Points, &u.CoinBalance, &u.USDBalance, &u.EGPBalance,
		&u.InvestmentUSDBalance, &u.InvestmentEGPBalance,
		&u.AdsWatchedToday, &u.LastAdWatch, &u.AdLimitResetTime,
		&u.LastBonusClaim, &u.LastDailyClaimDate, &u.DailyStreak,
		&u.ReferralCode, &u.ReferredByCode, &u.ReferredByID, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID))
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code))
}

// GetForUpdate locks the user row for the duration of the transaction.
// Per-user serialization of check-then-mutate sequences hangs off this
// lock: two racing requests for the same user queue up here.
func (r *UserRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error) {
	return scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

// Create inserts a new user with a fresh unique referral code.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	for attempt := 0; attempt < 5; attempt++ {
		code := GenerateReferralCode()
		err := r.db.QueryRow(ctx,
			`INSERT INTO users (telegram_id, username, first_name, last_name, points, referral_code, referred_by_code, referred_by_id)
			 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
			 ON CONFLICT (referral_code) DO NOTHING
			 RETURNING id, referral_code, created_at`,
			u.TelegramID, u.Username, u.FirstName, u.LastName, u.Points,
			code, u.ReferredByCode, u.ReferredByID,
		).Scan(&u.ID, &u.ReferralCode, &u.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue // referral code collision, retry with a new one
		}
		return err
	}
	return errors.New("could not allocate a unique referral code")
}

const referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferralCode returns a 6-character alphanumeric code.
// Bytes outside the largest multiple of the alphabet size are
// rejected, so every character is equally likely.
func GenerateReferralCode() string {
	const limit = 256 - 256%len(referralCodeAlphabet)

	code := make([]byte, 0, 6)
	buf := make([]byte, 16)
	for len(code) < 6 {
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, referralCodeAlphabet[int(b)%len(referralCodeAlphabet)])
			if len(code) == 6 {
				break
			}
		}
	}
	return string(code)
}
