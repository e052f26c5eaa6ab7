package service

import (
	"context"

	"teleearn/internal/domain"
	"teleearn/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferrerBonus is paid to the inviter when a referred user registers.
const ReferrerBonus = 1000

// ReferralService links referred users to their inviter and pays the
// one-time bonus. The unique referred_id index makes the whole flow
// idempotent: only the insert that creates the link pays.
type ReferralService struct {
	db           *pgxpool.Pool
	ledger       *Ledger
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
}

func NewReferralService(db *pgxpool.Pool, ledger *Ledger) *ReferralService {
	return &ReferralService{
		db:           db,
		ledger:       ledger,
		userRepo:     repository.NewUserRepository(db),
		referralRepo: repository.NewReferralRepository(db),
	}
}

// Link credits the owner of code for inviting referredID. A duplicate
// link or an unknown code is a silent no-op: registration must not
// fail because a referral payload was stale.
func (s *ReferralService) Link(ctx context.Context, referredID int64, code string) error {
	referrer, err := s.userRepo.GetByReferralCode(ctx, code)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil
		}
		return err
	}
	if referrer.ID == referredID {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockUser(ctx, tx, referrer.ID); err != nil {
		return err
	}

	created, err := s.referralRepo.CreateTx(ctx, tx, referrer.ID, referredID, ReferrerBonus)
	if err != nil {
		return err
	}
	if created {
		_, err = s.ledger.CreditTx(ctx, tx, referrer.ID, domain.BalancePoints, ReferrerBonus, domain.TxReferralBonus,
			map[string]interface{}{"referred_id": referredID})
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ReferralStats is the inviter's summary.
type ReferralStats struct {
	Code        string             `json:"code"`
	Count       int                `json:"count"`
	TotalEarned int64              `json:"total_earned"`
	Referrals   []*domain.Referral `json:"referrals"`
}

// Stats returns the user's referral code, invite count and earnings.
func (s *ReferralService) Stats(ctx context.Context, userID int64) (*ReferralStats, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	referrals, err := s.referralRepo.ListByReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &ReferralStats{Code: u.ReferralCode, Count: len(referrals), Referrals: referrals}
	for _, ref := range referrals {
		stats.TotalEarned += ref.PointsEarned
	}
	return stats, nil
}
