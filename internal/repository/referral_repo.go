package repository

import (
	"context"

	"teleearn/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferralRepository stores who-invited-whom links. The unique index on
// referred_id means a user can be credited to at most one referrer, and
// the insert that creates the row is the only event that pays the bonus.
type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CreateTx inserts the referral link inside an open transaction.
// Returns false when the referred user is already linked to someone.
func (r *ReferralRepository) CreateTx(ctx context.Context, tx pgx.Tx, referrerID, referredID, pointsEarned int64) (bool, error) {
	tag, err := tx.Exec(ctx,
		`INSERT INTO referrals (referrer_id, referred_id, points_earned)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (referred_id) DO NOTHING`,
		referrerID, referredID, pointsEarned,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CountByReferrer returns how many users this referrer has invited.
// Quest progress for invite_friends reads this.
func (r *ReferralRepository) CountByReferrer(ctx context.Context, referrerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM referrals WHERE referrer_id = $1`,
		referrerID,
	).Scan(&n)
	return n, err
}

// ListByReferrer returns the referrer's invites, newest first.
func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID int64) ([]*domain.Referral, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, referrer_id, referred_id, points_earned, created_at
		 FROM referrals
		 WHERE referrer_id = $1
		 ORDER BY created_at DESC`,
		referrerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Referral
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.PointsEarned, &ref.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &ref)
	}
	return result, rows.Err()
}
