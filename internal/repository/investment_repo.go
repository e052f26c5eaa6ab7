package repository

import (
	"context"
	"errors"
	"time"

	"teleearn/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvestmentRepository stores user subscriptions to investment
// packages, with their per-day task and ad counters.
type InvestmentRepository struct {
	db *pgxpool.Pool
}

func NewInvestmentRepository(db *pgxpool.Pool) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

const investmentColumns = `id, user_id, package_id, start_date, end_date, is_active,
	tasks_completed_today, last_task_date, ads_watched_today, last_ad_watch, created_at`

func scanInvestment(row pgx.Row) (*domain.UserInvestment, error) {
	var inv domain.UserInvestment
	err := row.Scan(&inv.ID, &inv.UserID, &inv.PackageID, &inv.StartDate, &inv.EndDate, &inv.IsActive,
		&inv.TasksCompletedToday, &inv.LastTaskDate, &inv.AdsWatchedToday, &inv.LastAdWatch, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateTx inserts a subscription inside an open transaction, in the
// same transaction as the purchase debit.
func (r *InvestmentRepository) CreateTx(ctx context.Context, tx pgx.Tx, inv *domain.UserInvestment) error {
	return tx.QueryRow(ctx,
		`INSERT INTO user_investments (user_id, package_id, start_date, end_date, is_active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, created_at`,
		inv.UserID, inv.PackageID, inv.StartDate, inv.EndDate,
	).Scan(&inv.ID, &inv.CreatedAt)
}

// GetByIDForUpdate locks one subscription row for the transaction.
func (r *InvestmentRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.UserInvestment, error) {
	return scanInvestment(tx.QueryRow(ctx,
		`SELECT `+investmentColumns+` FROM user_investments WHERE id = $1 FOR UPDATE`, id))
}

// ListByUser returns the user's subscriptions with packages joined in,
// newest first.
func (r *InvestmentRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.UserInvestment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT
			ui.id, ui.user_id, ui.package_id, ui.start_date, ui.end_date, ui.is_active,
			ui.tasks_completed_today, ui.last_task_date, ui.ads_watched_today, ui.last_ad_watch, ui.created_at,
			p.id, p.title, p.package_type, p.price, p.number_of_days,
			p.reward_per_task, p.reward_currency, p.ad_reward_percentage, p.is_active, p.created_at
		 FROM user_investments ui
		 JOIN investment_packages p ON ui.package_id = p.id
		 WHERE ui.user_id = $1
		 ORDER BY ui.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.UserInvestment
	for rows.Next() {
		var inv domain.UserInvestment
		var p domain.InvestmentPackage
		err := rows.Scan(
			&inv.ID, &inv.UserID, &inv.PackageID, &inv.StartDate, &inv.EndDate, &inv.IsActive,
			&inv.TasksCompletedToday, &inv.LastTaskDate, &inv.AdsWatchedToday, &inv.LastAdWatch, &inv.CreatedAt,
			&p.ID, &p.Title, &p.Type, &p.Price, &p.NumberOfDays,
			&p.RewardPerTask, &p.RewardCurrency, &p.AdRewardPercentage, &p.IsActive, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		inv.Package = &p
		result = append(result, &inv)
	}
	return result, rows.Err()
}

// RecordAdWatchTx advances the date-bucketed ad counter. The counter
// restarts at 1 when the stored bucket is from an earlier day.
func (r *InvestmentRepository) RecordAdWatchTx(ctx context.Context, tx pgx.Tx, id int64, count int, now time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE user_investments
		 SET ads_watched_today = $2, last_ad_watch = $3
		 WHERE id = $1`,
		id, count, now,
	)
	return err
}

// RecordTaskTx stamps today's single-task claim.
func (r *InvestmentRepository) RecordTaskTx(ctx context.Context, tx pgx.Tx, id int64, count int, now time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE user_investments
		 SET tasks_completed_today = $2, last_task_date = $3
		 WHERE id = $1`,
		id, count, now,
	)
	return err
}

// DeactivateTx marks an expired subscription inactive. Expiry is
// detected lazily whenever a subscription is touched.
func (r *InvestmentRepository) DeactivateTx(ctx context.Context, tx pgx.Tx, id int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE user_investments SET is_active = false WHERE id = $1`, id)
	return err
}
