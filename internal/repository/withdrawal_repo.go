package repository

import (
	"context"
	"errors"

	"teleearn/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithdrawalRepository stores withdrawal requests. Status moves
// pending -> approved or pending -> rejected exactly once; the guarded
// transition methods return false when the request was already decided.
type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

const withdrawalColumns = `id, user_id, reference, amount, currency, method,
	COALESCE(account_details, ''), status, created_at`

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	err := row.Scan(&w.ID, &w.UserID, &w.Reference, &w.Amount, &w.Currency, &w.Method,
		&w.AccountDetails, &w.Status, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateTx inserts a pending request inside an open transaction, in the
// same transaction as the funds hold.
func (r *WithdrawalRepository) CreateTx(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	w.Reference = uuid.NewString()
	w.Status = domain.RequestPending
	return tx.QueryRow(ctx,
		`INSERT INTO withdrawal_requests (user_id, reference, amount, currency, method, account_details, status)
		 VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		 RETURNING id, created_at`,
		w.UserID, w.Reference, w.Amount, w.Currency, w.Method, w.AccountDetails,
	).Scan(&w.ID, &w.CreatedAt)
}

// GetByIDForUpdate locks one request row for the transaction.
func (r *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.WithdrawalRequest, error) {
	return scanWithdrawal(tx.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id))
}

// SetStatusTx moves a pending request to its final status. Returns
// false when the request was no longer pending.
func (r *WithdrawalRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, id int64, status domain.RequestStatus) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE withdrawal_requests
		 SET status = $2, decided_at = NOW()
		 WHERE id = $1 AND status = 'pending'`,
		id, status,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser returns the user's requests, newest first.
func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.WithdrawalRequest, error) {
	return r.list(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListPending returns all undecided requests, oldest first.
func (r *WithdrawalRepository) ListPending(ctx context.Context) ([]*domain.WithdrawalRequest, error) {
	return r.list(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests
		 WHERE status = 'pending' ORDER BY created_at`)
}

func (r *WithdrawalRepository) list(ctx context.Context, query string, args ...any) ([]*domain.WithdrawalRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
