package repository

import (
	"context"
	"errors"

	"teleearn/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DepositRepository stores deposit requests. Unlike withdrawals a
// deposit moves no money at creation; the credit happens on approval.
type DepositRepository struct {
	db *pgxpool.Pool
}

func NewDepositRepository(db *pgxpool.Pool) *DepositRepository {
	return &DepositRepository{db: db}
}

const depositColumns = `id, user_id, reference, amount, currency, method, deposit_type,
	COALESCE(account_details, ''), COALESCE(transaction_proof, ''), status, created_at`

func scanDeposit(row pgx.Row) (*domain.DepositRequest, error) {
	var d domain.DepositRequest
	err := row.Scan(&d.ID, &d.UserID, &d.Reference, &d.Amount, &d.Currency, &d.Method, &d.DepositType,
		&d.AccountDetails, &d.TransactionProof, &d.Status, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a pending deposit. No transaction needed: creation has
// no balance side effects.
func (r *DepositRepository) Create(ctx context.Context, d *domain.DepositRequest) error {
	d.Reference = uuid.NewString()
	d.Status = domain.RequestPending
	return r.db.QueryRow(ctx,
		`INSERT INTO deposit_requests (user_id, reference, amount, currency, method, deposit_type, account_details, transaction_proof, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		 RETURNING id, created_at`,
		d.UserID, d.Reference, d.Amount, d.Currency, d.Method, d.DepositType, d.AccountDetails, d.TransactionProof,
	).Scan(&d.ID, &d.CreatedAt)
}

// GetByIDForUpdate locks one request row for the transaction.
func (r *DepositRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.DepositRequest, error) {
	return scanDeposit(tx.QueryRow(ctx,
		`SELECT `+depositColumns+` FROM deposit_requests WHERE id = $1 FOR UPDATE`, id))
}

// SetStatusTx moves a pending request to its final status. Returns
// false when the request was no longer pending.
func (r *DepositRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, id int64, status domain.RequestStatus) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE deposit_requests
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
func (r *DepositRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.DepositRequest, error) {
	return r.list(ctx,
		`SELECT `+depositColumns+` FROM deposit_requests
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListPending returns all undecided requests, oldest first.
func (r *DepositRepository) ListPending(ctx context.Context) ([]*domain.DepositRequest, error) {
	return r.list(ctx,
		`SELECT `+depositColumns+` FROM deposit_requests
		 WHERE status = 'pending' ORDER BY created_at`)
}

func (r *DepositRepository) list(ctx context.Context, query string, args ...any) ([]*domain.DepositRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.DepositRequest
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
