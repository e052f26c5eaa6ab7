package service

import (
	"context"
	"errors"
	"fmt"

	"teleearn/internal/domain"
	"teleearn/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger is the only code in the system that mutates user balances.
// Every mutation targets one named account, is guarded against going
// negative, and appends a journal row in the same database
// transaction. Keeping all writes behind these two methods is what
// makes "journal sum equals stored balance" hold.
type Ledger struct {
	db              *pgxpool.Pool
	transactionRepo *repository.TransactionRepository
}

func NewLedger(db *pgxpool.Pool) *Ledger {
	return &Ledger{
		db:              db,
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

// CreditTx adds amount to one account inside an open transaction and
// journals it. The caller holds the user row lock.
func (l *Ledger) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, account domain.Balance, amount int64, txType string, meta map[string]interface{}) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	col := account.Column()
	var newBalance int64
	err := tx.QueryRow(ctx,
		fmt.Sprintf(`UPDATE users SET %s = %s + $1 WHERE id = $2 RETURNING %s`, col, col, col),
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	return newBalance, l.journal(ctx, tx, userID, account, amount, txType, meta)
}

// DebitTx removes amount from one account inside an open transaction
// and journals it. The conditional update is the overdraft guard: when
// the balance cannot cover the amount no row matches and
// ErrInsufficientBalance comes back.
func (l *Ledger) DebitTx(ctx context.Context, tx pgx.Tx, userID int64, account domain.Balance, amount int64, txType string, meta map[string]interface{}) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	col := account.Column()
	var newBalance int64
	err := tx.QueryRow(ctx,
		fmt.Sprintf(`UPDATE users SET %s = %s - $1 WHERE id = $2 AND %s >= $1 RETURNING %s`, col, col, col, col),
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInsufficientBalance
		}
		return 0, err
	}

	return newBalance, l.journal(ctx, tx, userID, account, -amount, txType, meta)
}

func (l *Ledger) journal(ctx context.Context, tx pgx.Tx, userID int64, account domain.Balance, amount int64, txType string, meta map[string]interface{}) error {
	return l.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID:  userID,
		Type:    txType,
		Account: account.String(),
		Amount:  amount,
		Meta:    meta,
	})
}

// Credit opens its own transaction for callers with no larger unit of
// work, locks the user row and credits the account.
func (l *Ledger) Credit(ctx context.Context, userID int64, account domain.Balance, amount int64, txType string, meta map[string]interface{}) (int64, error) {
	var newBalance int64
	err := l.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}
		var err error
		newBalance, err = l.CreditTx(ctx, tx, userID, account, amount, txType, meta)
		return err
	})
	return newBalance, err
}

// Debit is the standalone counterpart of Credit.
func (l *Ledger) Debit(ctx context.Context, userID int64, account domain.Balance, amount int64, txType string, meta map[string]interface{}) (int64, error) {
	var newBalance int64
	err := l.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}
		var err error
		newBalance, err = l.DebitTx(ctx, tx, userID, account, amount, txType, meta)
		return err
	})
	return newBalance, err
}

func (l *Ledger) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockUser takes the per-user row lock that serializes all
// check-then-mutate sequences for a user.
func lockUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}
