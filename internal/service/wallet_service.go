package service

import (
	"context"

	"teleearn/internal/domain"
	"teleearn/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WalletService runs the withdrawal and deposit request lifecycles.
// Withdrawals reserve funds: the debit happens when the request is
// created, the refund on rejection, and approval touches no balance.
// Deposits are the mirror image: creation moves nothing and the credit
// happens on approval.
type WalletService struct {
	db             *pgxpool.Pool
	ledger         *Ledger
	withdrawalRepo *repository.WithdrawalRepository
	depositRepo    *repository.DepositRepository
}

func NewWalletService(db *pgxpool.Pool, ledger *Ledger) *WalletService {
	return &WalletService{
		db:             db,
		ledger:         ledger,
		withdrawalRepo: repository.NewWithdrawalRepository(db),
		depositRepo:    repository.NewDepositRepository(db),
	}
}

// CreateWithdrawal debits the main wallet and records the pending
// request in one transaction. A shortfall rejects the request without
// creating it.
func (s *WalletService) CreateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error {
	if w.Amount <= 0 {
		return ErrInvalidAmount
	}
	account, ok := w.Currency.MainAccount()
	if !ok {
		return ErrInvalidCurrency
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, w.UserID); err != nil {
			return err
		}

		if err := s.withdrawalRepo.CreateTx(ctx, tx, w); err != nil {
			return err
		}
		_, err := s.ledger.DebitTx(ctx, tx, w.UserID, account, w.Amount, domain.TxWithdrawalHold,
			map[string]interface{}{"reference": w.Reference})
		return err
	})
}

// ApproveWithdrawal finalizes a pending request. The funds left the
// wallet at creation, so approval only flips the status.
func (s *WalletService) ApproveWithdrawal(ctx context.Context, requestID int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := s.withdrawalRepo.GetByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			if err == repository.ErrNotFound {
				return ErrRequestNotFound
			}
			return err
		}

		moved, err := s.withdrawalRepo.SetStatusTx(ctx, tx, requestID, domain.RequestApproved)
		if err != nil {
			return err
		}
		if !moved {
			return ErrRequestProcessed
		}
		return nil
	})
}

// RejectWithdrawal refunds the held amount and flips the status, in
// one transaction. The guarded status transition makes the refund
// happen at most once.
func (s *WalletService) RejectWithdrawal(ctx context.Context, requestID int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		w, err := s.withdrawalRepo.GetByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			if err == repository.ErrNotFound {
				return ErrRequestNotFound
			}
			return err
		}

		moved, err := s.withdrawalRepo.SetStatusTx(ctx, tx, requestID, domain.RequestRejected)
		if err != nil {
			return err
		}
		if !moved {
			return ErrRequestProcessed
		}

		if err := lockUser(ctx, tx, w.UserID); err != nil {
			return err
		}
		account, _ := w.Currency.MainAccount()
		_, err = s.ledger.CreditTx(ctx, tx, w.UserID, account, w.Amount, domain.TxWithdrawalRefund,
			map[string]interface{}{"reference": w.Reference})
		return err
	})
}

// CreateDeposit records a pending deposit request. No balance changes
// until an admin approves it.
func (s *WalletService) CreateDeposit(ctx context.Context, d *domain.DepositRequest) error {
	if d.Amount <= 0 {
		return ErrInvalidAmount
	}
	if _, ok := d.DepositType.Account(d.Currency); !ok {
		return ErrInvalidCurrency
	}
	return s.depositRepo.Create(ctx, d)
}

// ApproveDeposit credits the account selected by (deposit type,
// currency) and flips the status, in one transaction.
func (s *WalletService) ApproveDeposit(ctx context.Context, requestID int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		d, err := s.depositRepo.GetByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			if err == repository.ErrNotFound {
				return ErrRequestNotFound
			}
			return err
		}

		moved, err := s.depositRepo.SetStatusTx(ctx, tx, requestID, domain.RequestApproved)
		if err != nil {
			return err
		}
		if !moved {
			return ErrRequestProcessed
		}

		account, ok := d.DepositType.Account(d.Currency)
		if !ok {
			return ErrInvalidCurrency
		}
		if err := lockUser(ctx, tx, d.UserID); err != nil {
			return err
		}
		_, err = s.ledger.CreditTx(ctx, tx, d.UserID, account, d.Amount, domain.TxDepositCredit,
			map[string]interface{}{"reference": d.Reference})
		return err
	})
}

// RejectDeposit flips the status. Nothing was credited, so nothing is
// reversed.
func (s *WalletService) RejectDeposit(ctx context.Context, requestID int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := s.depositRepo.GetByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			if err == repository.ErrNotFound {
				return ErrRequestNotFound
			}
			return err
		}

		moved, err := s.depositRepo.SetStatusTx(ctx, tx, requestID, domain.RequestRejected)
		if err != nil {
			return err
		}
		if !moved {
			return ErrRequestProcessed
		}
		return nil
	})
}

// ListWithdrawals returns the user's withdrawal history.
func (s *WalletService) ListWithdrawals(ctx context.Context, userID int64) ([]*domain.WithdrawalRequest, error) {
	return s.withdrawalRepo.ListByUser(ctx, userID)
}

// ListDeposits returns the user's deposit history.
func (s *WalletService) ListDeposits(ctx context.Context, userID int64) ([]*domain.DepositRequest, error) {
	return s.depositRepo.ListByUser(ctx, userID)
}

// ListPendingWithdrawals returns the admin review queue.
func (s *WalletService) ListPendingWithdrawals(ctx context.Context) ([]*domain.WithdrawalRequest, error) {
	return s.withdrawalRepo.ListPending(ctx)
}

// ListPendingDeposits returns the admin review queue.
func (s *WalletService) ListPendingDeposits(ctx context.Context) ([]*domain.DepositRequest, error) {
	return s.depositRepo.ListPending(ctx)
}

func (s *WalletService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
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
