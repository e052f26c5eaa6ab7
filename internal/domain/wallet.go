package domain

import "time"

// RequestStatus is the lifecycle of withdrawal and deposit requests.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// WithdrawalRequest reserves funds at creation time: the amount is
// debited from the main wallet immediately, credited back on rejection
// and left alone on approval.
type WithdrawalRequest struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	Reference      string         `db:"reference" json:"reference"`
	Amount         int64          `db:"amount" json:"amount"`
	Currency       RewardCurrency `db:"currency" json:"currency"`
	Method         string         `db:"method" json:"method"`
	AccountDetails string         `db:"account_details" json:"account_details,omitempty"`
	Status         RequestStatus  `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// DepositType selects which wallet an approved deposit credits.
type DepositType string

const (
	DepositMain       DepositType = "main"
	DepositInvestment DepositType = "investment"
)

// Account resolves the balance credited on approval.
func (d DepositType) Account(c RewardCurrency) (Balance, bool) {
	switch d {
	case DepositMain:
		return c.MainAccount()
	case DepositInvestment:
		switch c {
		case CurrencyUSD:
			return BalanceInvestmentUSD, true
		case CurrencyEGP:
			return BalanceInvestmentEGP, true
		}
	}
	return 0, false
}

// DepositRequest moves no money at creation; the credit happens only on
// admin approval, to the account named by (deposit type, currency).
type DepositRequest struct {
	ID               int64          `db:"id" json:"id"`
	UserID           int64          `db:"user_id" json:"user_id"`
	Reference        string         `db:"reference" json:"reference"`
	Amount           int64          `db:"amount" json:"amount"`
	Currency         RewardCurrency `db:"currency" json:"currency"`
	Method           string         `db:"method" json:"method"`
	DepositType      DepositType    `db:"deposit_type" json:"deposit_type"`
	AccountDetails   string         `db:"account_details" json:"account_details,omitempty"`
	TransactionProof string         `db:"transaction_proof" json:"transaction_proof,omitempty"`
	Status           RequestStatus  `db:"status" json:"status"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}
