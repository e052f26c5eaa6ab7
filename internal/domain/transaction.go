package domain

import "time"

// Transaction is one journal row. Every balance mutation writes one in
// the same database transaction, so the journal and the balances can
// never drift.
type Transaction struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Type      string                 `db:"type" json:"type"`
	Account   string                 `db:"account" json:"account"`
	Amount    int64                  `db:"amount" json:"amount"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Journal transaction types.
const (
	TxAdReward              = "ad_reward"
	TxTaskReward            = "task_reward"
	TxQuestReward           = "quest_reward"
	TxDailyBonus            = "daily_bonus"
	TxDailyStreak           = "daily_streak"
	TxReferralBonus         = "referral_bonus"
	TxWelcomeBonus          = "welcome_bonus"
	TxExchangeOut           = "exchange_out"
	TxExchangeIn            = "exchange_in"
	TxInvestmentBuy         = "investment_buy"
	TxInvestmentTask        = "investment_task"
	TxInvestmentAd          = "investment_ad"
	TxInvestmentTransferOut = "investment_transfer_out"
	TxInvestmentTransferIn  = "investment_transfer_in"
	TxWithdrawalHold        = "withdrawal_hold"
	TxWithdrawalRefund      = "withdrawal_refund"
	TxDepositCredit         = "deposit_credit"
)
