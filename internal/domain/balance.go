package domain

import "fmt"

// Balance identifies one of the six independent user accounts. Every
// ledger mutation targets exactly one of them.
type Balance int

const (
	BalancePoints Balance = iota
	BalanceCoins
	BalanceUSD
	BalanceEGP
	BalanceInvestmentUSD
	BalanceInvestmentEGP
)

// Column returns the users table column backing the account.
func (b Balance) Column() string {
	switch b {
	case BalancePoints:
		return "points"
	case BalanceCoins:
		return "coin_balance"
	case BalanceUSD:
		return "usd_balance"
	case BalanceEGP:
		return "egp_balance"
	case BalanceInvestmentUSD:
		return "investment_usd_balance"
	case BalanceInvestmentEGP:
		return "investment_egp_balance"
	}
	panic(fmt.Sprintf("unknown balance account %d", int(b)))
}

func (b Balance) String() string {
	switch b {
	case BalancePoints:
		return "points"
	case BalanceCoins:
		return "coins"
	case BalanceUSD:
		return "usd"
	case BalanceEGP:
		return "egp"
	case BalanceInvestmentUSD:
		return "investment_usd"
	case BalanceInvestmentEGP:
		return "investment_egp"
	}
	return "unknown"
}

// RewardCurrency is the currency tag carried by investment packages.
type RewardCurrency string

const (
	CurrencyPoints RewardCurrency = "points"
	CurrencyCoin   RewardCurrency = "coin"
	CurrencyUSD    RewardCurrency = "usd"
	CurrencyEGP    RewardCurrency = "egp"
)

// Valid reports whether the tag is one of the four known currencies.
func (c RewardCurrency) Valid() bool {
	switch c {
	case CurrencyPoints, CurrencyCoin, CurrencyUSD, CurrencyEGP:
		return true
	}
	return false
}

// InvestmentAccount maps a package reward currency to the account an
// investment reward is credited to. Fiat rewards from investments go
// to the segregated investment balances, never the main wallet.
func (c RewardCurrency) InvestmentAccount() (Balance, bool) {
	switch c {
	case CurrencyPoints:
		return BalancePoints, true
	case CurrencyCoin:
		return BalanceCoins, true
	case CurrencyUSD:
		return BalanceInvestmentUSD, true
	case CurrencyEGP:
		return BalanceInvestmentEGP, true
	}
	return 0, false
}

// MainAccount maps a fiat currency tag to the main wallet account.
// Only usd and egp have a main wallet.
func (c RewardCurrency) MainAccount() (Balance, bool) {
	switch c {
	case CurrencyUSD:
		return BalanceUSD, true
	case CurrencyEGP:
		return BalanceEGP, true
	}
	return 0, false
}
