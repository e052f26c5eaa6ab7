package service

import (
	"testing"

	"teleearn/internal/domain"
)

func TestSubscriptionFunding(t *testing.T) {
	cases := []struct {
		name        string
		pkgType     domain.PackageType
		currency    domain.RewardCurrency
		wantAccount domain.Balance
		wantShort   error
		wantErr     error
	}{
		{"own usd", domain.PackageOwn, domain.CurrencyUSD, domain.BalanceUSD, ErrDepositRequired, nil},
		{"own egp", domain.PackageOwn, domain.CurrencyEGP, domain.BalanceEGP, ErrDepositRequired, nil},
		{"own points has no main wallet", domain.PackageOwn, domain.CurrencyPoints, 0, nil, ErrInvalidCurrency},
		{"points points", domain.PackagePoints, domain.CurrencyPoints, domain.BalancePoints, ErrInsufficientBalance, nil},
		{"points coin", domain.PackagePoints, domain.CurrencyCoin, domain.BalanceCoins, ErrInsufficientBalance, nil},
		{"points usd charges investment balance", domain.PackagePoints, domain.CurrencyUSD, domain.BalanceInvestmentUSD, ErrInsufficientBalance, nil},
		{"points egp charges investment balance", domain.PackagePoints, domain.CurrencyEGP, domain.BalanceInvestmentEGP, ErrInsufficientBalance, nil},
		{"unknown type", domain.PackageType("bogus"), domain.CurrencyUSD, 0, nil, ErrPackageNotFound},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pkg := &domain.InvestmentPackage{Type: c.pkgType, RewardCurrency: c.currency}
			account, short, err := subscriptionFunding(pkg)
			if err != c.wantErr {
				t.Fatalf("err = %v, want %v", err, c.wantErr)
			}
			if err != nil {
				return
			}
			if account != c.wantAccount {
				t.Errorf("account = %q, want %q", account.Column(), c.wantAccount.Column())
			}
			if short != c.wantShort {
				t.Errorf("shortfall error = %v, want %v", short, c.wantShort)
			}
		})
	}
}
