package reward

import (
	"testing"

	"teleearn/internal/domain"
)

func TestTaskRewardFallbacks(t *testing.T) {
	d := StandardDefaults()

	task := &domain.Task{Reward: 750}
	if got := TaskReward(task, domain.TaskTypeApp, d); got != 750 {
		t.Fatalf("catalog reward = %d, want 750", got)
	}

	if got := TaskReward(nil, domain.TaskTypeApp, d); got != 100 {
		t.Fatalf("app fallback = %d, want 100", got)
	}
	if got := TaskReward(nil, domain.TaskTypeLink, d); got != 50 {
		t.Fatalf("link fallback = %d, want 50", got)
	}
}

func TestStreakReward(t *testing.T) {
	for streak := 1; streak <= 7; streak++ {
		if got := StreakReward(streak); got != int64(streak)*100 {
			t.Fatalf("streak %d reward = %d, want %d", streak, got, streak*100)
		}
	}
}

func TestInvestmentAdShare(t *testing.T) {
	pkg := &domain.InvestmentPackage{RewardPerTask: 155, AdRewardPercentage: 10}
	if got := InvestmentAdShare(pkg); got != 15 {
		t.Fatalf("ad share = %d, want 15 (floored)", got)
	}

	// Zero percentage falls back to 10%.
	pkg = &domain.InvestmentPackage{RewardPerTask: 200}
	if got := InvestmentAdShare(pkg); got != 20 {
		t.Fatalf("ad share = %d, want 20", got)
	}

	pkg = &domain.InvestmentPackage{RewardPerTask: 1000, AdRewardPercentage: 25}
	if got := InvestmentAdShare(pkg); got != 250 {
		t.Fatalf("ad share = %d, want 250", got)
	}
}

func TestExchangeQuote_FallbackRates(t *testing.T) {
	d := StandardDefaults()

	// 500 points at the default USD rate: floor(500 * 0.0001 * 100) = 5 cents.
	amount, ok := ExchangeQuote(500, domain.CurrencyUSD, nil, d)
	if !ok || amount != 5 {
		t.Fatalf("usd quote = %d ok=%v, want 5", amount, ok)
	}

	// 200 points at the default EGP rate: 1 EGP = 100 piastres.
	amount, ok = ExchangeQuote(200, domain.CurrencyEGP, nil, d)
	if !ok || amount != 100 {
		t.Fatalf("egp quote = %d ok=%v, want 100", amount, ok)
	}
}

func TestExchangeQuote_ActiveRate(t *testing.T) {
	d := StandardDefaults()
	rate := &domain.ExchangeRate{FromCurrency: "points", ToCurrency: "usd", Rate: "0.0002", IsActive: true}

	amount, ok := ExchangeQuote(500, domain.CurrencyUSD, rate, d)
	if !ok || amount != 10 {
		t.Fatalf("quote with custom rate = %d ok=%v, want 10", amount, ok)
	}

	// Inactive rows fall back to the defaults.
	rate.IsActive = false
	amount, _ = ExchangeQuote(500, domain.CurrencyUSD, rate, d)
	if amount != 5 {
		t.Fatalf("quote with inactive rate = %d, want 5", amount)
	}

	// Unparseable rates fall back too rather than zeroing the payout.
	bad := &domain.ExchangeRate{Rate: "abc", IsActive: true}
	amount, _ = ExchangeQuote(500, domain.CurrencyUSD, bad, d)
	if amount != 5 {
		t.Fatalf("quote with bad rate = %d, want 5", amount)
	}
}

func TestExchangeQuote_UnknownCurrency(t *testing.T) {
	d := StandardDefaults()
	if _, ok := ExchangeQuote(500, domain.CurrencyCoin, nil, d); ok {
		t.Fatalf("coin is not an exchange target")
	}
}
