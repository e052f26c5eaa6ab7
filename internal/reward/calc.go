// Package reward holds the pure amount computations: catalog entry in,
// integer amount out. Nothing here touches storage or the clock.
package reward

import (
	"strconv"

	"teleearn/internal/domain"
)

// Defaults are the configurable fallback values used when a catalog
// row is missing. The task fallbacks exist for backward compatibility
// with already-issued task ids whose catalog rows were deleted.
type Defaults struct {
	AppTaskReward  int64
	LinkTaskReward int64
	// Fallback exchange rates used when no active rate row exists.
	USDRate float64 // 0.0001 => 10,000 points per dollar
	EGPRate float64 // 0.005  => 200 points per EGP
}

// StandardDefaults mirrors the values the platform has always shipped.
func StandardDefaults() Defaults {
	return Defaults{
		AppTaskReward:  100,
		LinkTaskReward: 50,
		USDRate:        0.0001,
		EGPRate:        0.005,
	}
}

// AdReward is the flat per-view reward from the ad settings.
func AdReward(s *domain.AdSettings) int64 {
	return s.PointsPerView
}

// TaskReward returns the task's configured reward, or the per-type
// fallback when the catalog row is gone.
func TaskReward(task *domain.Task, taskType domain.TaskType, d Defaults) int64 {
	if task != nil {
		return task.Reward
	}
	if taskType == domain.TaskTypeLink {
		return d.LinkTaskReward
	}
	return d.AppTaskReward
}

// StreakReward is streak * 100, for any streak day.
func StreakReward(streak int) int64 {
	return int64(streak) * 100
}

// InvestmentAdShare is the percentage cut of the package's daily task
// reward granted per watched ad, floored to an integer.
func InvestmentAdShare(pkg *domain.InvestmentPackage) int64 {
	pct := pkg.AdRewardPercentage
	if pct <= 0 {
		pct = 10
	}
	return pkg.RewardPerTask * int64(pct) / 100
}

// ExchangeQuote computes the minor-unit amount received for spending
// points on the given fiat currency. rate may be nil, in which case the
// fallback constant for the currency applies. The result is floored:
// amount = floor(points * rate * 100).
func ExchangeQuote(points int64, currency domain.RewardCurrency, rate *domain.ExchangeRate, d Defaults) (int64, bool) {
	var r float64
	switch currency {
	case domain.CurrencyUSD:
		r = d.USDRate
	case domain.CurrencyEGP:
		r = d.EGPRate
	default:
		return 0, false
	}

	if rate != nil && rate.IsActive {
		if parsed, err := strconv.ParseFloat(rate.Rate, 64); err == nil && parsed > 0 {
			r = parsed
		}
	}

	return int64(float64(points) * r * 100), true
}
