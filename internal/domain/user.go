package domain

import "time"

type User struct {
	ID         int64  `db:"id" json:"id"`
	TelegramID string `db:"telegram_id" json:"telegram_id"`
	Username   string `db:"username" json:"username"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name,omitempty"`

	// Balances, all integer. Fiat accounts are minor units (cents,
	// piastres); investment balances are segregated from the main wallet.
	Points               int64 `db:"points" json:"points"`
	CoinBalance          int64 `db:"coin_balance" json:"coin_balance"`
	USDBalance           int64 `db:"usd_balance" json:"usd_balance"`
	EGPBalance           int64 `db:"egp_balance" json:"egp_balance"`
	InvestmentUSDBalance int64 `db:"investment_usd_balance" json:"investment_usd_balance"`
	InvestmentEGPBalance int64 `db:"investment_egp_balance" json:"investment_egp_balance"`

	// Ad watching state.
	AdsWatchedToday  int        `db:"ads_watched_today" json:"ads_watched_today"`
	LastAdWatch      *time.Time `db:"last_ad_watch" json:"last_ad_watch,omitempty"`
	AdLimitResetTime *time.Time `db:"ad_limit_reset_time" json:"ad_limit_reset_time,omitempty"`

	// Daily bonus (30-minute window) and daily streak state. Kept as
	// explicit typed fields, each independent of the ad counters.
	LastBonusClaim     *time.Time `db:"last_bonus_claim" json:"last_bonus_claim,omitempty"`
	LastDailyClaimDate *time.Time `db:"last_daily_claim_date" json:"last_daily_claim_date,omitempty"`
	DailyStreak        int        `db:"daily_streak" json:"daily_streak"`

	ReferralCode   string    `db:"referral_code" json:"referral_code"`
	ReferredByCode string    `db:"referred_by_code" json:"referred_by_code,omitempty"`
	ReferredByID   *int64    `db:"referred_by_id" json:"referred_by_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// BalanceOf returns the current value of one of the six accounts.
func (u *User) BalanceOf(b Balance) int64 {
	switch b {
	case BalancePoints:
		return u.Points
	case BalanceCoins:
		return u.CoinBalance
	case BalanceUSD:
		return u.USDBalance
	case BalanceEGP:
		return u.EGPBalance
	case BalanceInvestmentUSD:
		return u.InvestmentUSDBalance
	case BalanceInvestmentEGP:
		return u.InvestmentEGPBalance
	}
	return 0
}

// Reject reasons for expected rate-limit outcomes. These are values,
// not errors: a denied check is a normal result.
type RejectReason string

const (
	ReasonCooldownActive      RejectReason = "cooldown_active"
	ReasonDailyLimitReached   RejectReason = "daily_limit_reached"
	ReasonAlreadyClaimedToday RejectReason = "already_claimed_today"
	ReasonInvestmentExpired   RejectReason = "investment_expired"
)

// AdWatchDecision is the outcome of an ad eligibility check.
type AdWatchDecision struct {
	Allowed bool
	Reason  RejectReason
	// Wait until the next ad is permitted; zero when Allowed or when
	// the daily limit gates the request.
	Wait time.Duration
}

// EffectiveAdsWatched returns the ad counter after applying the
// one-minute reset window: once the counter hit the daily limit a reset
// time was stamped, and after that instant passes the counter reads as
// zero again.
func (u *User) EffectiveAdsWatched(now time.Time) int {
	if u.AdLimitResetTime != nil && !now.Before(*u.AdLimitResetTime) {
		return 0
	}
	return u.AdsWatchedToday
}

// CanWatchAd decides ad eligibility. Two independent gates: the daily
// cap (with its one-minute reset window) and the short per-ad cooldown.
func (u *User) CanWatchAd(s *AdSettings, now time.Time) AdWatchDecision {
	if u.EffectiveAdsWatched(now) >= s.DailyLimit {
		return AdWatchDecision{Reason: ReasonDailyLimitReached}
	}

	if u.LastAdWatch != nil {
		cooldown := time.Duration(s.CooldownSeconds) * time.Second
		elapsed := now.Sub(*u.LastAdWatch)
		if elapsed < cooldown {
			return AdWatchDecision{Reason: ReasonCooldownActive, Wait: cooldown - elapsed}
		}
	}

	return AdWatchDecision{Allowed: true}
}

// DailyBonusWindow is the fixed spacing between bonus claims.
const DailyBonusWindow = 30 * time.Minute

// BonusDecision is the outcome of a daily bonus eligibility check.
type BonusDecision struct {
	Allowed bool
	Wait    time.Duration
}

// CanClaimDailyBonus checks the 30-minute bonus window. The bonus has
// its own timestamp and shares no state with ad watching.
func (u *User) CanClaimDailyBonus(now time.Time) BonusDecision {
	if u.LastBonusClaim == nil {
		return BonusDecision{Allowed: true}
	}
	elapsed := now.Sub(*u.LastBonusClaim)
	if elapsed >= DailyBonusWindow {
		return BonusDecision{Allowed: true}
	}
	return BonusDecision{Wait: DailyBonusWindow - elapsed}
}

// MaxDailyStreak caps consecutive-day streaks.
const MaxDailyStreak = 7

// StreakDecision is the outcome of a daily streak eligibility check.
type StreakDecision struct {
	Allowed       bool
	CurrentStreak int
	// NextStreak and NextReward describe the claim that would happen
	// now (or the next allowed one when Allowed is false).
	NextStreak int
	NextReward int64
}

// CanClaimStreak derives the streak decision from the last claim date.
// Same calendar day: denied. Exactly one day later: streak increments,
// capped at MaxDailyStreak. Longer gap (or first claim): streak resets
// to 1. Reward is always nextStreak * 100.
func (u *User) CanClaimStreak(now time.Time) StreakDecision {
	d := StreakDecision{Allowed: true, CurrentStreak: u.DailyStreak, NextStreak: 1}

	if u.LastDailyClaimDate != nil {
		gap := daysBetween(*u.LastDailyClaimDate, now)
		switch {
		case gap == 0:
			d.Allowed = false
			d.NextStreak = min(u.DailyStreak+1, MaxDailyStreak)
		case gap == 1:
			d.NextStreak = min(u.DailyStreak+1, MaxDailyStreak)
		}
	}

	d.NextReward = int64(d.NextStreak) * 100
	return d
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same UTC date.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)) / (24 * time.Hour))
}
