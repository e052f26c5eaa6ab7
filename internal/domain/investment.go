package domain

import "time"

// InvestmentDailyAdLimit caps ad rewards per investment per calendar day.
const InvestmentDailyAdLimit = 10

// UserInvestment is an active or expired subscription to a package.
// Both daily counters are date buckets: the stored count only applies
// while its companion date is still today, otherwise it reads as zero.
type UserInvestment struct {
	ID                  int64      `db:"id" json:"id"`
	UserID              int64      `db:"user_id" json:"user_id"`
	PackageID           int64      `db:"package_id" json:"package_id"`
	StartDate           time.Time  `db:"start_date" json:"start_date"`
	EndDate             time.Time  `db:"end_date" json:"end_date"`
	IsActive            bool       `db:"is_active" json:"is_active"`
	TasksCompletedToday int        `db:"tasks_completed_today" json:"tasks_completed_today"`
	LastTaskDate        *time.Time `db:"last_task_date" json:"last_task_date,omitempty"`
	AdsWatchedToday     int        `db:"ads_watched_today" json:"ads_watched_today"`
	LastAdWatch         *time.Time `db:"last_ad_watch" json:"last_ad_watch,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`

	// Package is joined in on reads; nil when not loaded.
	Package *InvestmentPackage `db:"-" json:"package,omitempty"`
}

// Expired reports whether the subscription window has passed. Expiry is
// detected lazily on access; there is no background job.
func (inv *UserInvestment) Expired(now time.Time) bool {
	return !inv.EndDate.After(now)
}

// EffectiveAdsWatched applies the date bucket to the ad counter.
func (inv *UserInvestment) EffectiveAdsWatched(now time.Time) int {
	if inv.LastAdWatch == nil || !SameDay(*inv.LastAdWatch, now) {
		return 0
	}
	return inv.AdsWatchedToday
}

// TaskDoneToday reports whether today's single task was already claimed.
func (inv *UserInvestment) TaskDoneToday(now time.Time) bool {
	return inv.LastTaskDate != nil && SameDay(*inv.LastTaskDate, now)
}

// InvestmentAdDecision is the outcome of a per-investment ad check.
type InvestmentAdDecision struct {
	Allowed   bool
	Reason    RejectReason
	Remaining int
}

// CanWatchAd checks the per-investment daily ad cap.
func (inv *UserInvestment) CanWatchAd(now time.Time) InvestmentAdDecision {
	if inv.Expired(now) {
		return InvestmentAdDecision{Reason: ReasonInvestmentExpired}
	}
	watched := inv.EffectiveAdsWatched(now)
	if watched >= InvestmentDailyAdLimit {
		return InvestmentAdDecision{Reason: ReasonDailyLimitReached}
	}
	return InvestmentAdDecision{Allowed: true, Remaining: InvestmentDailyAdLimit - watched}
}
