package domain

import (
	"testing"
	"time"
)

func activeInvestment(now time.Time) *UserInvestment {
	return &UserInvestment{
		StartDate: now.AddDate(0, 0, -1),
		EndDate:   now.AddDate(0, 0, 6),
		IsActive:  true,
	}
}

func TestInvestmentExpiry(t *testing.T) {
	now := time.Now()

	inv := activeInvestment(now)
	if inv.Expired(now) {
		t.Fatalf("investment should not be expired")
	}

	inv.EndDate = now.Add(-time.Second)
	if !inv.Expired(now) {
		t.Fatalf("investment past end date should be expired")
	}

	// Boundary: endDate == now counts as expired.
	inv.EndDate = now
	if !inv.Expired(now) {
		t.Fatalf("investment ending exactly now should be expired")
	}
}

func TestInvestmentAdDateBucket(t *testing.T) {
	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

	inv := activeInvestment(now)
	inv.AdsWatchedToday = 7
	yesterday := now.AddDate(0, 0, -1)
	inv.LastAdWatch = &yesterday

	// Stored counter is stale: last watch was yesterday.
	if got := inv.EffectiveAdsWatched(now); got != 0 {
		t.Fatalf("stale counter should read 0, got %d", got)
	}

	inv.LastAdWatch = &now
	if got := inv.EffectiveAdsWatched(now); got != 7 {
		t.Fatalf("fresh counter should read 7, got %d", got)
	}
}

func TestInvestmentCanWatchAd(t *testing.T) {
	now := time.Now()

	inv := activeInvestment(now)
	inv.AdsWatchedToday = InvestmentDailyAdLimit
	inv.LastAdWatch = &now

	d := inv.CanWatchAd(now)
	if d.Allowed {
		t.Fatalf("expected daily ad limit rejection")
	}
	if d.Reason != ReasonDailyLimitReached {
		t.Fatalf("expected reason %q, got %q", ReasonDailyLimitReached, d.Reason)
	}

	inv.AdsWatchedToday = 4
	d = inv.CanWatchAd(now)
	if !d.Allowed || d.Remaining != InvestmentDailyAdLimit-4 {
		t.Fatalf("expected allowed with %d remaining, got allowed=%v remaining=%d",
			InvestmentDailyAdLimit-4, d.Allowed, d.Remaining)
	}

	inv.EndDate = now.Add(-time.Hour)
	d = inv.CanWatchAd(now)
	if d.Allowed || d.Reason != ReasonInvestmentExpired {
		t.Fatalf("expected expiry rejection, got allowed=%v reason=%q", d.Allowed, d.Reason)
	}
}

func TestInvestmentTaskDoneToday(t *testing.T) {
	now := time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)
	inv := activeInvestment(now)

	if inv.TaskDoneToday(now) {
		t.Fatalf("no task recorded yet")
	}

	earlier := now.Add(-3 * time.Hour)
	inv.LastTaskDate = &earlier
	if !inv.TaskDoneToday(now) {
		t.Fatalf("task earlier today should count")
	}

	yesterday := now.AddDate(0, 0, -1)
	inv.LastTaskDate = &yesterday
	if inv.TaskDoneToday(now) {
		t.Fatalf("task yesterday should not count")
	}
}
