package domain

import (
	"testing"
	"time"
)

func ts(t time.Time) *time.Time { return &t }

func adSettings() *AdSettings {
	return &AdSettings{PointsPerView: 500, DailyLimit: 3, CooldownSeconds: 15, IsActive: true}
}

func TestCanWatchAd_FreshUser(t *testing.T) {
	now := time.Now()
	u := &User{}

	d := u.CanWatchAd(adSettings(), now)
	if !d.Allowed {
		t.Fatalf("fresh user should be allowed, got reason %q", d.Reason)
	}
}

func TestCanWatchAd_Cooldown(t *testing.T) {
	now := time.Now()
	u := &User{AdsWatchedToday: 1, LastAdWatch: ts(now.Add(-5 * time.Second))}

	d := u.CanWatchAd(adSettings(), now)
	if d.Allowed {
		t.Fatalf("expected cooldown rejection")
	}
	if d.Reason != ReasonCooldownActive {
		t.Fatalf("expected reason %q, got %q", ReasonCooldownActive, d.Reason)
	}
	if d.Wait <= 0 || d.Wait > 15*time.Second {
		t.Fatalf("unexpected wait %v", d.Wait)
	}
}

func TestCanWatchAd_CooldownElapsed(t *testing.T) {
	now := time.Now()
	u := &User{AdsWatchedToday: 2, LastAdWatch: ts(now.Add(-16 * time.Second))}

	d := u.CanWatchAd(adSettings(), now)
	if !d.Allowed {
		t.Fatalf("16s > 15s cooldown should be allowed, got %q", d.Reason)
	}
}

func TestCanWatchAd_DailyLimitBeatsCooldown(t *testing.T) {
	now := time.Now()
	// Cooldown long elapsed, but the counter is at the limit.
	u := &User{
		AdsWatchedToday:  3,
		LastAdWatch:      ts(now.Add(-time.Hour)),
		AdLimitResetTime: ts(now.Add(time.Minute)),
	}

	d := u.CanWatchAd(adSettings(), now)
	if d.Allowed {
		t.Fatalf("expected daily limit rejection")
	}
	if d.Reason != ReasonDailyLimitReached {
		t.Fatalf("expected reason %q, got %q", ReasonDailyLimitReached, d.Reason)
	}
}

func TestCanWatchAd_ResetWindowPassed(t *testing.T) {
	now := time.Now()
	u := &User{
		AdsWatchedToday:  3,
		LastAdWatch:      ts(now.Add(-time.Hour)),
		AdLimitResetTime: ts(now.Add(-time.Second)),
	}

	if got := u.EffectiveAdsWatched(now); got != 0 {
		t.Fatalf("counter should read 0 after reset time, got %d", got)
	}
	d := u.CanWatchAd(adSettings(), now)
	if !d.Allowed {
		t.Fatalf("expected allowed after reset window, got %q", d.Reason)
	}
}

func TestCanClaimDailyBonus(t *testing.T) {
	now := time.Now()

	u := &User{}
	if d := u.CanClaimDailyBonus(now); !d.Allowed {
		t.Fatalf("first bonus claim should be allowed")
	}

	u.LastBonusClaim = ts(now.Add(-10 * time.Minute))
	d := u.CanClaimDailyBonus(now)
	if d.Allowed {
		t.Fatalf("bonus inside 30m window should be denied")
	}
	if d.Wait <= 0 || d.Wait > 20*time.Minute {
		t.Fatalf("unexpected wait %v", d.Wait)
	}

	u.LastBonusClaim = ts(now.Add(-31 * time.Minute))
	if d := u.CanClaimDailyBonus(now); !d.Allowed {
		t.Fatalf("bonus after window should be allowed")
	}
}

func TestCanClaimStreak(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		lastClaim   *time.Time
		streak      int
		wantAllowed bool
		wantNext    int
	}{
		{"first claim", nil, 0, true, 1},
		{"same day", ts(now.Add(-2 * time.Hour)), 3, false, 4},
		{"consecutive day", ts(now.AddDate(0, 0, -1)), 3, true, 4},
		{"consecutive day at cap", ts(now.AddDate(0, 0, -1)), 7, true, 7},
		{"skipped a day", ts(now.AddDate(0, 0, -2)), 5, true, 1},
		{"long gap", ts(now.AddDate(0, 0, -30)), 7, true, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &User{LastDailyClaimDate: tc.lastClaim, DailyStreak: tc.streak}
			d := u.CanClaimStreak(now)
			if d.Allowed != tc.wantAllowed {
				t.Fatalf("allowed = %v, want %v", d.Allowed, tc.wantAllowed)
			}
			if d.NextStreak != tc.wantNext {
				t.Fatalf("next streak = %d, want %d", d.NextStreak, tc.wantNext)
			}
			if d.NextReward != int64(tc.wantNext)*100 {
				t.Fatalf("next reward = %d, want %d", d.NextReward, tc.wantNext*100)
			}
		})
	}
}

func TestStreakAcrossMidnight(t *testing.T) {
	// Claimed at 23:59, next claim at 00:01 the following day: still
	// a consecutive calendar day.
	last := time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)
	now := time.Date(2025, 6, 11, 0, 1, 0, 0, time.UTC)

	u := &User{LastDailyClaimDate: ts(last), DailyStreak: 2}
	d := u.CanClaimStreak(now)
	if !d.Allowed || d.NextStreak != 3 {
		t.Fatalf("expected allowed with streak 3, got allowed=%v streak=%d", d.Allowed, d.NextStreak)
	}
}
