package handlers

import (
	"errors"
	"fmt"
	"testing"

	"teleearn/internal/service"
)

func TestMetricReasonFixedBuckets(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{service.ErrCooldownActive, "cooldown_active"},
		{service.ErrDailyLimitReached, "daily_limit_reached"},
		{service.ErrInsufficientBalance, "insufficient_balance"},
		{service.ErrTaskAlreadyCompleted, "already_completed"},
		{service.ErrQuestAlreadyClaimed, "already_claimed"},
		{service.ErrQuestNotFound, "not_found"},
		// Wrapped errors resolve to their sentinel's bucket.
		{fmt.Errorf("claim: %w", service.ErrBonusNotReady), "cooldown_active"},
		// The dynamic quest error carries progress in its message; the
		// label must stay the fixed bucket regardless.
		{&service.QuestNotCompletedError{Progress: 3, Target: 5}, "not_completed"},
		// Anything unexpected lands in one shared bucket, never its
		// error string.
		{errors.New("pq: connection reset"), "internal"},
	}

	for _, c := range cases {
		if got := metricReason(c.err); got != c.want {
			t.Errorf("metricReason(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}
