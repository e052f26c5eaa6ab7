package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Handlers dispatch on these
// with errors.Is to pick HTTP status codes.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrCooldownActive    = errors.New("ad cooldown active")
	ErrDailyLimitReached = errors.New("daily limit reached")
	ErrBonusNotReady     = errors.New("daily bonus not ready")
	ErrAlreadyClaimed    = errors.New("already claimed today")

	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskInactive         = errors.New("task is not active")
	ErrTaskAlreadyCompleted = errors.New("task already completed")

	ErrQuestNotFound       = errors.New("quest not found")
	ErrQuestNotCompleted   = errors.New("quest target not reached")
	ErrQuestAlreadyClaimed = errors.New("quest reward already claimed")

	ErrPackageNotFound          = errors.New("investment package not found")
	ErrPackageInactive          = errors.New("investment package is not active")
	ErrInvestmentNotFound       = errors.New("investment not found")
	ErrInvestmentExpired        = errors.New("investment expired")
	ErrInvestmentAdLimitReached = errors.New("investment ad limit reached")
	ErrInvestmentTaskDone       = errors.New("investment task already completed today")
	ErrDepositRequired          = errors.New("deposit required")

	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrBelowMinimum     = errors.New("amount below minimum")
	ErrRequestNotFound  = errors.New("request not found")
	ErrRequestProcessed = errors.New("request already processed")

	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrSelfReferral        = errors.New("cannot refer yourself")
)

// QuestNotCompletedError carries the recomputed progress alongside the
// target so handlers can show how far along the user is. It matches
// ErrQuestNotCompleted under errors.Is.
type QuestNotCompletedError struct {
	Progress int
	Target   int
}

func (e *QuestNotCompletedError) Error() string {
	return fmt.Sprintf("quest target not reached: %d/%d", e.Progress, e.Target)
}

func (e *QuestNotCompletedError) Is(target error) bool {
	return target == ErrQuestNotCompleted
}
