package domain

import "time"

// QuestProgress tracks one user's progress on one quest. The
// is_completed flag is the idempotency witness for reward claims: it
// flips false -> true exactly once, in the same transaction as the
// point credit.
type QuestProgress struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	QuestID     int64      `db:"quest_id" json:"quest_id"`
	Progress    int        `db:"progress" json:"progress"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// TaskCompletion exists once per (user, task type, task id). Its mere
// existence proves the reward was granted; the core never updates or
// deletes these rows.
type TaskCompletion struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	TaskType    TaskType  `db:"task_type" json:"task_type"`
	TaskID      int64     `db:"task_id" json:"task_id"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// Referral records that referrer invited referred. At most one row per
// referred user; the bonus is credited only by the insert that creates
// the row.
type Referral struct {
	ID           int64     `db:"id" json:"id"`
	ReferrerID   int64     `db:"referrer_id" json:"referrer_id"`
	ReferredID   int64     `db:"referred_id" json:"referred_id"`
	PointsEarned int64     `db:"points_earned" json:"points_earned"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
