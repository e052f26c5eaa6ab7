package domain

import "time"

// AdSettings is the single active row of the ad_tasks table.
type AdSettings struct {
	ID              int64 `db:"id" json:"id"`
	PointsPerView   int64 `db:"points_per_view" json:"points_per_view"`
	DailyLimit      int   `db:"daily_limit" json:"daily_limit"`
	CooldownSeconds int   `db:"cooldown_seconds" json:"cooldown_seconds"`
	IsActive        bool  `db:"is_active" json:"is_active"`
}

// TaskType distinguishes the two one-shot task catalogs.
type TaskType string

const (
	TaskTypeApp  TaskType = "app"
	TaskTypeLink TaskType = "link"
)

func (t TaskType) Valid() bool {
	return t == TaskTypeApp || t == TaskTypeLink
}

// Task is an app or link task a user completes once for a flat reward.
type Task struct {
	ID          int64     `db:"id" json:"id"`
	Type        TaskType  `db:"task_type" json:"task_type"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	URL         string    `db:"url" json:"url"`
	Reward      int64     `db:"reward" json:"reward"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// QuestType selects which activity counter a quest tracks.
type QuestType string

const (
	QuestWatchAds      QuestType = "watch_ads"
	QuestInviteFriends QuestType = "invite_friends"
	QuestCompleteTasks QuestType = "complete_tasks"
)

type Quest struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Type        QuestType `db:"quest_type" json:"quest_type"`
	Target      int       `db:"target" json:"target"`
	Reward      int64     `db:"reward" json:"reward"`
	Icon        string    `db:"icon" json:"icon"`
	IsActive    bool      `db:"is_active" json:"is_active"`
}

// PackageType selects which wallet pays for a subscription.
type PackageType string

const (
	// PackageOwn is funded from the main usd/egp wallet.
	PackageOwn PackageType = "own"
	// PackagePoints is funded from the earn-side account for
	// RewardCurrency: points, coins, or the investment balances for
	// usd/egp.
	PackagePoints PackageType = "points"
)

type InvestmentPackage struct {
	ID                 int64          `db:"id" json:"id"`
	Title              string         `db:"title" json:"title"`
	Type               PackageType    `db:"package_type" json:"package_type"`
	Price              int64          `db:"price" json:"price"`
	NumberOfDays       int            `db:"number_of_days" json:"number_of_days"`
	RewardPerTask      int64          `db:"reward_per_task" json:"reward_per_task"`
	RewardCurrency     RewardCurrency `db:"reward_currency" json:"reward_currency"`
	AdRewardPercentage int            `db:"ad_reward_percentage" json:"ad_reward_percentage"`
	IsActive           bool           `db:"is_active" json:"is_active"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}

// ExchangeRate converts points into a fiat currency. Rate is kept as a
// decimal string to preserve precision across the wire and the db.
type ExchangeRate struct {
	ID           int64     `db:"id" json:"id"`
	FromCurrency string    `db:"from_currency" json:"from_currency"`
	ToCurrency   string    `db:"to_currency" json:"to_currency"`
	Rate         string    `db:"rate" json:"rate"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
