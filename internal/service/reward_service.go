package service

import (
	"context"
	"time"

	"teleearn/internal/domain"
	"teleearn/internal/repository"
	"teleearn/internal/reward"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// adLimitResetWindow is the pause enforced once the daily ad cap is
// reached; after it passes the counter reads as zero again.
const adLimitResetWindow = time.Minute

// RewardService grants the non-investment rewards: ad views, one-shot
// tasks, quests, the daily bonus and the daily streak. Each operation
// locks the user row, re-checks eligibility under the lock and credits
// through the ledger, all in one transaction.
type RewardService struct {
	db          *pgxpool.Pool
	ledger      *Ledger
	defaults    reward.Defaults
	bonusAmount int64

	userRepo     *repository.UserRepository
	catalogRepo  *repository.CatalogRepository
	taskRepo     *repository.TaskRepository
	questRepo    *repository.QuestRepository
	referralRepo *repository.ReferralRepository
	txRepo       *repository.TransactionRepository
}

func NewRewardService(db *pgxpool.Pool, ledger *Ledger, defaults reward.Defaults, bonusAmount int64) *RewardService {
	if bonusAmount <= 0 {
		bonusAmount = 100
	}
	return &RewardService{
		db:           db,
		ledger:       ledger,
		defaults:     defaults,
		bonusAmount:  bonusAmount,
		userRepo:     repository.NewUserRepository(db),
		catalogRepo:  repository.NewCatalogRepository(db),
		taskRepo:     repository.NewTaskRepository(db),
		questRepo:    repository.NewQuestRepository(db),
		referralRepo: repository.NewReferralRepository(db),
		txRepo:       repository.NewTransactionRepository(db),
	}
}

// AdWatchResult is returned to the client after a successful ad view.
type AdWatchResult struct {
	Reward          int64 `json:"reward"`
	NewPoints       int64 `json:"new_points"`
	AdsWatchedToday int   `json:"ads_watched_today"`
	DailyLimit      int   `json:"daily_limit"`
}

// WatchAd grants the ad view reward. Cooldown and daily cap are
// re-checked under the row lock; hitting the cap stamps the reset time.
func (s *RewardService) WatchAd(ctx context.Context, userID int64) (*AdWatchResult, error) {
	settings, err := s.catalogRepo.GetAdSettings(ctx)
	if err != nil {
		return nil, err
	}

	var result AdWatchResult
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		u, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		decision := u.CanWatchAd(settings, now)
		if !decision.Allowed {
			switch decision.Reason {
			case domain.ReasonDailyLimitReached:
				return ErrDailyLimitReached
			default:
				return ErrCooldownActive
			}
		}

		watched := u.EffectiveAdsWatched(now) + 1
		var resetAt *time.Time
		if watched >= settings.DailyLimit {
			t := now.Add(adLimitResetWindow)
			resetAt = &t
		}
		_, err = tx.Exec(ctx,
			`UPDATE users
			 SET ads_watched_today = $2, last_ad_watch = $3, ad_limit_reset_time = $4
			 WHERE id = $1`,
			userID, watched, now, resetAt,
		)
		if err != nil {
			return err
		}

		amount := reward.AdReward(settings)
		newPoints, err := s.ledger.CreditTx(ctx, tx, userID, domain.BalancePoints, amount, domain.TxAdReward, nil)
		if err != nil {
			return err
		}

		result = AdWatchResult{
			Reward:          amount,
			NewPoints:       newPoints,
			AdsWatchedToday: watched,
			DailyLimit:      settings.DailyLimit,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetDailyAdLimit zeroes the ad counter and clears the reset marker.
// Admin operation; users go through the one-minute window instead.
func (s *RewardService) ResetDailyAdLimit(ctx context.Context, userID int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users
		 SET ads_watched_today = 0, ad_limit_reset_time = NULL
		 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// TaskResult is returned after a one-shot task completion.
type TaskResult struct {
	Reward    int64 `json:"reward"`
	NewPoints int64 `json:"new_points"`
}

// CompleteTask grants a one-shot task reward at most once per
// (user, task type, task). The completion row insert is the witness:
// when it reports the row already existed, no credit happens and the
// caller gets a terminal ErrTaskAlreadyCompleted.
func (s *RewardService) CompleteTask(ctx context.Context, userID int64, taskType domain.TaskType, taskID int64) (*TaskResult, error) {
	if !taskType.Valid() {
		return nil, ErrTaskNotFound
	}

	// The catalog row may be gone while the button is still visible in
	// an old client; the reward falls back to the per-type default.
	task, err := s.catalogRepo.GetTask(ctx, taskType, taskID)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}
	if task != nil && !task.IsActive {
		return nil, ErrTaskInactive
	}
	amount := reward.TaskReward(task, taskType, s.defaults)

	var result TaskResult
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.lockUser(ctx, tx, userID); err != nil {
			return err
		}

		inserted, err := s.taskRepo.InsertCompletionTx(ctx, tx, userID, taskType, taskID)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrTaskAlreadyCompleted
		}

		newPoints, err := s.ledger.CreditTx(ctx, tx, userID, domain.BalancePoints, amount, domain.TxTaskReward,
			map[string]interface{}{"task_type": string(taskType), "task_id": taskID})
		if err != nil {
			return err
		}
		result = TaskResult{Reward: amount, NewPoints: newPoints}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTasks returns the active tasks of one type.
func (s *RewardService) ListTasks(ctx context.Context, taskType domain.TaskType) ([]*domain.Task, error) {
	if !taskType.Valid() {
		return nil, ErrTaskNotFound
	}
	return s.catalogRepo.GetActiveTasks(ctx, taskType)
}

// QuestStatus is one quest with the user's live progress attached.
type QuestStatus struct {
	Quest       *domain.Quest `json:"quest"`
	Progress    int           `json:"progress"`
	IsCompleted bool          `json:"is_completed"`
}

// ListQuests returns the active quests with recomputed progress.
func (s *RewardService) ListQuests(ctx context.Context, userID int64) ([]*QuestStatus, error) {
	quests, err := s.catalogRepo.GetActiveQuests(ctx)
	if err != nil {
		return nil, err
	}
	claimed, err := s.questRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*QuestStatus, 0, len(quests))
	for _, q := range quests {
		progress, err := s.questProgress(ctx, userID, q.Type)
		if err != nil {
			return nil, err
		}
		status := &QuestStatus{Quest: q, Progress: progress}
		if p, ok := claimed[q.ID]; ok {
			status.IsCompleted = p.IsCompleted
		}
		result = append(result, status)
	}
	return result, nil
}

// questProgress recomputes progress from the authoritative counters.
// Cached progress values are never trusted for claims.
func (s *RewardService) questProgress(ctx context.Context, userID int64, questType domain.QuestType) (int, error) {
	switch questType {
	case domain.QuestWatchAds:
		return s.txRepo.CountByUserAndType(ctx, userID, domain.TxAdReward)
	case domain.QuestInviteFriends:
		return s.referralRepo.CountByReferrer(ctx, userID)
	case domain.QuestCompleteTasks:
		return s.taskRepo.CountByUser(ctx, userID)
	}
	return 0, ErrQuestNotFound
}

// QuestResult is returned after a successful quest claim.
type QuestResult struct {
	Reward    int64 `json:"reward"`
	NewPoints int64 `json:"new_points"`
}

// ClaimQuest pays a quest reward at most once. Progress is recomputed
// before the claim; the conditional upsert flipping is_completed is the
// linearization point, so a racing duplicate claim loses there and no
// second credit can happen.
func (s *RewardService) ClaimQuest(ctx context.Context, userID, questID int64) (*QuestResult, error) {
	quest, err := s.catalogRepo.GetQuestByID(ctx, questID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrQuestNotFound
		}
		return nil, err
	}
	if !quest.IsActive {
		return nil, ErrQuestNotFound
	}

	progress, err := s.questProgress(ctx, userID, quest.Type)
	if err != nil {
		return nil, err
	}
	if progress < quest.Target {
		return nil, &QuestNotCompletedError{Progress: progress, Target: quest.Target}
	}

	var result QuestResult
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.lockUser(ctx, tx, userID); err != nil {
			return err
		}

		marked, err := s.questRepo.MarkCompletedTx(ctx, tx, userID, questID, progress)
		if err != nil {
			return err
		}
		if !marked {
			return ErrQuestAlreadyClaimed
		}

		newPoints, err := s.ledger.CreditTx(ctx, tx, userID, domain.BalancePoints, quest.Reward, domain.TxQuestReward,
			map[string]interface{}{"quest_id": questID})
		if err != nil {
			return err
		}
		result = QuestResult{Reward: quest.Reward, NewPoints: newPoints}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BonusResult is returned after a daily bonus claim.
type BonusResult struct {
	Reward    int64 `json:"reward"`
	NewPoints int64 `json:"new_points"`
}

// ClaimDailyBonus pays the fixed bonus on a 30-minute window. The
// window has its own timestamp and never touches the ad cooldown.
func (s *RewardService) ClaimDailyBonus(ctx context.Context, userID int64) (*BonusResult, error) {
	var result BonusResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		u, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		if d := u.CanClaimDailyBonus(now); !d.Allowed {
			return ErrBonusNotReady
		}

		if _, err := tx.Exec(ctx,
			`UPDATE users SET last_bonus_claim = $2 WHERE id = $1`, userID, now); err != nil {
			return err
		}

		newPoints, err := s.ledger.CreditTx(ctx, tx, userID, domain.BalancePoints, s.bonusAmount, domain.TxDailyBonus, nil)
		if err != nil {
			return err
		}
		result = BonusResult{Reward: s.bonusAmount, NewPoints: newPoints}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// StreakStatus reports the streak state without claiming.
type StreakStatus struct {
	CanClaim      bool  `json:"can_claim"`
	CurrentStreak int   `json:"current_streak"`
	NextStreak    int   `json:"next_streak"`
	NextReward    int64 `json:"next_reward"`
}

// GetStreakStatus returns whether the user can claim today and what
// the claim would pay.
func (s *RewardService) GetStreakStatus(ctx context.Context, userID int64) (*StreakStatus, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	d := u.CanClaimStreak(time.Now())
	return &StreakStatus{
		CanClaim:      d.Allowed,
		CurrentStreak: d.CurrentStreak,
		NextStreak:    d.NextStreak,
		NextReward:    d.NextReward,
	}, nil
}

// StreakResult is returned after a daily streak claim.
type StreakResult struct {
	Reward    int64 `json:"reward"`
	Streak    int   `json:"streak"`
	NewPoints int64 `json:"new_points"`
}

// ClaimDailyStreak pays streak*100 once per calendar day. Consecutive
// days grow the streak up to 7; skipping a day resets it to 1.
func (s *RewardService) ClaimDailyStreak(ctx context.Context, userID int64) (*StreakResult, error) {
	var result StreakResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		u, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		d := u.CanClaimStreak(now)
		if !d.Allowed {
			return ErrAlreadyClaimed
		}

		if _, err := tx.Exec(ctx,
			`UPDATE users SET daily_streak = $2, last_daily_claim_date = $3 WHERE id = $1`,
			userID, d.NextStreak, domain.DateOf(now)); err != nil {
			return err
		}

		newPoints, err := s.ledger.CreditTx(ctx, tx, userID, domain.BalancePoints, d.NextReward, domain.TxDailyStreak,
			map[string]interface{}{"streak": d.NextStreak})
		if err != nil {
			return err
		}
		result = StreakResult{Reward: d.NextReward, Streak: d.NextStreak, NewPoints: newPoints}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *RewardService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *RewardService) lockUser(ctx context.Context, tx pgx.Tx, userID int64) (*domain.User, error) {
	u, err := s.userRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
