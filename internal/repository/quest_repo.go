package repository

import (
	"context"
	"errors"

	"teleearn/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestRepository stores per-user quest progress. The is_completed flag
// is the claim's idempotency witness.
type QuestRepository struct {
	db *pgxpool.Pool
}

func NewQuestRepository(db *pgxpool.Pool) *QuestRepository {
	return &QuestRepository{db: db}
}

// GetProgress returns the user's row for one quest, or ErrNotFound.
func (r *QuestRepository) GetProgress(ctx context.Context, userID, questID int64) (*domain.QuestProgress, error) {
	var p domain.QuestProgress
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, quest_id, progress, is_completed, completed_at
		 FROM quest_progress
		 WHERE user_id = $1 AND quest_id = $2`,
		userID, questID,
	).Scan(&p.ID, &p.UserID, &p.QuestID, &p.Progress, &p.IsCompleted, &p.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns all progress rows for a user keyed by quest id.
func (r *QuestRepository) ListByUser(ctx context.Context, userID int64) (map[int64]*domain.QuestProgress, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, quest_id, progress, is_completed, completed_at
		 FROM quest_progress
		 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]*domain.QuestProgress)
	for rows.Next() {
		var p domain.QuestProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.QuestID, &p.Progress, &p.IsCompleted, &p.CompletedAt); err != nil {
			return nil, err
		}
		result[p.QuestID] = &p
	}
	return result, rows.Err()
}

// MarkCompletedTx flips the progress row to completed inside an open
// transaction, creating the row when it does not exist yet. Returns
// false when the quest was already claimed: the upsert only touches
// rows where is_completed is still false.
func (r *QuestRepository) MarkCompletedTx(ctx context.Context, tx pgx.Tx, userID, questID int64, progress int) (bool, error) {
	tag, err := tx.Exec(ctx,
		`INSERT INTO quest_progress (user_id, quest_id, progress, is_completed, completed_at)
		 VALUES ($1, $2, $3, true, NOW())
		 ON CONFLICT (user_id, quest_id) DO UPDATE
		 SET progress = $3, is_completed = true, completed_at = NOW()
		 WHERE quest_progress.is_completed = false`,
		userID, questID, progress,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
