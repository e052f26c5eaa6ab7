package repository

import (
	"context"

	"teleearn/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository stores one-shot task completions. A completion row is
// the idempotency witness for the reward: it is inserted at most once
// per (user, task type, task) and never modified.
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// InsertCompletionTx records a completion inside an open transaction.
// Returns false when the row already existed, in which case the caller
// must not grant the reward again.
func (r *TaskRepository) InsertCompletionTx(ctx context.Context, tx pgx.Tx, userID int64, taskType domain.TaskType, taskID int64) (bool, error) {
	tag, err := tx.Exec(ctx,
		`INSERT INTO task_completions (user_id, task_type, task_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, task_type, task_id) DO NOTHING`,
		userID, taskType, taskID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CountByUser returns how many tasks the user has completed, across
// both task types. Quest progress for complete_tasks reads this.
func (r *TaskRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM task_completions WHERE user_id = $1`,
		userID,
	).Scan(&n)
	return n, err
}

// ListByUser returns the user's completions, newest first.
func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.TaskCompletion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, task_type, task_id, completed_at
		 FROM task_completions
		 WHERE user_id = $1
		 ORDER BY completed_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.TaskCompletion
	for rows.Next() {
		var c domain.TaskCompletion
		if err := rows.Scan(&c.ID, &c.UserID, &c.TaskType, &c.TaskID, &c.CompletedAt); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}
