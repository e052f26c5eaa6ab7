package repository

import (
	"context"
	"errors"

	"teleearn/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository reads the admin-managed catalogs: ad settings,
// tasks, quests, investment packages and exchange rates.
type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetAdSettings returns the active ad settings row. When the admin has
// not configured one yet, built-in defaults apply.
func (r *CatalogRepository) GetAdSettings(ctx context.Context) (*domain.AdSettings, error) {
	var s domain.AdSettings
	err := r.db.QueryRow(ctx,
		`SELECT id, points_per_view, daily_limit, cooldown_seconds, is_active
		 FROM ad_settings
		 WHERE is_active = true
		 ORDER BY id DESC
		 LIMIT 1`,
	).Scan(&s.ID, &s.PointsPerView, &s.DailyLimit, &s.CooldownSeconds, &s.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.AdSettings{PointsPerView: 500, DailyLimit: 50, CooldownSeconds: 15, IsActive: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetTask returns one task of the given type, whichever table it lives in.
func (r *CatalogRepository) GetTask(ctx context.Context, taskType domain.TaskType, id int64) (*domain.Task, error) {
	var t domain.Task
	t.Type = taskType
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, url, reward, is_active, created_at
		 FROM tasks
		 WHERE id = $1 AND task_type = $2`,
		id, taskType,
	).Scan(&t.ID, &t.Name, &t.Description, &t.URL, &t.Reward, &t.IsActive, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetActiveTasks returns all active tasks of a type.
func (r *CatalogRepository) GetActiveTasks(ctx context.Context, taskType domain.TaskType) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, url, reward, is_active, created_at
		 FROM tasks
		 WHERE task_type = $1 AND is_active = true
		 ORDER BY id`,
		taskType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Task
	for rows.Next() {
		t := &domain.Task{Type: taskType}
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.URL, &t.Reward, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetActiveQuests returns all active quests.
func (r *CatalogRepository) GetActiveQuests(ctx context.Context) ([]*domain.Quest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, quest_type, target, reward, icon, is_active
		 FROM quests
		 WHERE is_active = true
		 ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Quest
	for rows.Next() {
		var q domain.Quest
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.Type, &q.Target, &q.Reward, &q.Icon, &q.IsActive); err != nil {
			return nil, err
		}
		result = append(result, &q)
	}
	return result, rows.Err()
}

// GetQuestByID returns one quest, active or not.
func (r *CatalogRepository) GetQuestByID(ctx context.Context, id int64) (*domain.Quest, error) {
	var q domain.Quest
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, quest_type, target, reward, icon, is_active
		 FROM quests
		 WHERE id = $1`,
		id,
	).Scan(&q.ID, &q.Title, &q.Description, &q.Type, &q.Target, &q.Reward, &q.Icon, &q.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

const packageColumns = `id, title, package_type, price, number_of_days,
	reward_per_task, reward_currency, ad_reward_percentage, is_active, created_at`

func scanPackage(row pgx.Row) (*domain.InvestmentPackage, error) {
	var p domain.InvestmentPackage
	err := row.Scan(&p.ID, &p.Title, &p.Type, &p.Price, &p.NumberOfDays,
		&p.RewardPerTask, &p.RewardCurrency, &p.AdRewardPercentage, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPackageByID returns one investment package.
func (r *CatalogRepository) GetPackageByID(ctx context.Context, id int64) (*domain.InvestmentPackage, error) {
	return scanPackage(r.db.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM investment_packages WHERE id = $1`, id))
}

// GetActivePackages returns the packages open for subscription.
func (r *CatalogRepository) GetActivePackages(ctx context.Context) ([]*domain.InvestmentPackage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+packageColumns+` FROM investment_packages
		 WHERE is_active = true
		 ORDER BY price, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.InvestmentPackage
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetActiveRate returns the active points->currency exchange rate, or
// ErrNotFound when no active row exists (callers fall back to defaults).
func (r *CatalogRepository) GetActiveRate(ctx context.Context, toCurrency string) (*domain.ExchangeRate, error) {
	var er domain.ExchangeRate
	err := r.db.QueryRow(ctx,
		`SELECT id, from_currency, to_currency, rate, is_active, updated_at
		 FROM exchange_rates
		 WHERE from_currency = 'points' AND to_currency = $1 AND is_active = true
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		toCurrency,
	).Scan(&er.ID, &er.FromCurrency, &er.ToCurrency, &er.Rate, &er.IsActive, &er.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &er, nil
}
