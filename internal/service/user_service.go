package service

import (
	"context"
	"time"

	"teleearn/internal/domain"
	"teleearn/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserService serves profile and history reads.
type UserService struct {
	userRepo    *repository.UserRepository
	catalogRepo *repository.CatalogRepository
	txRepo      *repository.TransactionRepository
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{
		userRepo:    repository.NewUserRepository(db),
		catalogRepo: repository.NewCatalogRepository(db),
		txRepo:      repository.NewTransactionRepository(db),
	}
}

// Profile is the user plus derived ad and bonus status, so the client
// renders countdowns without extra round trips.
type Profile struct {
	User            *domain.User `json:"user"`
	AdsWatchedToday int          `json:"ads_watched_today"`
	AdDailyLimit    int          `json:"ad_daily_limit"`
	AdWaitMs        int64        `json:"ad_wait_ms"`
	BonusWaitMs     int64        `json:"bonus_wait_ms"`
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	settings, err := s.catalogRepo.GetAdSettings(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Profile{
		User:            u,
		AdsWatchedToday: u.EffectiveAdsWatched(now),
		AdDailyLimit:    settings.DailyLimit,
	}
	if d := u.CanWatchAd(settings, now); !d.Allowed {
		p.AdWaitMs = d.Wait.Milliseconds()
	}
	if d := u.CanClaimDailyBonus(now); !d.Allowed {
		p.BonusWaitMs = d.Wait.Milliseconds()
	}
	return p, nil
}

// GetTransactions returns the user's recent journal history.
func (s *UserService) GetTransactions(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	return s.txRepo.GetByUserID(ctx, userID, limit)
}
