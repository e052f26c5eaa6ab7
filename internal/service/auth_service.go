package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"teleearn/internal/domain"
	"teleearn/internal/repository"
	"teleearn/internal/telegram"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WelcomeBonus is credited to users who register through a referral link.
const WelcomeBonus = 500

var (
	ErrInvalidInitData = errors.New("invalid telegram init data")
	ErrInvalidToken    = errors.New("invalid token")
)

// AuthService validates Telegram WebApp init data, gets or creates the
// user behind it and issues JWTs for the HTTP API.
type AuthService struct {
	botToken  string
	jwtSecret []byte
	tokenTTL  time.Duration

	ledger      *Ledger
	userRepo    *repository.UserRepository
	referralSvc *ReferralService
}

func NewAuthService(db *pgxpool.Pool, ledger *Ledger, referralSvc *ReferralService, botToken, jwtSecret string) *AuthService {
	return &AuthService{
		botToken:    botToken,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    24 * time.Hour,
		ledger:      ledger,
		userRepo:    repository.NewUserRepository(db),
		referralSvc: referralSvc,
	}
}

// AuthResult is the login response.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
	IsNew bool         `json:"is_new"`
}

// Login validates init data and returns a JWT for the user, creating
// the account on first contact. A referral code in start_param links
// the new user to the inviter and pays the welcome bonus.
func (s *AuthService) Login(ctx context.Context, initData string) (*AuthResult, error) {
	values, ok := telegram.ValidateInitData(initData, s.botToken)
	if !ok {
		return nil, ErrInvalidInitData
	}

	tgUser, err := telegram.ParseUser(values)
	if err != nil || tgUser.ID == 0 {
		return nil, ErrInvalidInitData
	}

	telegramID := strconv.FormatInt(tgUser.ID, 10)
	u, isNew, err := s.GetOrCreate(ctx, telegramID, tgUser.Username, tgUser.FirstName, tgUser.LastName, values.Get("start_param"))
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u, IsNew: isNew}, nil
}

// GetOrCreate looks the user up by Telegram id and creates the account
// on first contact. Both the WebApp login and the bot's /start land
// here. Creation applies the referral side effects: the welcome bonus
// for the referred user and the inviter's bonus via the referral
// service. The referral payload may be stale or bogus; that never
// blocks registration.
func (s *AuthService) GetOrCreate(ctx context.Context, telegramID, username, firstName, lastName, referralPayload string) (*domain.User, bool, error) {
	u, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return u, false, nil
	}
	if err != repository.ErrNotFound {
		return nil, false, err
	}

	referralCode := NormalizeReferralPayload(referralPayload)
	u = &domain.User{
		TelegramID:     telegramID,
		Username:       username,
		FirstName:      firstName,
		LastName:       lastName,
		ReferredByCode: referralCode,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, false, err
	}

	if referralCode != "" {
		if err := s.referralSvc.Link(ctx, u.ID, referralCode); err != nil {
			return nil, false, err
		}
		newPoints, err := s.ledger.Credit(ctx, u.ID, domain.BalancePoints, WelcomeBonus, domain.TxWelcomeBonus, nil)
		if err != nil {
			return nil, false, err
		}
		u.Points = newPoints
	}
	return u, true, nil
}

// NormalizeReferralPayload strips the bot deep-link prefixes and
// rejects anything that is not a 6-character alphanumeric code.
func NormalizeReferralPayload(payload string) string {
	payload = strings.TrimPrefix(payload, "ref_")
	payload = strings.TrimPrefix(payload, "r_")
	payload = strings.ToUpper(strings.TrimSpace(payload))
	if len(payload) != 6 {
		return ""
	}
	for _, c := range payload {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return payload
}

// IssueToken signs a JWT carrying the user id.
func (s *AuthService) IssueToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseToken verifies a JWT and returns the user id inside it.
func (s *AuthService) ParseToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int64(userID), nil
}
