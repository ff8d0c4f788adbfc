package authservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/pkg/auth"
)

type Repo interface {
	Upsert(ctx context.Context, telegramID int64, username string) (*domain.User, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("telegram login is not configured")
)

const (
	tokenTTL    = 24 * time.Hour
	initDataTTL = 24 * time.Hour
)

type Session struct {
	User  *domain.User
	Token string
	Admin bool
}

type webAppUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Service logs chat users in with the init data a Telegram Web App hands to the page.
type Service struct {
	userRepo        Repo
	jwtService      auth.JWTServiceInterface
	botToken        string
	adminTelegramID int64
	now             func() time.Time
	validate        func(token, initData string) (bool, error)
}

func New(repo Repo, jwtService auth.JWTServiceInterface, botToken string, adminTelegramID int64) *Service {
	return &Service{
		userRepo:        repo,
		jwtService:      jwtService,
		botToken:        botToken,
		adminTelegramID: adminTelegramID,
		now:             time.Now,
		validate:        tgbotapi.ValidateWebAppData,
	}
}

func (s *Service) Login(ctx context.Context, initData string) (*Session, error) {
	if s.botToken == "" {
		return nil, ErrLoginDisabled
	}
	if ok, err := s.validate(s.botToken, initData); err != nil || !ok {
		zap.L().Info("invalid web app init data", zap.Error(err))
		return nil, ErrInvalidCredentials
	}

	tgUser, err := s.parse(initData)
	if err != nil {
		zap.L().Info("unusable web app init data", zap.Error(err))
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.Upsert(ctx, tgUser.ID, tgUser.Username)
	if err != nil {
		zap.L().Error("can't register user: ", zap.Error(err))
		return nil, err
	}

	admin := s.adminTelegramID != 0 && user.TelegramID == s.adminTelegramID
	token, err := s.jwtService.GenerateJWT(user.ID, admin, s.now().Add(tokenTTL))
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return nil, err
	}

	zap.L().Info("user successfully authenticated", zap.Int64("user_id", user.ID), zap.Bool("admin", admin))
	return &Session{User: user, Token: token, Admin: admin}, nil
}

func (s *Service) parse(initData string) (*webAppUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, errors.New("auth_date missing")
	}
	if s.now().Sub(time.Unix(authDate, 0)) > initDataTTL {
		return nil, errors.New("init data expired")
	}

	var u webAppUser
	if err := json.Unmarshal([]byte(values.Get("user")), &u); err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, errors.New("user id missing")
	}
	return &u, nil
}
