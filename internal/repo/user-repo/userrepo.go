package userrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return repo.findOne(ctx, "SELECT id, telegram_id, username, balance, created_at FROM users WHERE id = $1", id)
}

func (repo *Repository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return repo.findOne(ctx, "SELECT id, telegram_id, username, balance, created_at FROM users WHERE telegram_id = $1", telegramID)
}

func (repo *Repository) findOne(ctx context.Context, query string, arg int64) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.TelegramID, &user.Username, &user.Balance, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// Upsert registers a chat user on first contact and keeps the username fresh afterwards.
func (repo *Repository) Upsert(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	query := `
		INSERT INTO users (telegram_id, username)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, telegram_id, username, balance, created_at
	`
	var user domain.User
	err := repo.db.QueryRow(ctx, query, telegramID, username).Scan(&user.ID, &user.TelegramID, &user.Username, &user.Balance, &user.CreatedAt)
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}
