package walletrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"go.uber.org/zap"
)

// Repository adjusts user balances. Every adjustment is a single statement so that
// concurrent units of work never lose an update.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	query := `
        SELECT balance
        FROM users
        WHERE id = $1
    `
	var balance int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		zap.L().Error("failed to get user balance", zap.Error(err))
		return 0, err
	}
	return balance, nil
}

// Credit adds amount to the balance and returns the new balance.
func (r *Repository) Credit(ctx context.Context, userID, amount int64) (int64, error) {
	query := `
		UPDATE users
		SET balance = balance + $2
		WHERE id = $1
		RETURNING balance
	`
	var balance int64
	err := r.db.QueryRow(ctx, query, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		zap.L().Error("failed to credit user balance", zap.Error(err))
		return 0, err
	}
	return balance, nil
}

// Debit subtracts amount only when the balance covers it. ok is false when it does not
// (or the user is gone); nothing is written in that case.
func (r *Repository) Debit(ctx context.Context, userID, amount int64) (balance int64, ok bool, err error) {
	query := `
		UPDATE users
		SET balance = balance - $2
		WHERE id = $1 AND balance >= $2
		RETURNING balance
	`
	err = r.db.QueryRow(ctx, query, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		zap.L().Error("failed to debit user balance", zap.Error(err))
		return 0, false, err
	}
	return balance, true, nil
}
