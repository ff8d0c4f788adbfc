package accountrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const columns = `id, user_id, panel_id, inbound_id, plan_id, order_id, remote_uuid, email, expires_at,
        data_limit, data_used, status, enabled, config_url, tg_id, created_at, updated_at`

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

func scan(row pgx.Row, a *domain.ClientAccount) error {
	return row.Scan(&a.ID, &a.UserID, &a.PanelID, &a.InboundID, &a.PlanID, &a.OrderID, &a.RemoteUUID, &a.Email,
		&a.ExpiresAt, &a.DataLimit, &a.DataUsed, &a.Status, &a.Enabled, &a.ConfigURL, &a.TelegramID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *Repository) Create(ctx context.Context, a *domain.ClientAccount) (*domain.ClientAccount, error) {
	query := `
        INSERT INTO client_accounts (user_id, panel_id, inbound_id, plan_id, order_id, remote_uuid, email,
        expires_at, data_limit, status, enabled, config_url, tg_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING ` + columns
	var created domain.ClientAccount
	err := scan(r.db.QueryRow(ctx, query, a.UserID, a.PanelID, a.InboundID, a.PlanID, a.OrderID, a.RemoteUUID, a.Email,
		a.ExpiresAt, a.DataLimit, a.Status, a.Enabled, a.ConfigURL, a.TelegramID), &created)
	if err != nil {
		zap.L().Error("can't save client account", zap.String("remote_uuid", a.RemoteUUID), zap.Error(err))
		return nil, err
	}
	return &created, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ClientAccount, error) {
	query := `SELECT ` + columns + ` FROM client_accounts WHERE id = $1`
	var a domain.ClientAccount
	if err := scan(r.db.QueryRow(ctx, query, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find client account", zap.Error(err))
		return nil, err
	}
	return &a, nil
}

// Update stores the mutable part of an account: plan, expiry, limits, status and link.
func (r *Repository) Update(ctx context.Context, a *domain.ClientAccount) error {
	query := `
        UPDATE client_accounts
        SET plan_id = $2, expires_at = $3, data_limit = $4, status = $5, enabled = $6, config_url = $7, updated_at = now()
        WHERE id = $1
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, a.ID, a.PlanID, a.ExpiresAt, a.DataLimit, a.Status, a.Enabled, a.ConfigURL)
		if err != nil {
			zap.L().Error("failed to update client account", zap.Int64("id", a.ID), zap.Error(err))
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("client account %d: %w", a.ID, domain.ErrNotFound)
		}
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM client_accounts WHERE id = $1`, id)
	if err != nil {
		zap.L().Error("failed to delete client account", zap.Int64("id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetExpired returns ACTIVE accounts whose expiry is at or before now, oldest first.
func (r *Repository) GetExpired(ctx context.Context, now time.Time, limit int) ([]domain.ClientAccount, error) {
	query := `
        SELECT ` + columns + `
        FROM client_accounts
        WHERE status = 'ACTIVE' AND expires_at <= $1
        ORDER BY expires_at ASC
        LIMIT $2
    `
	return r.list(ctx, "expired", query, now, limit)
}

func (r *Repository) GetActiveByInbound(ctx context.Context, inboundID int64) ([]domain.ClientAccount, error) {
	query := `
        SELECT ` + columns + `
        FROM client_accounts
        WHERE status = 'ACTIVE' AND inbound_id = $1
    `
	return r.list(ctx, "active by inbound", query, inboundID)
}

func (r *Repository) GetByUserID(ctx context.Context, userID int64) ([]domain.ClientAccount, error) {
	query := `
        SELECT ` + columns + `
        FROM client_accounts
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	return r.list(ctx, "by user", query, userID)
}

func (r *Repository) list(ctx context.Context, what, query string, args ...any) ([]domain.ClientAccount, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get client accounts", zap.String("filter", what), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.ClientAccount
	for rows.Next() {
		var a domain.ClientAccount
		if err := scan(rows, &a); err != nil {
			zap.L().Error("can't scan client account row", zap.Error(err))
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
