package orderrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const columns = `id, user_id, plan_id, inbound_id, amount, final_amount, discount_code_id, status, client_account_id, created_at, updated_at`

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

func scan(row pgx.Row, o *domain.Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.PlanID, &o.InboundID, &o.Amount, &o.FinalAmount, &o.DiscountCodeID,
		&o.Status, &o.ClientAccountID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
        SELECT ` + columns + `
        FROM orders
        WHERE id = $1
    `
	var order domain.Order
	err := scan(r.db.QueryRow(ctx, query, id), &order)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}
	return &order, nil
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
        INSERT INTO orders (user_id, plan_id, inbound_id, amount, final_amount, discount_code_id, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + columns
	var created domain.Order
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := scan(r.db.QueryRow(ctx, query, order.UserID, order.PlanID, order.InboundID, order.Amount,
			order.FinalAmount, order.DiscountCodeID, order.Status), &created)
		if err != nil {
			zap.L().Error("can't save order", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// SetStatus moves the order only if it is still in from.
func (r *Repository) SetStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error) {
	query := `
        UPDATE orders
        SET status = $3, updated_at = now()
        WHERE id = $1 AND status = $2
    `
	tag, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		zap.L().Error("failed to update order status", zap.Int64("id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Complete links a PAID order to the account that fulfilled it.
func (r *Repository) Complete(ctx context.Context, id, accountID int64) (bool, error) {
	query := `
        UPDATE orders
        SET status = 'COMPLETED', client_account_id = $2, updated_at = now()
        WHERE id = $1 AND status = 'PAID'
    `
	tag, err := r.db.Exec(ctx, query, id, accountID)
	if err != nil {
		zap.L().Error("failed to complete order", zap.Int64("id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
