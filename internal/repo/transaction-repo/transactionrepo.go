package transactionrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const columns = `id, user_id, order_id, original_id, amount, type, status, description, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scan(row pgx.Row, tx *domain.Transaction) error {
	return row.Scan(&tx.ID, &tx.UserID, &tx.OrderID, &tx.OriginalID, &tx.Amount, &tx.Type, &tx.Status,
		&tx.Description, &tx.CreatedAt, &tx.UpdatedAt)
}

func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, order_id, original_id, amount, type, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + columns
	var created domain.Transaction
	err := scan(r.db.QueryRow(ctx, query, tx.UserID, tx.OrderID, tx.OriginalID, tx.Amount, tx.Type, tx.Status, tx.Description), &created)
	if err != nil {
		zap.L().Error("can't save transaction", zap.Error(err))
		return nil, err
	}
	return &created, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + columns + ` FROM transactions WHERE id = $1`
	var tx domain.Transaction
	if err := scan(r.db.QueryRow(ctx, query, id), &tx); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find transaction", zap.Error(err))
		return nil, err
	}
	return &tx, nil
}

// LockByID loads a transaction and holds its row lock until the unit of work ends.
func (r *Repository) LockByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + columns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	var tx domain.Transaction
	if err := scan(r.db.QueryRow(ctx, query, id), &tx); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't lock transaction", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &tx, nil
}

// RefundedAmount sums the refunds linked to originalID that have not failed.
func (r *Repository) RefundedAmount(ctx context.Context, originalID int64) (int64, error) {
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM transactions
        WHERE original_id = $1 AND type = 'REFUND' AND status <> 'FAILED'
    `
	var total int64
	if err := r.db.QueryRow(ctx, query, originalID).Scan(&total); err != nil {
		zap.L().Error("failed to sum refunds", zap.Int64("original_id", originalID), zap.Error(err))
		return 0, err
	}
	return total, nil
}

// SetStatus moves a transaction from one status to another only if it is still in
// from. When another caller got there first it returns the stored record and false.
func (r *Repository) SetStatus(ctx context.Context, id int64, from, to domain.TransactionStatus) (*domain.Transaction, bool, error) {
	query := `
		UPDATE transactions
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + columns
	var tx domain.Transaction
	err := scan(r.db.QueryRow(ctx, query, id, from, to), &tx)
	if err == nil {
		return &tx, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		zap.L().Error("failed to update transaction status", zap.Int64("id", id), zap.Error(err))
		return nil, false, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	query := `
        SELECT ` + columns + `
        FROM transactions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		zap.L().Error("failed to fetch transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := scan(rows, &tx); err != nil {
			zap.L().Error("failed to scan transaction row", zap.Error(err))
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}
