package receiptrepo

import (
	"context"
	"errors"
	"time"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const columns = `id, user_id, card_number, amount, status, transaction_id, order_id, tracking_code,
        submitted_at, responded_at, admin_id, reject_reason`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scan(row pgx.Row, r *domain.ReceiptLog) error {
	return row.Scan(&r.ID, &r.UserID, &r.CardNumber, &r.Amount, &r.Status, &r.TransactionID, &r.OrderID,
		&r.TrackingCode, &r.SubmittedAt, &r.RespondedAt, &r.AdminID, &r.RejectReason)
}

func (r *Repository) Create(ctx context.Context, receipt *domain.ReceiptLog) (*domain.ReceiptLog, error) {
	query := `
		INSERT INTO receipt_logs (user_id, card_number, amount, status, transaction_id, order_id, tracking_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + columns
	var created domain.ReceiptLog
	err := scan(r.db.QueryRow(ctx, query, receipt.UserID, receipt.CardNumber, receipt.Amount, receipt.Status,
		receipt.TransactionID, receipt.OrderID, receipt.TrackingCode), &created)
	if err != nil {
		zap.L().Error("can't save receipt", zap.Error(err))
		return nil, err
	}
	return &created, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ReceiptLog, error) {
	query := `SELECT ` + columns + ` FROM receipt_logs WHERE id = $1`
	var receipt domain.ReceiptLog
	if err := scan(r.db.QueryRow(ctx, query, id), &receipt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find receipt", zap.Error(err))
		return nil, err
	}
	return &receipt, nil
}

// Resolve finalizes a PENDING receipt. It returns false with the stored record when the
// receipt was already resolved by someone else.
func (r *Repository) Resolve(ctx context.Context, id int64, to domain.ReceiptStatus, adminID *int64, reason *string) (*domain.ReceiptLog, bool, error) {
	query := `
		UPDATE receipt_logs
		SET status = $2, admin_id = $3, reject_reason = $4, responded_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + columns
	var receipt domain.ReceiptLog
	err := scan(r.db.QueryRow(ctx, query, id, to, adminID, reason), &receipt)
	if err == nil {
		return &receipt, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		zap.L().Error("failed to resolve receipt", zap.Int64("id", id), zap.Error(err))
		return nil, false, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

// GetStale returns PENDING receipts submitted before the given moment.
func (r *Repository) GetStale(ctx context.Context, before time.Time, limit int) ([]domain.ReceiptLog, error) {
	query := `
        SELECT ` + columns + `
        FROM receipt_logs
        WHERE status = 'PENDING' AND submitted_at < $1
        ORDER BY submitted_at ASC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, before, limit)
	if err != nil {
		zap.L().Error("can't get stale receipts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var receipts []domain.ReceiptLog
	for rows.Next() {
		var receipt domain.ReceiptLog
		if err := scan(rows, &receipt); err != nil {
			zap.L().Error("can't scan receipt row", zap.Error(err))
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, rows.Err()
}
