package discountrepo

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

func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	query := `
        SELECT id, code, discount_type, value, use_count, max_uses, expires_at, user_id, plan_id, is_active
        FROM discount_codes
        WHERE code = $1
    `
	var d domain.DiscountCode
	err := r.db.QueryRow(ctx, query, code).Scan(&d.ID, &d.Code, &d.DiscountType, &d.Value, &d.UseCount, &d.MaxUses,
		&d.ExpiresAt, &d.UserID, &d.PlanID, &d.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find discount code", zap.Error(err))
		return nil, err
	}
	return &d, nil
}

// IncrementUse consumes one use of the code. It returns false when the code has
// no uses left, which includes losing a race for the last one.
func (r *Repository) IncrementUse(ctx context.Context, id int64) (bool, error) {
	query := `
        UPDATE discount_codes
        SET use_count = use_count + 1
        WHERE id = $1 AND use_count < max_uses
    `
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		zap.L().Error("failed to increment discount use", zap.Int64("id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
