package discountrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_GetByCode(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`SELECT id, code, discount_type, value, use_count, max_uses, expires_at, user_id, plan_id, is_active FROM discount_codes WHERE code = $1`)
	columns := []string{"id", "code", "discount_type", "value", "use_count", "max_uses", "expires_at", "user_id", "plan_id", "is_active"}
	planID := int64(4)

	tests := []struct {
		name      string
		code      string
		mockSetup func()
		expectErr bool
		result    *domain.DiscountCode
	}{
		{
			name: "Code exists",
			code: "SPRING20",
			mockSetup: func() {
				rows := pgxmock.NewRows(columns).
					AddRow(int64(1), "SPRING20", domain.DiscountPercentage, int64(20), 3, 10, (*time.Time)(nil), (*int64)(nil), &planID, true)
				mock.ExpectQuery(query).WithArgs("SPRING20").WillReturnRows(rows)
			},
			result: &domain.DiscountCode{
				ID: 1, Code: "SPRING20", DiscountType: domain.DiscountPercentage, Value: 20,
				UseCount: 3, MaxUses: 10, PlanID: &planID, IsActive: true,
			},
		},
		{
			name: "Code does not exist",
			code: "NOPE",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("NOPE").WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			code: "SPRING20",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("SPRING20").WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.GetByCode(context.Background(), tt.code)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestRepository_IncrementUse(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE discount_codes SET use_count = use_count + 1 WHERE id = $1 AND use_count < max_uses`)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		ok        bool
	}{
		{
			name: "Use consumed",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			ok: true,
		},
		{
			name: "No uses left",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(int64(1)).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			ok, err := repo.IncrementUse(context.Background(), 1)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.ok, ok)
		})
	}
}
