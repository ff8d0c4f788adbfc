package transactionrepo

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
	"github.com/stretchr/testify/require"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

var txColumns = []string{"id", "user_id", "order_id", "original_id", "amount", "type", "status", "description", "created_at", "updated_at"}

func txRow(rows *pgxmock.Rows, tx domain.Transaction) *pgxmock.Rows {
	return rows.AddRow(tx.ID, tx.UserID, tx.OrderID, tx.OriginalID, tx.Amount, tx.Type, tx.Status, tx.Description, tx.CreatedAt, tx.UpdatedAt)
}

func sampleTx(status domain.TransactionStatus) domain.Transaction {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return domain.Transaction{
		ID:          10,
		UserID:      1,
		OrderID:     (*int64)(nil),
		OriginalID:  (*int64)(nil),
		Amount:      30000,
		Type:        domain.TransactionDeposit,
		Status:      status,
		Description: "top up",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`INSERT INTO transactions (user_id, order_id, original_id, amount, type, status, description) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id,`)
	want := sampleTx(domain.TransactionPending)
	in := &domain.Transaction{UserID: 1, Amount: 30000, Type: domain.TransactionDeposit, Status: domain.TransactionPending, Description: "top up"}

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.Transaction
	}{
		{
			name: "Successfully creates transaction",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(int64(1), (*int64)(nil), (*int64)(nil), int64(30000), domain.TransactionDeposit, domain.TransactionPending, "top up").
					WillReturnRows(txRow(pgxmock.NewRows(txColumns), want))
			},
			result: &want,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(int64(1), (*int64)(nil), (*int64)(nil), int64(30000), domain.TransactionDeposit, domain.TransactionPending, "top up").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Create(context.Background(), in)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`FROM transactions WHERE id = $1`)
	want := sampleTx(domain.TransactionSuccess)

	mock.ExpectQuery(query).WithArgs(int64(10)).WillReturnRows(txRow(pgxmock.NewRows(txColumns), want))
	tx, err := repo.GetByID(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, &want, tx)

	mock.ExpectQuery(query).WithArgs(int64(11)).WillReturnError(pgx.ErrNoRows)
	tx, err = repo.GetByID(context.Background(), 11)
	assert.NoError(t, err)
	assert.Nil(t, tx)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockByID(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`FROM transactions WHERE id = $1 FOR UPDATE`)
	want := sampleTx(domain.TransactionSuccess)

	mock.ExpectQuery(query).WithArgs(int64(10)).WillReturnRows(txRow(pgxmock.NewRows(txColumns), want))
	tx, err := repo.LockByID(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, &want, tx)

	mock.ExpectQuery(query).WithArgs(int64(11)).WillReturnError(pgx.ErrNoRows)
	tx, err = repo.LockByID(context.Background(), 11)
	assert.NoError(t, err)
	assert.Nil(t, tx)

	mock.ExpectQuery(query).WithArgs(int64(12)).WillReturnError(errors.New("database error"))
	_, err = repo.LockByID(context.Background(), 12)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RefundedAmount(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE original_id = $1 AND type = 'REFUND' AND status <> 'FAILED'`)

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		expectErr bool
		result    int64
	}{
		{
			name: "Sums earlier refunds",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(query).WithArgs(int64(50)).
					WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(1500)))
			},
			result: 1500,
		},
		{
			name: "No refunds yet",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(query).WithArgs(int64(50)).
					WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(0)))
			},
		},
		{
			name: "Database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(query).WithArgs(int64(50)).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := NewMock(t)
			tt.mockSetup(mock)

			total, err := repo.RefundedAmount(context.Background(), 50)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, total)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_SetStatus(t *testing.T) {
	update := regexp.QuoteMeta(`UPDATE transactions SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`)
	selectByID := regexp.QuoteMeta(`FROM transactions WHERE id = $1`)

	t.Run("Wins the transition", func(t *testing.T) {
		repo, mock := NewMock(t)
		want := sampleTx(domain.TransactionSuccess)
		mock.ExpectQuery(update).
			WithArgs(int64(10), domain.TransactionPending, domain.TransactionSuccess).
			WillReturnRows(txRow(pgxmock.NewRows(txColumns), want))

		tx, changed, err := repo.SetStatus(context.Background(), 10, domain.TransactionPending, domain.TransactionSuccess)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.TransactionSuccess, tx.Status)
	})

	t.Run("Already terminal returns stored record", func(t *testing.T) {
		repo, mock := NewMock(t)
		stored := sampleTx(domain.TransactionFailed)
		mock.ExpectQuery(update).
			WithArgs(int64(10), domain.TransactionPending, domain.TransactionSuccess).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(selectByID).WithArgs(int64(10)).
			WillReturnRows(txRow(pgxmock.NewRows(txColumns), stored))

		tx, changed, err := repo.SetStatus(context.Background(), 10, domain.TransactionPending, domain.TransactionSuccess)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, &stored, tx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing transaction", func(t *testing.T) {
		repo, mock := NewMock(t)
		mock.ExpectQuery(update).
			WithArgs(int64(12), domain.TransactionPending, domain.TransactionFailed).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(selectByID).WithArgs(int64(12)).WillReturnError(pgx.ErrNoRows)

		tx, changed, err := repo.SetStatus(context.Background(), 12, domain.TransactionPending, domain.TransactionFailed)
		assert.NoError(t, err)
		assert.False(t, changed)
		assert.Nil(t, tx)
	})

	t.Run("Database error", func(t *testing.T) {
		repo, mock := NewMock(t)
		mock.ExpectQuery(update).
			WithArgs(int64(10), domain.TransactionPending, domain.TransactionFailed).
			WillReturnError(errors.New("database error"))

		_, changed, err := repo.SetStatus(context.Background(), 10, domain.TransactionPending, domain.TransactionFailed)
		assert.Error(t, err)
		assert.False(t, changed)
	})
}

func TestRepository_GetByUserID(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`)
	first := sampleTx(domain.TransactionSuccess)
	second := sampleTx(domain.TransactionPending)
	second.ID = 11

	rows := txRow(txRow(pgxmock.NewRows(txColumns), first), second)
	mock.ExpectQuery(query).WithArgs(int64(1), 20).WillReturnRows(rows)

	result, err := repo.GetByUserID(context.Background(), 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, []domain.Transaction{first, second}, result)

	mock.ExpectQuery(query).WithArgs(int64(1), 20).WillReturnError(errors.New("database error"))
	_, err = repo.GetByUserID(context.Background(), 1, 20)
	assert.Error(t, err)
}
