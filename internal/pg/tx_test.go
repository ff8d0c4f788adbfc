package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func NewMock(t *testing.T) (*Manager, *Conn, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return NewTXManager(mockDB), New(mockDB), mockDB
}

func TestManager_Begin(t *testing.T) {
	errFn := errors.New("fn failed")

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		fn        func(m *Manager, conn *Conn) TransactionalFn
		expectErr error
	}{
		{
			name: "Commit on success",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE users").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
			fn: func(_ *Manager, conn *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					assert.True(t, InTx(ctx))
					_, err := conn.Exec(ctx, "UPDATE users SET balance = balance + 1")
					return err
				}
			},
		},
		{
			name: "Rollback on error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(_ *Manager, _ *Conn) TransactionalFn {
				return func(ctx context.Context) error { return errFn }
			},
			expectErr: errFn,
		},
		{
			name: "Nested begin joins outer unit of work",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(m *Manager, _ *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					return m.Begin(ctx, func(ctx context.Context) error { return nil })
				}
			},
		},
		{
			name: "Begin error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin().WillReturnError(errors.New("no connection"))
			},
			fn: func(_ *Manager, _ *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					t.Error("fn must not run")
					return nil
				}
			},
			expectErr: errors.New("begin tx: no connection"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, conn, mock := NewMock(t)
			tt.mockSetup(mock)

			err := m.Begin(context.Background(), tt.fn(m, conn))
			if tt.expectErr != nil {
				assert.EqualError(t, err, tt.expectErr.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestManager_Savepoint(t *testing.T) {
	errFn := errors.New("debit failed")

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
	}{
		{
			name: "Failed savepoint keeps the outer unit",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE users").WillReturnError(errFn)
				mock.ExpectRollback()
				mock.ExpectExec("UPDATE transactions").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "Savepoint begin error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectBegin().WillReturnError(errors.New("no savepoint"))
				mock.ExpectExec("UPDATE transactions").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, conn, mock := NewMock(t)
			tt.mockSetup(mock)

			err := m.Begin(context.Background(), func(ctx context.Context) error {
				spErr := m.Savepoint(ctx, func(ctx context.Context) error {
					_, err := conn.Exec(ctx, "UPDATE users SET balance = balance - 1")
					return err
				})
				assert.Error(t, spErr)
				_, err := conn.Exec(ctx, "UPDATE transactions SET status = 'FAILED'")
				return err
			})
			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestManager_SavepointWithoutTx(t *testing.T) {
	m, conn, mock := NewMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := m.Savepoint(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTx(ctx))
		_, err := conn.Exec(ctx, "UPDATE users SET balance = balance + 1")
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_BeginPanicRollsBack(t *testing.T) {
	m, _, mock := NewMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = m.Begin(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_WithoutTx(t *testing.T) {
	_, conn, mock := NewMock(t)
	mock.ExpectExec("DELETE FROM client_accounts").WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 1))

	tag, err := conn.Exec(context.Background(), "DELETE FROM client_accounts WHERE id = $1", int64(1))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), tag.RowsAffected())
	assert.False(t, InTx(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
