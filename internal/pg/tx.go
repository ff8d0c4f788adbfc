package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TransactionalFn func(ctx context.Context) error

type TXManager interface {
	Begin(ctx context.Context, fn TransactionalFn) error
	Savepoint(ctx context.Context, fn TransactionalFn) error
}

type txKey struct{}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// InTx reports whether ctx already carries a unit of work.
func InTx(ctx context.Context) bool {
	return txFromContext(ctx) != nil
}

type Manager struct {
	pool Pool
}

func NewTXManager(pool Pool) *Manager {
	return &Manager{pool: pool}
}

// Begin runs fn in one database transaction. It commits when fn returns nil and rolls
// back on error or panic. A Begin inside an existing unit of work joins it.
func (m *Manager) Begin(ctx context.Context, fn TransactionalFn) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err = run(ctx, tx, fn); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Savepoint runs fn in a nested transaction of the unit of work in ctx. A failing fn
// undoes only its own writes and the outer unit stays usable. Without a unit of work
// it is the same as Begin.
func (m *Manager) Savepoint(ctx context.Context, fn TransactionalFn) (err error) {
	outer := txFromContext(ctx)
	if outer == nil {
		return m.Begin(ctx, fn)
	}

	sp, err := outer.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}
	if err = run(ctx, sp, fn); err != nil {
		return err
	}
	if err = sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// run calls fn with tx in ctx and rolls tx back on error or panic.
func run(ctx context.Context, tx pgx.Tx, fn TransactionalFn) error {
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			zap.L().Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return nil
}
