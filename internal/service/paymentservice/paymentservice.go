package paymentservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"go.uber.org/zap"
)

type WalletRepo interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	Credit(ctx context.Context, userID, amount int64) (int64, error)
	Debit(ctx context.Context, userID, amount int64) (int64, bool, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	LockByID(ctx context.Context, id int64) (*domain.Transaction, error)
	RefundedAmount(ctx context.Context, originalID int64) (int64, error)
	SetStatus(ctx context.Context, id int64, from, to domain.TransactionStatus) (*domain.Transaction, bool, error)
	GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error)
}

const historyLimit = 50

// Service is the ledger. Every wallet change goes through a Transaction and happens
// exactly once, when that Transaction leaves PENDING. All writes join the caller's unit
// of work when there is one.
type Service struct {
	wallet    WalletRepo
	txs       TransactionRepo
	txManager pg.TXManager
}

func New(wallet WalletRepo, txs TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		wallet:    wallet,
		txs:       txs,
		txManager: txManager,
	}
}

func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	balance, err := s.wallet.GetBalance(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Int64("user_id", userID), zap.Error(err))
		return 0, err
	}
	return balance, nil
}

func (s *Service) History(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	txs, err := s.txs.GetByUserID(ctx, userID, historyLimit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list transactions", Err: err}
	}
	return txs, nil
}

// ProcessIncomingPayment records a deposit and credits the wallet with it.
func (s *Service) ProcessIncomingPayment(ctx context.Context, userID, amount int64, description string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.NewValidationError("amount", "must be positive")
	}

	var result *domain.Transaction
	_, failure, err := s.withFailure(ctx, func(ctx context.Context) (*domain.Transaction, error) {
		tx, err := s.createPending(ctx, &domain.Transaction{
			UserID:      userID,
			Amount:      amount,
			Type:        domain.TransactionDeposit,
			Description: description,
		})
		if err != nil {
			return nil, err
		}

		if err := s.txManager.Savepoint(ctx, func(ctx context.Context) error {
			_, err := s.wallet.Credit(ctx, userID, amount)
			return err
		}); err != nil {
			return tx, &domain.PersistenceError{Op: "credit wallet", Err: err}
		}

		result, err = s.settle(ctx, tx.ID, domain.TransactionSuccess)
		return nil, err
	})
	if err == nil {
		err = failure
	}
	if err != nil {
		zap.L().Error("incoming payment failed", zap.Int64("user_id", userID), zap.Int64("amount", amount), zap.Error(err))
		return nil, err
	}
	zap.L().Info("incoming payment processed", zap.Int64("user_id", userID), zap.Int64("tx_id", result.ID), zap.Int64("amount", amount))
	return result, nil
}

// PayFromWallet charges the wallet. A zero amount is a free purchase and leaves no
// Transaction behind; a shortfall is rejected before anything is written.
func (s *Service) PayFromWallet(ctx context.Context, userID, amount int64, description string, orderID *int64) (*domain.Transaction, error) {
	if amount < 0 {
		return nil, domain.NewValidationError("amount", "must not be negative")
	}
	if amount == 0 {
		return nil, nil
	}

	balance, err := s.wallet.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, &domain.InsufficientFundsError{UserID: userID, Balance: balance, Required: amount}
	}

	var result *domain.Transaction
	failed, failure, err := s.withFailure(ctx, func(ctx context.Context) (*domain.Transaction, error) {
		tx, err := s.createPending(ctx, &domain.Transaction{
			UserID:      userID,
			OrderID:     orderID,
			Amount:      -amount,
			Type:        domain.TransactionPurchase,
			Description: description,
		})
		if err != nil {
			return nil, err
		}

		var (
			left int64
			ok   bool
		)
		if err := s.txManager.Savepoint(ctx, func(ctx context.Context) (err error) {
			left, ok, err = s.wallet.Debit(ctx, userID, amount)
			return err
		}); err != nil {
			return tx, &domain.PersistenceError{Op: "debit wallet", Err: err}
		}
		if !ok {
			// a concurrent debit got there first
			return tx, &domain.InsufficientFundsError{UserID: userID, Balance: left, Required: amount}
		}

		result, err = s.settle(ctx, tx.ID, domain.TransactionSuccess)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	if failure != nil {
		if errors.Is(failure, domain.ErrInsufficientFunds) {
			zap.L().Warn("wallet debit lost a race", zap.Int64("user_id", userID), zap.Int64("amount", amount))
			return failed, failure
		}
		zap.L().Error("wallet debit failed", zap.Int64("user_id", userID), zap.Int64("amount", amount), zap.Error(failure))
		return nil, failure
	}
	zap.L().Info("wallet charged", zap.Int64("user_id", userID), zap.Int64("tx_id", result.ID), zap.Int64("amount", amount))
	return result, nil
}

// RefundTransaction credits amount back. When originalID is given the refund is linked
// to it and the original must be a settled transaction of the same user.
func (s *Service) RefundTransaction(ctx context.Context, userID, amount int64, description string, originalID *int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.NewValidationError("amount", "must be positive")
	}

	var result *domain.Transaction
	_, failure, err := s.withFailure(ctx, func(ctx context.Context) (*domain.Transaction, error) {
		refund := &domain.Transaction{
			UserID:      userID,
			OriginalID:  originalID,
			Amount:      amount,
			Type:        domain.TransactionRefund,
			Description: description,
		}
		if originalID != nil {
			orderID, err := s.checkRefundable(ctx, userID, *originalID, amount)
			if err != nil {
				return nil, err
			}
			refund.OrderID = orderID
		}

		tx, err := s.createPending(ctx, refund)
		if err != nil {
			return nil, err
		}
		if err := s.txManager.Savepoint(ctx, func(ctx context.Context) error {
			_, err := s.wallet.Credit(ctx, userID, amount)
			return err
		}); err != nil {
			return tx, &domain.PersistenceError{Op: "credit wallet", Err: err}
		}
		result, err = s.settle(ctx, tx.ID, domain.TransactionSuccess)
		return nil, err
	})
	if err == nil {
		err = failure
	}
	if err != nil {
		zap.L().Error("refund failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	zap.L().Info("refund issued", zap.Int64("user_id", userID), zap.Int64("tx_id", result.ID), zap.Int64("amount", amount))
	return result, nil
}

// checkRefundable locks the original transaction so that refunds of it are counted one
// at a time, and returns the order the refund belongs to.
func (s *Service) checkRefundable(ctx context.Context, userID, originalID, amount int64) (*int64, error) {
	original, err := s.txs.LockByID(ctx, originalID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load original transaction", Err: err}
	}
	if original == nil {
		return nil, fmt.Errorf("transaction %d: %w", originalID, domain.ErrNotFound)
	}
	if original.UserID != userID {
		return nil, domain.NewValidationError("original_id", "belongs to another user")
	}
	if original.Status != domain.TransactionSuccess {
		return nil, domain.NewValidationError("original_id", "transaction is not settled")
	}
	refunded, err := s.txs.RefundedAmount(ctx, originalID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "sum refunds", Err: err}
	}
	if refunded+amount > abs(original.Amount) {
		return nil, domain.NewValidationError("amount", fmt.Sprintf("exceeds what is left to refund (%d)", abs(original.Amount)-refunded))
	}
	return original.OrderID, nil
}

// CreatePending records a Transaction that will be settled later with Complete or Fail.
func (s *Service) CreatePending(ctx context.Context, userID, amount int64, txType domain.TransactionType, description string, orderID *int64) (*domain.Transaction, error) {
	if amount == 0 {
		return nil, domain.NewValidationError("amount", "must not be zero")
	}
	return s.createPending(ctx, &domain.Transaction{
		UserID:      userID,
		OrderID:     orderID,
		Amount:      amount,
		Type:        txType,
		Description: description,
	})
}

// Complete settles a PENDING Transaction as SUCCESS and applies its signed amount to
// the wallet. Only the caller that wins the transition touches the wallet; everybody
// else gets the stored record and changed=false.
func (s *Service) Complete(ctx context.Context, txID int64) (tx *domain.Transaction, changed bool, err error) {
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		tx, changed, err = s.claim(ctx, txID, domain.TransactionSuccess)
		if err != nil || !changed {
			return err
		}

		if tx.Amount > 0 {
			if _, err := s.wallet.Credit(ctx, tx.UserID, tx.Amount); err != nil {
				return &domain.PersistenceError{Op: "credit wallet", Err: err}
			}
			return nil
		}
		left, ok, err := s.wallet.Debit(ctx, tx.UserID, -tx.Amount)
		if err != nil {
			return &domain.PersistenceError{Op: "debit wallet", Err: err}
		}
		if !ok {
			return &domain.InsufficientFundsError{UserID: tx.UserID, Balance: left, Required: -tx.Amount}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return tx, changed, nil
}

// Fail settles a PENDING Transaction as FAILED. The wallet is never touched.
func (s *Service) Fail(ctx context.Context, txID int64) (*domain.Transaction, bool, error) {
	return s.claim(ctx, txID, domain.TransactionFailed)
}

func (s *Service) claim(ctx context.Context, txID int64, to domain.TransactionStatus) (*domain.Transaction, bool, error) {
	tx, changed, err := s.txs.SetStatus(ctx, txID, domain.TransactionPending, to)
	if err != nil {
		return nil, false, &domain.PersistenceError{Op: "update transaction status", Err: err}
	}
	if tx == nil {
		return nil, false, fmt.Errorf("transaction %d: %w", txID, domain.ErrNotFound)
	}
	if !changed {
		zap.L().Info("transaction already settled", zap.Int64("tx_id", txID), zap.String("status", tx.Status.String()))
	}
	return tx, changed, nil
}

func (s *Service) createPending(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	tx.Status = domain.TransactionPending
	created, err := s.txs.Create(ctx, tx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "insert transaction", Err: err}
	}
	return created, nil
}

func (s *Service) settle(ctx context.Context, txID int64, to domain.TransactionStatus) (*domain.Transaction, error) {
	tx, changed, err := s.claim(ctx, txID, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, &domain.IntegrityError{Entity: "transaction", ID: txID, Reason: "settled concurrently"}
	}
	return tx, nil
}

// withFailure runs fn in a unit of work. When fn hands back a Transaction together
// with an error, that Transaction is settled as FAILED and the unit commits, so the
// failed record survives; it comes back with the error as failure. Any other error discards
// the unit.
func (s *Service) withFailure(ctx context.Context, fn func(ctx context.Context) (*domain.Transaction, error)) (failed *domain.Transaction, failure error, err error) {
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		tx, err := fn(ctx)
		if err == nil || tx == nil {
			return err
		}
		settled, settleErr := s.settle(ctx, tx.ID, domain.TransactionFailed)
		if settleErr != nil {
			return errors.Join(err, settleErr)
		}
		failed, failure = settled, err
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return failed, failure, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
