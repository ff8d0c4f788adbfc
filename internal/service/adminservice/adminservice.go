package adminservice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/vpnshop/internal/domain"
)

type AccountRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.ClientAccount, error)
}

type TransactionRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
}

type Provisioner interface {
	Deactivate(ctx context.Context, account *domain.ClientAccount) (*domain.ClientAccount, error)
	Delete(ctx context.Context, account *domain.ClientAccount) error
}

type Payments interface {
	RefundTransaction(ctx context.Context, userID, amount int64, description string, originalID *int64) (*domain.Transaction, error)
	ProcessIncomingPayment(ctx context.Context, userID, amount int64, description string) (*domain.Transaction, error)
}

// Service resolves admin actions addressed by id into the saga calls that carry them out.
type Service struct {
	accounts     AccountRepo
	transactions TransactionRepo
	provisioner  Provisioner
	payments     Payments
}

func New(accounts AccountRepo, transactions TransactionRepo, provisioner Provisioner, payments Payments) *Service {
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		provisioner:  provisioner,
		payments:     payments,
	}
}

func (s *Service) DeactivateAccount(ctx context.Context, accountID int64) (*domain.ClientAccount, error) {
	account, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.provisioner.Deactivate(ctx, account)
}

func (s *Service) DeleteAccount(ctx context.Context, accountID int64) error {
	account, err := s.account(ctx, accountID)
	if err != nil {
		return err
	}
	return s.provisioner.Delete(ctx, account)
}

// Refund pays back amount of transaction txID to its owner. A zero amount refunds
// the whole transaction.
func (s *Service) Refund(ctx context.Context, txID, amount int64, description string) (*domain.Transaction, error) {
	original, err := s.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load transaction", Err: err}
	}
	if original == nil {
		return nil, fmt.Errorf("transaction %d: %w", txID, domain.ErrNotFound)
	}
	if amount == 0 {
		amount = original.Amount
		if amount < 0 {
			amount = -amount
		}
	}
	if description == "" {
		description = fmt.Sprintf("refund of transaction #%d", txID)
	}

	refund, err := s.payments.RefundTransaction(ctx, original.UserID, amount, description, &txID)
	if err != nil {
		return nil, err
	}
	zap.L().Info("admin refund", zap.Int64("original_id", txID), zap.Int64("refund_id", refund.ID), zap.Int64("amount", amount))
	return refund, nil
}

// Deposit credits the wallet of userID by hand, e.g. for a transfer that came in
// without a receipt.
func (s *Service) Deposit(ctx context.Context, userID, amount int64, description string) (*domain.Transaction, error) {
	if description == "" {
		description = "manual deposit"
	}
	tx, err := s.payments.ProcessIncomingPayment(ctx, userID, amount, description)
	if err != nil {
		return nil, err
	}
	zap.L().Info("admin deposit", zap.Int64("user_id", userID), zap.Int64("tx_id", tx.ID), zap.Int64("amount", amount))
	return tx, nil
}

func (s *Service) account(ctx context.Context, id int64) (*domain.ClientAccount, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load client account", Err: err}
	}
	if account == nil {
		return nil, fmt.Errorf("client account %d: %w", id, domain.ErrNotFound)
	}
	return account, nil
}
