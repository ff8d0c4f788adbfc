package receiptservice

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/notify"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/GlebRadaev/vpnshop/pkg/validate"
)

type ReceiptRepo interface {
	Create(ctx context.Context, receipt *domain.ReceiptLog) (*domain.ReceiptLog, error)
	GetByID(ctx context.Context, id int64) (*domain.ReceiptLog, error)
	Resolve(ctx context.Context, id int64, to domain.ReceiptStatus, adminID *int64, reason *string) (*domain.ReceiptLog, bool, error)
	GetStale(ctx context.Context, before time.Time, limit int) ([]domain.ReceiptLog, error)
}

type TransactionRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
}

type OrderRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	SetStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error)
}

// Payments is the ledger side of a receipt.
type Payments interface {
	CreatePending(ctx context.Context, userID, amount int64, txType domain.TransactionType, description string, orderID *int64) (*domain.Transaction, error)
	Complete(ctx context.Context, txID int64) (*domain.Transaction, bool, error)
	Fail(ctx context.Context, txID int64) (*domain.Transaction, bool, error)
}

// ReviewLock filters out concurrent reviews of the same receipt.
type ReviewLock interface {
	Acquire(ctx context.Context, name string) (release func(), acquired bool, err error)
}

type ReviewResult struct {
	Receipt        *domain.ReceiptLog
	AlreadyHandled bool
}

const (
	trackingPrefix = "RC"
	staleBatch     = 100
)

var reviews = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vpnshop_receipt_reviews_total",
		Help: "Receipt reviews by action and outcome",
	},
	[]string{"action", "result"},
)

type Service struct {
	receipts     ReceiptRepo
	transactions TransactionRepo
	orders       OrderRepo
	payments     Payments
	txManager    pg.TXManager
	lock         ReviewLock
	notifier     notify.Notifier
	now          func() time.Time
	newCode      func() string
}

func New(
	receipts ReceiptRepo,
	transactions TransactionRepo,
	orders OrderRepo,
	payments Payments,
	txManager pg.TXManager,
	lock ReviewLock,
	notifier notify.Notifier,
) *Service {
	return &Service{
		receipts:     receipts,
		transactions: transactions,
		orders:       orders,
		payments:     payments,
		txManager:    txManager,
		lock:         lock,
		notifier:     notifier,
		now:          time.Now,
		newCode:      trackingCode,
	}
}

// Submit registers a card transfer waiting for admin review. The deposit Transaction
// stays PENDING until the receipt is approved or rejected.
func (s *Service) Submit(ctx context.Context, userID int64, cardNumber string, amount int64, orderID *int64) (*domain.ReceiptLog, error) {
	if amount <= 0 {
		return nil, domain.NewValidationError("amount", "must be positive")
	}
	card, ok := validate.CardNumber(cardNumber)
	if !ok {
		return nil, domain.NewValidationError("card_number", "not a valid card number")
	}

	code := s.newCode()
	var receipt *domain.ReceiptLog
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if orderID != nil {
			if err := s.holdOrder(ctx, userID, *orderID); err != nil {
				return err
			}
		}

		tx, err := s.payments.CreatePending(ctx, userID, amount, domain.TransactionDeposit, "card transfer "+code, orderID)
		if err != nil {
			return err
		}

		receipt, err = s.receipts.Create(ctx, &domain.ReceiptLog{
			UserID:        userID,
			CardNumber:    card,
			Amount:        amount,
			Status:        domain.ReceiptPending,
			TransactionID: &tx.ID,
			OrderID:       orderID,
			TrackingCode:  code,
		})
		if err != nil {
			return &domain.PersistenceError{Op: "insert receipt", Err: err}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("receipt submission failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("receipt submitted", zap.Int64("receipt_id", receipt.ID), zap.String("tracking_code", code))
	s.notifier.NotifyAdmin(ctx, fmt.Sprintf("New receipt %s: %d from user %d, card %s",
		code, amount, userID, maskCard(card)))
	return receipt, nil
}

func (s *Service) holdOrder(ctx context.Context, userID, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return &domain.PersistenceError{Op: "load order", Err: err}
	}
	if order == nil || order.UserID != userID {
		return fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	if _, err := order.Status.Transition(domain.OrderPendingReceipt); err != nil {
		return domain.NewValidationError("order_id", "order is not awaiting payment")
	}
	moved, err := s.orders.SetStatus(ctx, orderID, domain.OrderPending, domain.OrderPendingReceipt)
	if err != nil {
		return &domain.PersistenceError{Op: "update order status", Err: err}
	}
	if !moved {
		return domain.NewValidationError("order_id", "order is not awaiting payment")
	}
	return nil
}

// Approve accepts the receipt, settles its deposit and credits the wallet, all or
// nothing. Reviewing an already resolved receipt is a no-op reported via AlreadyHandled.
func (s *Service) Approve(ctx context.Context, receiptID, adminID int64) (*ReviewResult, error) {
	result, err := s.review(ctx, "approve", receiptID, func(ctx context.Context, receipt *domain.ReceiptLog, tx *domain.Transaction) (*ReviewResult, error) {
		resolved, changed, err := s.receipts.Resolve(ctx, receipt.ID, domain.ReceiptApproved, &adminID, nil)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "approve receipt", Err: err}
		}
		if !changed {
			return &ReviewResult{Receipt: resolved, AlreadyHandled: true}, nil
		}

		if _, changed, err = s.payments.Complete(ctx, tx.ID); err != nil {
			return nil, err
		}
		if !changed {
			return nil, &domain.IntegrityError{Entity: "transaction", ID: tx.ID, Reason: "settled while its receipt was pending"}
		}
		if err := s.moveOrder(ctx, receipt.OrderID, domain.OrderPendingReceipt, domain.OrderPaid); err != nil {
			return nil, err
		}
		return &ReviewResult{Receipt: resolved}, nil
	})
	if err != nil || result.AlreadyHandled {
		return result, err
	}

	s.notifier.NotifyUser(ctx, result.Receipt.UserID, fmt.Sprintf("Payment %s approved, %d credited to your balance",
		result.Receipt.TrackingCode, result.Receipt.Amount))
	return result, nil
}

// Reject declines the receipt and fails its deposit. The wallet is never touched.
func (s *Service) Reject(ctx context.Context, receiptID, adminID int64, reason string) (*ReviewResult, error) {
	var why *string
	if reason = strings.TrimSpace(reason); reason != "" {
		why = &reason
	}

	result, err := s.review(ctx, "reject", receiptID, func(ctx context.Context, receipt *domain.ReceiptLog, tx *domain.Transaction) (*ReviewResult, error) {
		resolved, changed, err := s.receipts.Resolve(ctx, receipt.ID, domain.ReceiptRejected, &adminID, why)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "reject receipt", Err: err}
		}
		if !changed {
			return &ReviewResult{Receipt: resolved, AlreadyHandled: true}, nil
		}

		if _, changed, err = s.payments.Fail(ctx, tx.ID); err != nil {
			return nil, err
		}
		if !changed {
			return nil, &domain.IntegrityError{Entity: "transaction", ID: tx.ID, Reason: "settled while its receipt was pending"}
		}
		if err := s.moveOrder(ctx, receipt.OrderID, domain.OrderPendingReceipt, domain.OrderPending); err != nil {
			return nil, err
		}
		return &ReviewResult{Receipt: resolved}, nil
	})
	if err != nil || result.AlreadyHandled {
		return result, err
	}

	msg := fmt.Sprintf("Payment %s was rejected", result.Receipt.TrackingCode)
	if why != nil {
		msg += ": " + *why
	}
	s.notifier.NotifyUser(ctx, result.Receipt.UserID, msg)
	return result, nil
}

type decision func(ctx context.Context, receipt *domain.ReceiptLog, tx *domain.Transaction) (*ReviewResult, error)

func (s *Service) review(ctx context.Context, action string, receiptID int64, decide decision) (*ReviewResult, error) {
	release, acquired, err := s.lock.Acquire(ctx, fmt.Sprintf("receipt:%d", receiptID))
	if err != nil {
		zap.L().Warn("review lock unavailable, continuing without it", zap.Int64("receipt_id", receiptID), zap.Error(err))
	}
	defer release()
	if err == nil && !acquired {
		reviews.WithLabelValues(action, "already_handled").Inc()
		receipt, err := s.load(ctx, receiptID)
		if err != nil {
			return nil, err
		}
		zap.L().Info("receipt is being reviewed concurrently", zap.Int64("receipt_id", receiptID))
		return &ReviewResult{Receipt: receipt, AlreadyHandled: true}, nil
	}

	var result *ReviewResult
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		receipt, err := s.load(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt.Status != domain.ReceiptPending {
			result = &ReviewResult{Receipt: receipt, AlreadyHandled: true}
			return nil
		}

		if receipt.TransactionID == nil {
			return &domain.IntegrityError{Entity: "receipt", ID: receipt.ID, Reason: "no linked transaction"}
		}
		tx, err := s.transactions.GetByID(ctx, *receipt.TransactionID)
		if err != nil {
			return &domain.PersistenceError{Op: "load transaction", Err: err}
		}
		if tx == nil {
			return &domain.IntegrityError{Entity: "receipt", ID: receipt.ID, Reason: "linked transaction is missing"}
		}
		if tx.Status != domain.TransactionPending {
			result = &ReviewResult{Receipt: receipt, AlreadyHandled: true}
			return nil
		}

		result, err = decide(ctx, receipt, tx)
		return err
	})
	if err != nil {
		reviews.WithLabelValues(action, "error").Inc()
		zap.L().Error("receipt review failed", zap.String("action", action), zap.Int64("receipt_id", receiptID), zap.Error(err))
		return nil, err
	}

	if result.AlreadyHandled {
		reviews.WithLabelValues(action, "already_handled").Inc()
		zap.L().Info("receipt already handled", zap.Int64("receipt_id", receiptID), zap.String("status", result.Receipt.Status.String()))
		return result, nil
	}
	reviews.WithLabelValues(action, "ok").Inc()
	zap.L().Info("receipt reviewed", zap.String("action", action), zap.Int64("receipt_id", receiptID))
	return result, nil
}

// ExpireStale gives up on receipts left PENDING for longer than olderThan and fails
// their deposits. It returns how many receipts it expired.
func (s *Service) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.receipts.GetStale(ctx, s.now().Add(-olderThan), staleBatch)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "list stale receipts", Err: err}
	}

	expired := 0
	for i := range stale {
		receipt := &stale[i]
		changed, err := s.expire(ctx, receipt)
		if err != nil {
			zap.L().Error("can't expire receipt", zap.Int64("receipt_id", receipt.ID), zap.Error(err))
			continue
		}
		if changed {
			expired++
			s.notifier.NotifyUser(ctx, receipt.UserID, fmt.Sprintf("Payment %s expired without review", receipt.TrackingCode))
		}
	}
	if expired > 0 {
		zap.L().Info("stale receipts expired", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *Service) expire(ctx context.Context, receipt *domain.ReceiptLog) (bool, error) {
	var changed bool
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		if _, changed, err = s.receipts.Resolve(ctx, receipt.ID, domain.ReceiptExpired, nil, nil); err != nil || !changed {
			return err
		}
		if receipt.TransactionID != nil {
			if _, _, err := s.payments.Fail(ctx, *receipt.TransactionID); err != nil {
				return err
			}
		}
		return s.moveOrder(ctx, receipt.OrderID, domain.OrderPendingReceipt, domain.OrderPending)
	})
	if err != nil {
		return false, err
	}
	if changed {
		reviews.WithLabelValues("expire", "ok").Inc()
	}
	return changed, nil
}

func (s *Service) load(ctx context.Context, receiptID int64) (*domain.ReceiptLog, error) {
	receipt, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load receipt", Err: err}
	}
	if receipt == nil {
		return nil, fmt.Errorf("receipt %d: %w", receiptID, domain.ErrNotFound)
	}
	return receipt, nil
}

// moveOrder is lenient: an order that already moved on is logged, not failed.
func (s *Service) moveOrder(ctx context.Context, orderID *int64, from, to domain.OrderStatus) error {
	if orderID == nil {
		return nil
	}
	moved, err := s.orders.SetStatus(ctx, *orderID, from, to)
	if err != nil {
		return &domain.PersistenceError{Op: "update order status", Err: err}
	}
	if !moved {
		zap.L().Warn("order not in expected status", zap.Int64("order_id", *orderID), zap.String("from", from.String()))
	}
	return nil
}

func trackingCode() string {
	return trackingPrefix + ulid.MustNew(ulid.Timestamp(time.Now().UTC()), ulid.Monotonic(rand.Reader, 0)).String()
}

func maskCard(card string) string {
	if len(card) <= 4 {
		return card
	}
	return "*" + card[len(card)-4:]
}
