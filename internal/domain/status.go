package domain

import (
	"errors"
	"fmt"
)

var ErrIllegalTransition = errors.New("illegal status transition")

func illegal(kind string, from, to fmt.Stringer) error {
	return fmt.Errorf("%w: %s %s -> %s", ErrIllegalTransition, kind, from, to)
}

type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountExpired  AccountStatus = "EXPIRED"
	AccountDisabled AccountStatus = "DISABLED"
	AccountSwitched AccountStatus = "SWITCHED"
)

func (s AccountStatus) String() string { return string(s) }

// Transition validates an account status change. SWITCHED accounts were moved to
// another panel and never come back; every other status may be renewed to ACTIVE.
func (s AccountStatus) Transition(to AccountStatus) (AccountStatus, error) {
	switch s {
	case AccountActive:
		if to == AccountExpired || to == AccountDisabled || to == AccountSwitched || to == AccountActive {
			return to, nil
		}
	case AccountExpired, AccountDisabled:
		if to == AccountActive || to == AccountSwitched || to == s {
			return to, nil
		}
	}
	return s, illegal("account", s, to)
}

type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionPurchase TransactionType = "PURCHASE"
	TransactionRefund   TransactionType = "REFUND"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

func (s TransactionStatus) String() string { return string(s) }

func (s TransactionStatus) Terminal() bool {
	return s == TransactionSuccess || s == TransactionFailed
}

// Transition allows exactly one move out of PENDING.
func (s TransactionStatus) Transition(to TransactionStatus) (TransactionStatus, error) {
	if s == TransactionPending && to.Terminal() {
		return to, nil
	}
	return s, illegal("transaction", s, to)
}

type ReceiptStatus string

const (
	ReceiptPending  ReceiptStatus = "PENDING"
	ReceiptApproved ReceiptStatus = "APPROVED"
	ReceiptRejected ReceiptStatus = "REJECTED"
	ReceiptExpired  ReceiptStatus = "EXPIRED"
)

func (s ReceiptStatus) String() string { return string(s) }

func (s ReceiptStatus) Final() bool {
	return s != ReceiptPending
}

func (s ReceiptStatus) Transition(to ReceiptStatus) (ReceiptStatus, error) {
	if s == ReceiptPending && to.Final() {
		return to, nil
	}
	return s, illegal("receipt", s, to)
}

type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderPendingReceipt OrderStatus = "PENDING_RECEIPT"
	OrderPaid           OrderStatus = "PAID"
	OrderCompleted      OrderStatus = "COMPLETED"
	OrderFailed         OrderStatus = "FAILED"
	OrderExpired        OrderStatus = "EXPIRED"
)

func (s OrderStatus) String() string { return string(s) }

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:        {OrderPendingReceipt, OrderPaid, OrderFailed, OrderExpired},
	OrderPendingReceipt: {OrderPaid, OrderPending, OrderExpired},
	OrderPaid:           {OrderCompleted, OrderFailed},
}

func (s OrderStatus) Transition(to OrderStatus) (OrderStatus, error) {
	for _, allowed := range orderTransitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, illegal("order", s, to)
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)
