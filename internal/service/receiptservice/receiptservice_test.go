package receiptservice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/notify"
	"github.com/GlebRadaev/vpnshop/internal/pg"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const (
	validCard = "4111 1111 1111 1111"
	code      = "RC01J0000000000000000000000"
)

type mocks struct {
	receipts     *MockReceiptRepo
	transactions *MockTransactionRepo
	orders       *MockOrderRepo
	payments     *MockPayments
	lock         *MockReviewLock
	notifier     *notify.MockNotifier
	tx           *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		receipts:     NewMockReceiptRepo(ctrl),
		transactions: NewMockTransactionRepo(ctrl),
		orders:       NewMockOrderRepo(ctrl),
		payments:     NewMockPayments(ctrl),
		lock:         NewMockReviewLock(ctrl),
		notifier:     notify.NewMockNotifier(ctrl),
		tx:           pg.NewMockTXManager(ctrl),
	}
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	}).AnyTimes()

	service := New(m.receipts, m.transactions, m.orders, m.payments, m.tx, m.lock, m.notifier)
	service.now = func() time.Time { return now }
	service.newCode = func() string { return code }
	return service, m
}

func (m *mocks) grantLock() {
	m.lock.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(func() {}, true, nil)
}

func int64p(v int64) *int64 { return &v }

func pendingReceipt(orderID *int64) *domain.ReceiptLog {
	return &domain.ReceiptLog{
		ID:            7,
		UserID:        1,
		CardNumber:    "4111111111111111",
		Amount:        50000,
		Status:        domain.ReceiptPending,
		TransactionID: int64p(70),
		OrderID:       orderID,
		TrackingCode:  code,
	}
}

func pendingDeposit() *domain.Transaction {
	return &domain.Transaction{ID: 70, UserID: 1, Amount: 50000, Type: domain.TransactionDeposit, Status: domain.TransactionPending}
}

func resolved(r *domain.ReceiptLog, status domain.ReceiptStatus) *domain.ReceiptLog {
	out := *r
	out.Status = status
	out.AdminID = int64p(99)
	return &out
}

func TestSubmit(t *testing.T) {
	service, m := NewMock(t)
	orderID := int64p(5)

	m.orders.EXPECT().GetByID(gomock.Any(), int64(5)).Return(&domain.Order{ID: 5, UserID: 1, Status: domain.OrderPending}, nil)
	m.orders.EXPECT().SetStatus(gomock.Any(), int64(5), domain.OrderPending, domain.OrderPendingReceipt).Return(true, nil)
	m.payments.EXPECT().CreatePending(gomock.Any(), int64(1), int64(50000), domain.TransactionDeposit, "card transfer "+code, orderID).
		Return(pendingDeposit(), nil)
	m.receipts.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *domain.ReceiptLog) (*domain.ReceiptLog, error) {
		assert.Equal(t, "4111111111111111", r.CardNumber)
		assert.Equal(t, domain.ReceiptPending, r.Status)
		assert.Equal(t, int64(70), *r.TransactionID)
		assert.Equal(t, code, r.TrackingCode)
		created := *r
		created.ID = 7
		return &created, nil
	})
	m.notifier.EXPECT().NotifyAdmin(gomock.Any(), gomock.Any()).Return(true)

	got, err := service.Submit(context.Background(), 1, validCard, 50000, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
}

func TestSubmit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		card    string
		amount  int64
		orderID *int64
		setup   func(m *mocks)
		wantErr error
	}{
		{name: "Zero amount", card: validCard, wantErr: domain.ErrValidation},
		{name: "Bad card", card: "4111 1111 1111 1112", amount: 100, wantErr: domain.ErrValidation},
		{
			name:    "Order of another user",
			card:    validCard,
			amount:  100,
			orderID: int64p(5),
			setup: func(m *mocks) {
				m.orders.EXPECT().GetByID(gomock.Any(), int64(5)).Return(&domain.Order{ID: 5, UserID: 2, Status: domain.OrderPending}, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "Order already paid",
			card:    validCard,
			amount:  100,
			orderID: int64p(5),
			setup: func(m *mocks) {
				m.orders.EXPECT().GetByID(gomock.Any(), int64(5)).Return(&domain.Order{ID: 5, UserID: 1, Status: domain.OrderPaid}, nil)
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:   "Receipt insert fails",
			card:   validCard,
			amount: 100,
			setup: func(m *mocks) {
				m.payments.EXPECT().CreatePending(gomock.Any(), int64(1), int64(100), domain.TransactionDeposit, gomock.Any(), (*int64)(nil)).
					Return(pendingDeposit(), nil)
				m.receipts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("duplicate tracking code"))
			},
			wantErr: domain.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			if tt.setup != nil {
				tt.setup(m)
			}
			got, err := service.Submit(context.Background(), 1, tt.card, tt.amount, tt.orderID)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApprove(t *testing.T) {
	service, m := NewMock(t)
	receipt := pendingReceipt(int64p(5))
	approved := resolved(receipt, domain.ReceiptApproved)

	m.grantLock()
	m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(receipt, nil)
	m.transactions.EXPECT().GetByID(gomock.Any(), int64(70)).Return(pendingDeposit(), nil)
	m.receipts.EXPECT().Resolve(gomock.Any(), int64(7), domain.ReceiptApproved, int64p(99), (*string)(nil)).Return(approved, true, nil)
	m.payments.EXPECT().Complete(gomock.Any(), int64(70)).Return(pendingDeposit(), true, nil)
	m.orders.EXPECT().SetStatus(gomock.Any(), int64(5), domain.OrderPendingReceipt, domain.OrderPaid).Return(true, nil)
	m.notifier.EXPECT().NotifyUser(gomock.Any(), int64(1), gomock.Any()).Return(false)

	got, err := service.Approve(context.Background(), 7, 99)
	require.NoError(t, err)
	assert.False(t, got.AlreadyHandled)
	assert.Equal(t, domain.ReceiptApproved, got.Receipt.Status)
}

func TestApprove_TwiceCreditsOnce(t *testing.T) {
	service, m := NewMock(t)
	receipt := pendingReceipt(nil)
	approved := resolved(receipt, domain.ReceiptApproved)

	m.lock.EXPECT().Acquire(gomock.Any(), "receipt:7").Return(func() {}, true, nil).Times(2)
	gomock.InOrder(
		m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(receipt, nil),
		m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(approved, nil),
	)
	m.transactions.EXPECT().GetByID(gomock.Any(), int64(70)).Return(pendingDeposit(), nil)
	m.receipts.EXPECT().Resolve(gomock.Any(), int64(7), domain.ReceiptApproved, gomock.Any(), gomock.Any()).Return(approved, true, nil)
	m.payments.EXPECT().Complete(gomock.Any(), int64(70)).Return(pendingDeposit(), true, nil).Times(1)
	m.notifier.EXPECT().NotifyUser(gomock.Any(), int64(1), gomock.Any()).Return(true).Times(1)

	first, err := service.Approve(context.Background(), 7, 99)
	require.NoError(t, err)
	assert.False(t, first.AlreadyHandled)

	second, err := service.Approve(context.Background(), 7, 99)
	require.NoError(t, err)
	assert.True(t, second.AlreadyHandled)
	assert.Equal(t, domain.ReceiptApproved, second.Receipt.Status)
}

// reviewStore keeps one receipt and its deposit in memory, with the same conditional
// updates the repositories make.
type reviewStore struct {
	mu      sync.Mutex
	receipt domain.ReceiptLog
	deposit domain.Transaction
	balance int64
}

func (st *reviewStore) wire(m *mocks, read *sync.WaitGroup) {
	m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).DoAndReturn(func(context.Context, int64) (*domain.ReceiptLog, error) {
		st.mu.Lock()
		out := st.receipt
		st.mu.Unlock()
		// both admins see the receipt PENDING
		read.Done()
		read.Wait()
		return &out, nil
	}).AnyTimes()
	m.transactions.EXPECT().GetByID(gomock.Any(), int64(70)).DoAndReturn(func(context.Context, int64) (*domain.Transaction, error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		out := st.deposit
		return &out, nil
	}).AnyTimes()
	m.receipts.EXPECT().Resolve(gomock.Any(), int64(7), domain.ReceiptApproved, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, to domain.ReceiptStatus, adminID *int64, _ *string) (*domain.ReceiptLog, bool, error) {
			st.mu.Lock()
			defer st.mu.Unlock()
			if st.receipt.Status != domain.ReceiptPending {
				out := st.receipt
				return &out, false, nil
			}
			st.receipt.Status = to
			st.receipt.AdminID = adminID
			out := st.receipt
			return &out, true, nil
		}).AnyTimes()
	m.payments.EXPECT().Complete(gomock.Any(), int64(70)).DoAndReturn(func(context.Context, int64) (*domain.Transaction, bool, error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		if st.deposit.Status != domain.TransactionPending {
			out := st.deposit
			return &out, false, nil
		}
		st.deposit.Status = domain.TransactionSuccess
		st.balance += st.deposit.Amount
		out := st.deposit
		return &out, true, nil
	}).AnyTimes()
}

func TestApprove_ConcurrentCreditsOnce(t *testing.T) {
	service, m := NewMock(t)
	st := &reviewStore{receipt: *pendingReceipt(nil), deposit: *pendingDeposit()}
	var read sync.WaitGroup
	read.Add(2)
	st.wire(m, &read)

	m.lock.EXPECT().Acquire(gomock.Any(), "receipt:7").Return(func() {}, true, nil).Times(2)
	m.notifier.EXPECT().NotifyUser(gomock.Any(), int64(1), gomock.Any()).Return(true).Times(1)

	var (
		wg      sync.WaitGroup
		results [2]*ReviewResult
		errs    [2]error
	)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.Approve(context.Background(), 7, 99)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	winners := 0
	for _, r := range results {
		if !r.AlreadyHandled {
			winners++
			assert.Equal(t, domain.ReceiptApproved, r.Receipt.Status)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, int64(50000), st.balance)
	assert.Equal(t, domain.TransactionSuccess, st.deposit.Status)
}

func TestApprove_AlreadyHandled(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *mocks, receipt *domain.ReceiptLog)
	}{
		{
			name: "Transaction already settled",
			setup: func(m *mocks, receipt *domain.ReceiptLog) {
				m.grantLock()
				m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(receipt, nil)
				settled := pendingDeposit()
				settled.Status = domain.TransactionFailed
				m.transactions.EXPECT().GetByID(gomock.Any(), int64(70)).Return(settled, nil)
			},
		},
		{
			name: "Lost the conditional update",
			setup: func(m *mocks, receipt *domain.ReceiptLog) {
				m.grantLock()
				m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(receipt, nil)
				m.transactions.EXPECT().GetByID(gomock.Any(), int64(70)).Return(pendingDeposit(), nil)
				m.receipts.EXPECT().Resolve(gomock.Any(), int64(7), domain.ReceiptApproved, gomock.Any(), gomock.Any()).
					Return(resolved(receipt, domain.ReceiptRejected), false, nil)
			},
		},
		{
			name: "Review in progress elsewhere",
			setup: func(m *mocks, receipt *domain.ReceiptLog) {
				m.lock.EXPECT().Acquire(gomock.Any(), "receipt:7").Return(func() {}, false, nil)
				m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(receipt, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.setup(m, pendingReceipt(nil))

			got, err := service.Approve(context.Background(), 7, 99)
			require.NoError(t, err)
			assert.True(t, got.AlreadyHandled)
		})
	}
}

func TestApprove_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *mocks)
		wantErr error
	}{
		{
			name: "Unknown receipt",
			setup: func(m *mocks) {
				m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "No transaction link",
			setup: func(m *mocks) {
				r := pendingReceipt(nil)
				r.TransactionID = nil
				m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(r, nil)
			},
			wantErr: domain.ErrIntegrity,
		},
		{
			name: "Linked transaction missing",
			setup: func(m *mocks) {
				m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(pendingReceipt(nil), nil)
				m.transactions.EXPECT().GetByID(gomock.Any(), int64(70)).Return(nil, nil)
			},
			wantErr: domain.ErrIntegrity,
		},
		{
			name: "Credit fails",
			setup: func(m *mocks) {
				r := pendingReceipt(nil)
				m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(r, nil)
				m.transactions.EXPECT().GetByID(gomock.Any(), int64(70)).Return(pendingDeposit(), nil)
				m.receipts.EXPECT().Resolve(gomock.Any(), int64(7), domain.ReceiptApproved, gomock.Any(), gomock.Any()).
					Return(resolved(r, domain.ReceiptApproved), true, nil)
				m.payments.EXPECT().Complete(gomock.Any(), int64(70)).
					Return(nil, false, &domain.PersistenceError{Op: "credit wallet", Err: errors.New("db down")})
			},
			wantErr: domain.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			m.grantLock()
			tt.setup(m)

			got, err := service.Approve(context.Background(), 7, 99)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApprove_LockErrorDoesNotBlock(t *testing.T) {
	service, m := NewMock(t)
	receipt := pendingReceipt(nil)

	m.lock.EXPECT().Acquire(gomock.Any(), "receipt:7").Return(func() {}, false, errors.New("redis down"))
	m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(receipt, nil)
	m.transactions.EXPECT().GetByID(gomock.Any(), int64(70)).Return(pendingDeposit(), nil)
	m.receipts.EXPECT().Resolve(gomock.Any(), int64(7), domain.ReceiptApproved, gomock.Any(), gomock.Any()).
		Return(resolved(receipt, domain.ReceiptApproved), true, nil)
	m.payments.EXPECT().Complete(gomock.Any(), int64(70)).Return(pendingDeposit(), true, nil)
	m.notifier.EXPECT().NotifyUser(gomock.Any(), int64(1), gomock.Any()).Return(true)

	got, err := service.Approve(context.Background(), 7, 99)
	require.NoError(t, err)
	assert.False(t, got.AlreadyHandled)
}

func TestReject(t *testing.T) {
	service, m := NewMock(t)
	receipt := pendingReceipt(int64p(5))
	rejected := resolved(receipt, domain.ReceiptRejected)
	reason := "amount does not match"

	m.grantLock()
	m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(receipt, nil)
	m.transactions.EXPECT().GetByID(gomock.Any(), int64(70)).Return(pendingDeposit(), nil)
	m.receipts.EXPECT().Resolve(gomock.Any(), int64(7), domain.ReceiptRejected, int64p(99), &reason).Return(rejected, true, nil)
	m.payments.EXPECT().Fail(gomock.Any(), int64(70)).Return(pendingDeposit(), true, nil)
	m.orders.EXPECT().SetStatus(gomock.Any(), int64(5), domain.OrderPendingReceipt, domain.OrderPending).Return(true, nil)
	m.notifier.EXPECT().NotifyUser(gomock.Any(), int64(1), "Payment "+code+" was rejected: "+reason).Return(true)

	got, err := service.Reject(context.Background(), 7, 99, "  "+reason+" ")
	require.NoError(t, err)
	assert.False(t, got.AlreadyHandled)
	assert.Equal(t, domain.ReceiptRejected, got.Receipt.Status)
}

func TestReject_AfterApprove(t *testing.T) {
	service, m := NewMock(t)
	approved := resolved(pendingReceipt(nil), domain.ReceiptApproved)

	m.grantLock()
	m.receipts.EXPECT().GetByID(gomock.Any(), int64(7)).Return(approved, nil)

	got, err := service.Reject(context.Background(), 7, 99, "")
	require.NoError(t, err)
	assert.True(t, got.AlreadyHandled)
	assert.Equal(t, domain.ReceiptApproved, got.Receipt.Status)
}

func TestExpireStale(t *testing.T) {
	service, m := NewMock(t)
	first := pendingReceipt(int64p(5))
	second := pendingReceipt(nil)
	second.ID = 8
	second.TransactionID = int64p(80)
	third := pendingReceipt(nil)
	third.ID = 9
	third.TransactionID = int64p(90)

	m.receipts.EXPECT().GetStale(gomock.Any(), now.Add(-48*time.Hour), staleBatch).
		Return([]domain.ReceiptLog{*first, *second, *third}, nil)

	m.receipts.EXPECT().Resolve(gomock.Any(), int64(7), domain.ReceiptExpired, (*int64)(nil), (*string)(nil)).
		Return(resolved(first, domain.ReceiptExpired), true, nil)
	m.payments.EXPECT().Fail(gomock.Any(), int64(70)).Return(pendingDeposit(), true, nil)
	m.orders.EXPECT().SetStatus(gomock.Any(), int64(5), domain.OrderPendingReceipt, domain.OrderPending).Return(true, nil)

	// reviewed in the meantime
	m.receipts.EXPECT().Resolve(gomock.Any(), int64(8), domain.ReceiptExpired, (*int64)(nil), (*string)(nil)).
		Return(resolved(second, domain.ReceiptApproved), false, nil)

	m.receipts.EXPECT().Resolve(gomock.Any(), int64(9), domain.ReceiptExpired, (*int64)(nil), (*string)(nil)).
		Return(nil, false, errors.New("db down"))

	m.notifier.EXPECT().NotifyUser(gomock.Any(), int64(1), gomock.Any()).Return(true).Times(1)

	n, err := service.ExpireStale(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTrackingCode(t *testing.T) {
	a, b := trackingCode(), trackingCode()
	assert.Len(t, a, len(trackingPrefix)+26)
	assert.Regexp(t, "^RC[0-9A-Z]{26}$", a)
	assert.NotEqual(t, a, b)
}
