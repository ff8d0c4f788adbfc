package purchaseservice

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/GlebRadaev/vpnshop/internal/service/discountservice"
	"github.com/GlebRadaev/vpnshop/internal/service/provisionservice"
)

type UserRepo interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type CatalogRepo interface {
	GetPlan(ctx context.Context, id int64) (*domain.Plan, error)
	GetInbound(ctx context.Context, id int64) (*domain.Inbound, error)
	GetPanel(ctx context.Context, id int64) (*domain.Panel, error)
}

type OrderRepo interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	SetStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error)
	Complete(ctx context.Context, id, accountID int64) (bool, error)
}

type AccountRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.ClientAccount, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.ClientAccount, error)
}

type Payments interface {
	PayFromWallet(ctx context.Context, userID, amount int64, description string, orderID *int64) (*domain.Transaction, error)
}

type Discounts interface {
	Quote(ctx context.Context, code string, userID, planID, originalAmount int64) (*discountservice.Result, error)
	ValidateAndApply(ctx context.Context, code string, userID, planID, originalAmount int64) (*discountservice.Result, error)
}

type Provisioner interface {
	Provision(ctx context.Context, req provisionservice.ProvisionRequest) (*domain.ClientAccount, error)
	Renew(ctx context.Context, account *domain.ClientAccount, plan *domain.Plan) (*domain.ClientAccount, error)
	Restore(ctx context.Context, account *domain.ClientAccount, cause error) error
	Delete(ctx context.Context, account *domain.ClientAccount) error
}

// Checkout is what a successful purchase or renewal produced. Payment is nil for a
// free order.
type Checkout struct {
	Order    *domain.Order
	Account  *domain.ClientAccount
	Payment  *domain.Transaction
	Discount int64
}

var purchases = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vpnshop_purchases_total",
		Help: "Checkouts by kind and outcome",
	},
	[]string{"kind", "result"},
)

type Service struct {
	users       UserRepo
	catalog     CatalogRepo
	orders      OrderRepo
	accounts    AccountRepo
	payments    Payments
	discounts   Discounts
	provisioner Provisioner
	txManager   pg.TXManager
}

func New(
	users UserRepo,
	catalog CatalogRepo,
	orders OrderRepo,
	accounts AccountRepo,
	payments Payments,
	discounts Discounts,
	provisioner Provisioner,
	txManager pg.TXManager,
) *Service {
	return &Service{
		users:       users,
		catalog:     catalog,
		orders:      orders,
		accounts:    accounts,
		payments:    payments,
		discounts:   discounts,
		provisioner: provisioner,
		txManager:   txManager,
	}
}

// Purchase sells a new subscription paid from the wallet. Either everything happens
// (order, discount use, debit, panel client, account) or nothing stays behind.
func (s *Service) Purchase(ctx context.Context, userID, planID, inboundID int64, discountCode string) (*Checkout, error) {
	var out Checkout
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return &domain.PersistenceError{Op: "load user", Err: err}
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		plan, err := s.plan(ctx, planID)
		if err != nil {
			return err
		}
		inbound, p, err := s.location(ctx, inboundID)
		if err != nil {
			return err
		}

		order, err := s.openOrder(ctx, &out, userID, plan, inboundID, discountCode)
		if err != nil {
			return err
		}

		out.Account, err = s.provisioner.Provision(ctx, provisionservice.ProvisionRequest{
			User:    user,
			Plan:    plan,
			Inbound: inbound,
			Panel:   p,
			OrderID: &order.ID,
		})
		if err != nil {
			return err
		}
		return s.closeOrder(ctx, order, out.Account.ID)
	})
	if err != nil {
		if out.Account != nil {
			// the unit was discarded after the panel client was made
			s.undoProvision(ctx, out.Account)
		}
		purchases.WithLabelValues("purchase", "failed").Inc()
		zap.L().Error("purchase failed", zap.Int64("user_id", userID), zap.Int64("plan_id", planID), zap.Error(err))
		return nil, err
	}

	purchases.WithLabelValues("purchase", "ok").Inc()
	zap.L().Info("purchase completed",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", out.Order.ID),
		zap.Int64("account_id", out.Account.ID),
	)
	return &out, nil
}

// Renew extends one of the user's accounts with plan, paid from the wallet.
func (s *Service) Renew(ctx context.Context, userID, accountID, planID int64, discountCode string) (*Checkout, error) {
	var (
		out  Checkout
		prev *domain.ClientAccount
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.accounts.GetByID(ctx, accountID)
		if err != nil {
			return &domain.PersistenceError{Op: "load client account", Err: err}
		}
		if account == nil || account.UserID != userID {
			return fmt.Errorf("client account %d: %w", accountID, domain.ErrNotFound)
		}
		plan, err := s.plan(ctx, planID)
		if err != nil {
			return err
		}

		order, err := s.openOrder(ctx, &out, userID, plan, account.InboundID, discountCode)
		if err != nil {
			return err
		}
		if err := s.closeOrder(ctx, order, account.ID); err != nil {
			return err
		}

		// last, so that nothing local can fail after the panel was changed
		prev = account
		out.Account, err = s.provisioner.Renew(ctx, account, plan)
		return err
	})
	if err != nil {
		if out.Account != nil {
			// the commit failed after the panel took the new expiry
			err = s.provisioner.Restore(ctx, prev, err)
		}
		purchases.WithLabelValues("renew", "failed").Inc()
		zap.L().Error("renewal failed", zap.Int64("user_id", userID), zap.Int64("account_id", accountID), zap.Error(err))
		return nil, err
	}

	purchases.WithLabelValues("renew", "ok").Inc()
	zap.L().Info("renewal completed", zap.Int64("account_id", accountID), zap.Time("expires_at", out.Account.ExpiresAt))
	return &out, nil
}

// Quote previews what the user would pay for plan with code.
func (s *Service) Quote(ctx context.Context, userID, planID int64, code string) (*discountservice.Result, error) {
	plan, err := s.plan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.discounts.Quote(ctx, code, userID, plan.ID, plan.Price)
}

func (s *Service) Accounts(ctx context.Context, userID int64) ([]domain.ClientAccount, error) {
	accounts, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get accounts", zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

// openOrder prices the plan, records the order and charges the wallet, leaving the
// order PAID.
func (s *Service) openOrder(ctx context.Context, out *Checkout, userID int64, plan *domain.Plan, inboundID int64, code string) (*domain.Order, error) {
	final := plan.Price
	var codeID *int64
	if code != "" {
		res, err := s.discounts.ValidateAndApply(ctx, code, userID, plan.ID, plan.Price)
		if err != nil {
			return nil, err
		}
		final = res.FinalAmount
		out.Discount = res.Discount
		codeID = &res.Code.ID
	}

	order, err := s.orders.Create(ctx, &domain.Order{
		UserID:         userID,
		PlanID:         plan.ID,
		InboundID:      inboundID,
		Amount:         plan.Price,
		FinalAmount:    final,
		DiscountCodeID: codeID,
		Status:         domain.OrderPending,
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "insert order", Err: err}
	}
	out.Order = order

	out.Payment, err = s.payments.PayFromWallet(ctx, userID, final, fmt.Sprintf("order #%d: %s", order.ID, plan.Name), &order.ID)
	if err != nil {
		return nil, err
	}

	moved, err := s.orders.SetStatus(ctx, order.ID, domain.OrderPending, domain.OrderPaid)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "update order status", Err: err}
	}
	if !moved {
		return nil, &domain.IntegrityError{Entity: "order", ID: order.ID, Reason: "changed while being paid"}
	}
	order.Status = domain.OrderPaid
	return order, nil
}

func (s *Service) closeOrder(ctx context.Context, order *domain.Order, accountID int64) error {
	done, err := s.orders.Complete(ctx, order.ID, accountID)
	if err != nil {
		return &domain.PersistenceError{Op: "complete order", Err: err}
	}
	if !done {
		return &domain.IntegrityError{Entity: "order", ID: order.ID, Reason: "not paid"}
	}
	order.Status = domain.OrderCompleted
	order.ClientAccountID = &accountID
	return nil
}

func (s *Service) plan(ctx context.Context, planID int64) (*domain.Plan, error) {
	plan, err := s.catalog.GetPlan(ctx, planID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load plan", Err: err}
	}
	if plan == nil || !plan.IsActive {
		return nil, fmt.Errorf("plan %d: %w", planID, domain.ErrNotFound)
	}
	return plan, nil
}

func (s *Service) location(ctx context.Context, inboundID int64) (*domain.Inbound, *domain.Panel, error) {
	inbound, err := s.catalog.GetInbound(ctx, inboundID)
	if err != nil {
		return nil, nil, &domain.PersistenceError{Op: "load inbound", Err: err}
	}
	if inbound == nil {
		return nil, nil, fmt.Errorf("inbound %d: %w", inboundID, domain.ErrNotFound)
	}
	p, err := s.catalog.GetPanel(ctx, inbound.PanelID)
	if err != nil {
		return nil, nil, &domain.PersistenceError{Op: "load panel", Err: err}
	}
	if p == nil || !p.IsActive {
		return nil, nil, domain.NewValidationError("inbound_id", "server is not available")
	}
	return inbound, p, nil
}

func (s *Service) undoProvision(ctx context.Context, account *domain.ClientAccount) {
	if err := s.provisioner.Delete(context.WithoutCancel(ctx), account); err != nil {
		zap.L().Error("can't undo provisioned client", zap.String("remote_uuid", account.RemoteUUID), zap.Error(err))
	}
}
