package provisionservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/panel"
)

type AccountRepo interface {
	Create(ctx context.Context, a *domain.ClientAccount) (*domain.ClientAccount, error)
	Update(ctx context.Context, a *domain.ClientAccount) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type CatalogRepo interface {
	GetInbound(ctx context.Context, id int64) (*domain.Inbound, error)
	GetPanel(ctx context.Context, id int64) (*domain.Panel, error)
}

type Gateways interface {
	Gateway(p *domain.Panel) (panel.Client, error)
}

const compensationTimeout = 10 * time.Second

var (
	sagaOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpnshop_provision_saga_total",
			Help: "Provisioning saga runs by operation and outcome",
		},
		[]string{"operation", "result"},
	)

	compensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpnshop_compensations_total",
			Help: "Compensating panel calls after a failed local write",
		},
		[]string{"operation", "result"},
	)
)

type ProvisionRequest struct {
	User    *domain.User
	Plan    *domain.Plan
	Inbound *domain.Inbound
	Panel   *domain.Panel
	OrderID *int64
}

// Service keeps a panel client and its local account row in step. The panel is always
// changed first; when the local write that follows fails, the panel change is undone
// on a best effort basis.
type Service struct {
	accounts AccountRepo
	catalog  CatalogRepo
	gateways Gateways
	now      func() time.Time
	newUUID  func() string
}

func New(accounts AccountRepo, catalog CatalogRepo, gateways Gateways) *Service {
	return &Service{
		accounts: accounts,
		catalog:  catalog,
		gateways: gateways,
		now:      time.Now,
		newUUID:  uuid.NewString,
	}
}

// Provision creates a client on the panel and records it locally. A returned account
// always has a live remote client behind it.
func (s *Service) Provision(ctx context.Context, req ProvisionRequest) (*domain.ClientAccount, error) {
	gw, err := s.gateways.Gateway(req.Panel)
	if err != nil {
		return nil, &domain.ExternalServiceError{Kind: domain.ExternalOperationFailed, Op: "resolve panel", Err: err}
	}

	id := s.newUUID()
	spec := domain.ClientSpec{
		UUID:       id,
		Email:      fmt.Sprintf("u%d-%s", req.User.ID, id[:8]),
		SubID:      subID(id),
		Enabled:    true,
		ExpiresAt:  s.now().AddDate(0, 0, req.Plan.DurationDays),
		TotalBytes: req.Plan.TrafficBytes(),
		TelegramID: req.User.TelegramID,
	}

	remoteUUID, err := gw.CreateClient(ctx, req.Inbound.RemoteID, spec)
	if err != nil {
		sagaOutcomes.WithLabelValues("provision", "remote_failed").Inc()
		zap.L().Error("can't create panel client", zap.Int64("user_id", req.User.ID), zap.Error(err))
		return nil, err
	}

	configURL := gw.GetConfigURL(ctx, req.Inbound.RemoteID, remoteUUID)
	if configURL == "" {
		zap.L().Warn("config url unavailable", zap.String("remote_uuid", remoteUUID))
	}

	account, err := s.accounts.Create(ctx, &domain.ClientAccount{
		UserID:     req.User.ID,
		PanelID:    req.Panel.ID,
		InboundID:  req.Inbound.ID,
		PlanID:     req.Plan.ID,
		OrderID:    req.OrderID,
		RemoteUUID: remoteUUID,
		Email:      spec.Email,
		ExpiresAt:  spec.ExpiresAt,
		DataLimit:  spec.TotalBytes,
		Status:     domain.AccountActive,
		Enabled:    true,
		ConfigURL:  configURL,
		TelegramID: spec.TelegramID,
	})
	if err != nil {
		cause := &domain.PersistenceError{Op: "insert client account", Err: err}
		return nil, s.compensate(ctx, "provision", remoteUUID, cause, func(ctx context.Context) error {
			_, err := gw.DeleteClient(ctx, req.Inbound.RemoteID, remoteUUID)
			return err
		})
	}

	sagaOutcomes.WithLabelValues("provision", "ok").Inc()
	zap.L().Info("client provisioned",
		zap.Int64("user_id", req.User.ID),
		zap.Int64("account_id", account.ID),
		zap.String("remote_uuid", remoteUUID),
	)
	return account, nil
}

// Renew extends the account by the plan's duration, counting from its current expiry
// when that is still ahead, and resets the traffic limit to the plan's.
func (s *Service) Renew(ctx context.Context, account *domain.ClientAccount, plan *domain.Plan) (*domain.ClientAccount, error) {
	status, err := account.Status.Transition(domain.AccountActive)
	if err != nil {
		return nil, err
	}
	gw, inbound, err := s.target(ctx, account)
	if err != nil {
		return nil, err
	}

	base := s.now()
	if account.ExpiresAt.After(base) {
		base = account.ExpiresAt
	}
	prev := specOf(account)
	next := prev
	next.Enabled = true
	next.ExpiresAt = base.AddDate(0, 0, plan.DurationDays)
	next.TotalBytes = plan.TrafficBytes()

	found, err := gw.UpdateClient(ctx, inbound.RemoteID, account.RemoteUUID, next)
	if err != nil {
		sagaOutcomes.WithLabelValues("renew", "remote_failed").Inc()
		return nil, err
	}
	if !found {
		sagaOutcomes.WithLabelValues("renew", "remote_failed").Inc()
		return nil, &domain.ExternalServiceError{
			Kind: domain.ExternalOperationFailed,
			Op:   "updateClient",
			Err:  fmt.Errorf("client %s not found on panel", account.RemoteUUID),
		}
	}

	updated := *account
	updated.PlanID = plan.ID
	updated.ExpiresAt = next.ExpiresAt
	updated.DataLimit = next.TotalBytes
	updated.Status = status
	updated.Enabled = true
	if err := s.accounts.Update(ctx, &updated); err != nil {
		cause := &domain.PersistenceError{Op: "update client account", Err: err}
		return nil, s.compensate(ctx, "renew", account.RemoteUUID, cause, func(ctx context.Context) error {
			_, err := gw.UpdateClient(ctx, inbound.RemoteID, account.RemoteUUID, prev)
			return err
		})
	}

	sagaOutcomes.WithLabelValues("renew", "ok").Inc()
	zap.L().Info("client renewed", zap.Int64("account_id", account.ID), zap.Time("expires_at", updated.ExpiresAt))
	return &updated, nil
}

// Restore puts the panel client back to the state recorded in account. It undoes a
// Renew whose local write was discarded afterwards, e.g. by a failed commit. On success
// cause is returned as is; otherwise a CompensationError carrying both.
func (s *Service) Restore(ctx context.Context, account *domain.ClientAccount, cause error) error {
	return s.compensate(ctx, "restore", account.RemoteUUID, cause, func(ctx context.Context) error {
		gw, inbound, err := s.target(ctx, account)
		if err != nil {
			return err
		}
		found, err := gw.UpdateClient(ctx, inbound.RemoteID, account.RemoteUUID, specOf(account))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("client %s not found on panel", account.RemoteUUID)
		}
		return nil
	})
}

// Deactivate disables the client on the panel and marks the account DISABLED.
func (s *Service) Deactivate(ctx context.Context, account *domain.ClientAccount) (*domain.ClientAccount, error) {
	return s.disable(ctx, "deactivate", account, domain.AccountDisabled)
}

// Expire is Deactivate for accounts whose time ran out.
func (s *Service) Expire(ctx context.Context, account *domain.ClientAccount) (*domain.ClientAccount, error) {
	return s.disable(ctx, "expire", account, domain.AccountExpired)
}

func (s *Service) disable(ctx context.Context, op string, account *domain.ClientAccount, to domain.AccountStatus) (*domain.ClientAccount, error) {
	status, err := account.Status.Transition(to)
	if err != nil {
		return nil, err
	}
	gw, inbound, err := s.target(ctx, account)
	if err != nil {
		return nil, err
	}

	prev := specOf(account)
	next := prev
	next.Enabled = false

	found, err := gw.UpdateClient(ctx, inbound.RemoteID, account.RemoteUUID, next)
	if err != nil {
		sagaOutcomes.WithLabelValues(op, "remote_failed").Inc()
		return nil, err
	}
	if !found {
		zap.L().Warn("client missing on panel, disabling locally only",
			zap.Int64("account_id", account.ID), zap.String("remote_uuid", account.RemoteUUID))
	}

	updated := *account
	updated.Status = status
	updated.Enabled = false
	if err := s.accounts.Update(ctx, &updated); err != nil {
		cause := &domain.PersistenceError{Op: "update client account", Err: err}
		if !found {
			return nil, cause
		}
		return nil, s.compensate(ctx, op, account.RemoteUUID, cause, func(ctx context.Context) error {
			_, err := gw.UpdateClient(ctx, inbound.RemoteID, account.RemoteUUID, prev)
			return err
		})
	}

	sagaOutcomes.WithLabelValues(op, "ok").Inc()
	zap.L().Info("client disabled", zap.Int64("account_id", account.ID), zap.String("status", status.String()))
	return &updated, nil
}

// Delete removes the client from the panel if it can and always removes the local row.
// A leftover remote client is preferred over a local row pointing at nothing.
func (s *Service) Delete(ctx context.Context, account *domain.ClientAccount) error {
	gw, inbound, err := s.target(ctx, account)
	if err != nil {
		zap.L().Warn("skipping remote delete", zap.Int64("account_id", account.ID), zap.Error(err))
	} else {
		found, err := gw.DeleteClient(ctx, inbound.RemoteID, account.RemoteUUID)
		switch {
		case err != nil:
			zap.L().Warn("remote delete failed, panel client left behind",
				zap.String("remote_uuid", account.RemoteUUID), zap.Error(err))
		case !found:
			zap.L().Info("client already gone from panel", zap.String("remote_uuid", account.RemoteUUID))
		}
	}

	if _, err := s.accounts.Delete(ctx, account.ID); err != nil {
		return &domain.PersistenceError{Op: "delete client account", Err: err}
	}
	sagaOutcomes.WithLabelValues("delete", "ok").Inc()
	zap.L().Info("client account deleted", zap.Int64("account_id", account.ID))
	return nil
}

func (s *Service) target(ctx context.Context, account *domain.ClientAccount) (panel.Client, *domain.Inbound, error) {
	inbound, err := s.catalog.GetInbound(ctx, account.InboundID)
	if err != nil {
		return nil, nil, &domain.PersistenceError{Op: "load inbound", Err: err}
	}
	if inbound == nil {
		return nil, nil, &domain.IntegrityError{Entity: "client account", ID: account.ID, Reason: "inbound is missing"}
	}
	p, err := s.catalog.GetPanel(ctx, account.PanelID)
	if err != nil {
		return nil, nil, &domain.PersistenceError{Op: "load panel", Err: err}
	}
	if p == nil {
		return nil, nil, &domain.IntegrityError{Entity: "client account", ID: account.ID, Reason: "panel is missing"}
	}
	gw, err := s.gateways.Gateway(p)
	if err != nil {
		return nil, nil, &domain.ExternalServiceError{Kind: domain.ExternalOperationFailed, Op: "resolve panel", Err: err}
	}
	return gw, inbound, nil
}

// compensate runs undo detached from the caller's cancellation so that an aborted
// request still cleans up after itself.
func (s *Service) compensate(ctx context.Context, op, remoteUUID string, cause error, undo func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if err := undo(cctx); err != nil {
		compensations.WithLabelValues(op, "failed").Inc()
		sagaOutcomes.WithLabelValues(op, "compensation_failed").Inc()
		zap.L().Error("compensation failed, panel and store disagree",
			zap.String("operation", op),
			zap.String("remote_uuid", remoteUUID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return &domain.CompensationError{RemoteUUID: remoteUUID, Cause: cause, CompensationErr: err}
	}

	compensations.WithLabelValues(op, "ok").Inc()
	sagaOutcomes.WithLabelValues(op, "compensated").Inc()
	zap.L().Warn("local write failed, panel change undone",
		zap.String("operation", op), zap.String("remote_uuid", remoteUUID), zap.Error(cause))
	return cause
}

func specOf(a *domain.ClientAccount) domain.ClientSpec {
	return domain.ClientSpec{
		UUID:       a.RemoteUUID,
		Email:      a.Email,
		SubID:      subID(a.RemoteUUID),
		Enabled:    a.Enabled,
		ExpiresAt:  a.ExpiresAt,
		TotalBytes: a.DataLimit,
		TelegramID: a.TelegramID,
	}
}

// subID derives the subscription id from the client uuid so it survives updates.
func subID(id string) string {
	s := strings.ReplaceAll(id, "-", "")
	if len(s) > 16 {
		s = s[:16]
	}
	return s
}
