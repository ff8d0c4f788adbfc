package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/vpnshop/internal/config"
	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/notify"
	"github.com/GlebRadaev/vpnshop/internal/panel"
	"github.com/GlebRadaev/vpnshop/internal/pg"
)

const expiredBatch = 500

type AccountRepo interface {
	GetExpired(ctx context.Context, now time.Time, limit int) ([]domain.ClientAccount, error)
	GetActiveByInbound(ctx context.Context, inboundID int64) ([]domain.ClientAccount, error)
}

type CatalogRepo interface {
	ListInbounds(ctx context.Context) ([]domain.Inbound, error)
	GetPanel(ctx context.Context, id int64) (*domain.Panel, error)
}

type Expirer interface {
	Expire(ctx context.Context, account *domain.ClientAccount) (*domain.ClientAccount, error)
}

type ReceiptExpirer interface {
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
}

type Gateways interface {
	Gateway(p *domain.Panel) (panel.Client, error)
}

var (
	sweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpnshop_sweep_items_total",
			Help: "Items handled by scheduled sweeps",
		},
		[]string{"job", "result"},
	)
	drift = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vpnshop_reconcile_drift",
			Help: "Accounts out of sync with the VPN servers at the last reconciliation",
		},
		[]string{"kind"},
	)
)

// inFlight holds ids of accounts that a sweep is currently expiring.
var inFlight sync.Map

type Service struct {
	accounts   AccountRepo
	catalog    CatalogRepo
	expirer    Expirer
	receipts   ReceiptExpirer
	gateways   Gateways
	notifier   notify.Notifier
	txManager  pg.TXManager
	workerPool WorkerPoolI
	workers    int
	receiptTTL time.Duration
	expirySpec string
	reconSpec  string
	now        func() time.Time
	cron       *cron.Cron
}

func New(
	cfg *config.Config,
	accounts AccountRepo,
	catalog CatalogRepo,
	expirer Expirer,
	receipts ReceiptExpirer,
	gateways Gateways,
	notifier notify.Notifier,
	txManager pg.TXManager,
) *Service {
	return &Service{
		accounts:   accounts,
		catalog:    catalog,
		expirer:    expirer,
		receipts:   receipts,
		gateways:   gateways,
		notifier:   notifier,
		txManager:  txManager,
		workerPool: NewWorkerPool(cfg.SweepWorkers),
		workers:    cfg.SweepWorkers,
		receiptTTL: cfg.ReceiptTTL,
		expirySpec: cfg.ExpirySweepSpec,
		reconSpec:  cfg.ReconcileSpec,
		now:        time.Now,
	}
}

// Start schedules the jobs. They stop once ctx is done.
func (s *Service) Start(ctx context.Context) error {
	logger := cronLogger{}
	s.cron = cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	jobs := []struct {
		spec string
		run  func(context.Context)
	}{
		{s.expirySpec, func(ctx context.Context) { s.ExpireAccounts(ctx) }},
		{s.expirySpec, func(ctx context.Context) { s.ExpireReceipts(ctx) }},
		{s.reconSpec, func(ctx context.Context) { s.Reconcile(ctx) }},
	}
	for _, job := range jobs {
		run := job.run
		if _, err := s.cron.AddFunc(job.spec, func() { run(ctx) }); err != nil {
			return fmt.Errorf("bad schedule %q: %w", job.spec, err)
		}
	}

	s.cron.Start()
	zap.L().Info("sweeper started", zap.String("expiry", s.expirySpec), zap.String("reconcile", s.reconSpec))

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		s.workerPool.Close()
		zap.L().Info("sweeper stopped")
	}()
	return nil
}

// ExpireAccounts expires every ACTIVE account past its expiry, each in its own unit
// of work, and returns how many were expired.
func (s *Service) ExpireAccounts(ctx context.Context) int {
	accounts, err := s.accounts.GetExpired(ctx, s.now(), expiredBatch)
	if err != nil {
		zap.L().Error("failed to fetch expired accounts", zap.Error(err))
		return 0
	}

	var (
		g       errgroup.Group
		done    sync.WaitGroup
		mu      sync.Mutex
		expired int
	)
	for i := range accounts {
		account := accounts[i]

		if _, loaded := inFlight.LoadOrStore(account.ID, struct{}{}); loaded {
			continue
		}

		done.Add(1)
		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer done.Done()
				defer inFlight.Delete(account.ID)
				if err := s.expire(ctx, &account); err != nil {
					return err
				}
				mu.Lock()
				expired++
				mu.Unlock()
				return nil
			})
			if err != nil {
				done.Done()
				inFlight.Delete(account.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("expiry sweep interrupted", zap.Error(err))
	}
	done.Wait()

	if len(accounts) > 0 {
		zap.L().Info("expiry sweep finished", zap.Int("found", len(accounts)), zap.Int("expired", expired))
	}
	return expired
}

func (s *Service) expire(ctx context.Context, account *domain.ClientAccount) error {
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := s.expirer.Expire(ctx, account)
		return err
	})
	if err != nil {
		sweeps.WithLabelValues("expire_account", "failed").Inc()
		return fmt.Errorf("expire account %d: %w", account.ID, err)
	}

	sweeps.WithLabelValues("expire_account", "ok").Inc()
	s.notifier.NotifyUser(ctx, account.UserID,
		fmt.Sprintf("Your VPN subscription %s has expired. Renew it to get access back.", account.Email))
	return nil
}

func (s *Service) ExpireReceipts(ctx context.Context) int {
	n, err := s.receipts.ExpireStale(ctx, s.receiptTTL)
	if err != nil {
		sweeps.WithLabelValues("expire_receipt", "failed").Inc()
		zap.L().Error("receipt expiry failed", zap.Error(err))
		return 0
	}
	sweeps.WithLabelValues("expire_receipt", "ok").Add(float64(n))
	return n
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	zap.L().Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	zap.L().Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
