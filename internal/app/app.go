package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/vpnshop/internal/config"
	"github.com/GlebRadaev/vpnshop/internal/handlers"
	"github.com/GlebRadaev/vpnshop/internal/notify"
	"github.com/GlebRadaev/vpnshop/internal/panel"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/GlebRadaev/vpnshop/internal/repo"
	"github.com/GlebRadaev/vpnshop/internal/service"
	"github.com/GlebRadaev/vpnshop/internal/service/receiptservice"
	"github.com/GlebRadaev/vpnshop/internal/sweeper"
	"github.com/GlebRadaev/vpnshop/pkg/auth"
	"github.com/GlebRadaev/vpnshop/pkg/lock"
	"github.com/GlebRadaev/vpnshop/pkg/logger"
)

const reviewLockTTL = 30 * time.Second

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg     *config.Config
	api     *handlers.Handlers
	srv     *service.Services
	repo    *repo.Repositories
	sweeper *sweeper.Service

	closers []func()
	errCh   chan error
	wg      sync.WaitGroup
	ready   bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	reviewLock, err := a.reviewLock(ctx, cfg)
	if err != nil {
		return fmt.Errorf("can't connect to redis: %w", err)
	}

	conn := pg.New(pool)
	a.cfg = cfg
	a.repo = repo.New(conn, txManager)

	notifier, err := notify.New(cfg.BotToken, a.repo.UserRepo, cfg.AdminTelegramID)
	if err != nil {
		return fmt.Errorf("can't start telegram notifier: %w", err)
	}
	gateways := panel.NewResolver(cfg.PanelTimeout)
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	a.srv = service.New(a.repo, service.Deps{
		TxManager:       txManager,
		Gateways:        gateways,
		ReviewLock:      reviewLock,
		Notifier:        notifier,
		JWT:             jwtService,
		BotToken:        cfg.BotToken,
		AdminTelegramID: cfg.AdminTelegramID,
	})
	a.api = handlers.New(a.srv, jwtService)
	a.sweeper = sweeper.New(
		cfg,
		a.repo.AccountRepo,
		a.repo.CatalogRepo,
		a.srv.Provisioner,
		a.srv.Receipts,
		gateways,
		notifier,
		txManager,
	)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}
	if err = a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("can't start sweeper: %w", err)
	}

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

// reviewLock is backed by Redis when an address is configured.
func (a *Application) reviewLock(ctx context.Context, cfg *config.Config) (receiptservice.ReviewLock, error) {
	if cfg.RedisAddress == "" {
		zap.L().Info("redis address not set, review locks disabled")
		return lock.Noop{}, nil
	}
	client, err := lock.Connect(ctx, cfg.RedisAddress)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	return lock.NewRedis(client, "vpnshop", reviewLockTTL), nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}

	return appErr
}
