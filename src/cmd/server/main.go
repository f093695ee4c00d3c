package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/adapter/events"
	"github.com/coopandes/accounts-ledger/src/internal/adapter/events/kafka"
	"github.com/coopandes/accounts-ledger/src/internal/adapter/http/controller"
	"github.com/coopandes/accounts-ledger/src/internal/adapter/http/middleware"
	"github.com/coopandes/accounts-ledger/src/internal/adapter/http/router"
	"github.com/coopandes/accounts-ledger/src/internal/adapter/repository/memory"
	"github.com/coopandes/accounts-ledger/src/internal/adapter/repository/postgres"
	"github.com/coopandes/accounts-ledger/src/internal/config"
	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/coopandes/accounts-ledger/src/internal/logger"
	"github.com/coopandes/accounts-ledger/src/internal/usecase/services"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("accounts service: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accountRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()

	accountService := services.NewAccountService(accountRepo, publisher)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow)

	handler := router.New(
		[]router.RouteRegistrar{controller.NewAccountController(accountService)},
		middleware.Recover(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.AllowedOrigins),
		limiter.Middleware(),
		middleware.MaxBodyBytes(middleware.DefaultMaxBodyBytes),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("accounts service listening", logger.Fields{
			"addr":        cfg.HTTPAddr,
			"storeDriver": cfg.StoreDriver,
			"kafka":       len(cfg.KafkaBrokers) > 0,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("accounts service shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config) (domain.AccountRepository, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory account store; data is lost on restart", nil)
		return memory.NewAccountRepository(), func() {}, nil
	}

	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := postgres.Open(startupCtx, cfg.DatabaseDSN, postgres.DefaultPoolOptions())
	if err != nil {
		return nil, nil, err
	}

	if err := postgres.RunMigrations(startupCtx, db, cfg.MigrationsDir); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations completed successfully", logger.Fields{"dir": cfg.MigrationsDir})

	return postgres.NewAccountRepository(db), func() { _ = db.Close() }, nil
}

func newPublisher(cfg config.Config) (domain.AccountEventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewLogPublisher(), func() {}
	}

	publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Error("close kafka publisher failed", err, nil)
		}
	}
}
