package main

import (
	"context"
	"fmt"

	"order-app/internal/config"
	"order-app/internal/database"
	"order-app/internal/repository"
	"order-app/internal/seed"
	"order-app/internal/service"
	"order-app/internal/store"

	"github.com/rs/zerolog"
)

// application holds the wired services for one command invocation.
type application struct {
	cfg     *config.Config
	logger  zerolog.Logger
	backend store.Backend
	policy  *config.AdminPolicy
	pricer  *service.Pricer

	catalog  service.CatalogService
	coupons  service.CouponService
	accounts service.AccountService
	orders   service.OrderService
	reports  service.ReportService

	close func()
}

// newApplication opens the configured backend and wires every service.
func newApplication(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*application, error) {
	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	policy, err := config.LoadAdminPolicy(cfg.Policy.File)
	if err != nil {
		closeBackend()
		return nil, fmt.Errorf("failed to load admin policy: %w", err)
	}

	// Initialize repositories
	seq := store.NewSequence(backend)
	itemRepo := repository.NewItemRepository(backend, logger)
	couponRepo := repository.NewCouponRepository(backend, logger)
	orderRepo := repository.NewOrderRepository(backend, seq, logger)
	accountRepo := repository.NewAccountRepository(backend, seq, logger)

	// Initialize services
	pricer := service.NewPricer(cfg.Pricing)
	catalog := service.NewCatalogService(itemRepo, logger)
	coupons := service.NewCouponService(couponRepo, logger)
	accounts := service.NewAccountService(accountRepo, orderRepo, coupons, policy, logger)
	orders := service.NewOrderService(orderRepo, catalog, coupons, accounts, pricer, logger)
	reports := service.NewReportService(orderRepo, accountRepo, catalog, coupons, pricer, logger)

	return &application{
		cfg:      cfg,
		logger:   logger,
		backend:  backend,
		policy:   policy,
		pricer:   pricer,
		catalog:  catalog,
		coupons:  coupons,
		accounts: accounts,
		orders:   orders,
		reports:  reports,
		close:    closeBackend,
	}, nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Backend, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		logger.Info().Msg("using in-memory store, data is lost on exit")
		return store.NewMemoryBackend(), func() {}, nil

	case "postgres":
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return store.NewPostgresBackend(pool, logger), pool.Close, nil

	default:
		return store.NewFileBackend(cfg.Storage.DataDir, logger), func() {}, nil
	}
}

// initialize creates the stores, the policy admins and the seeded catalog.
func (a *application) initialize(ctx context.Context, reset bool) error {
	if reset {
		if err := store.Reset(ctx, a.backend, a.logger); err != nil {
			return err
		}
	} else if err := store.Bootstrap(ctx, a.backend, a.logger); err != nil {
		return err
	}

	admins, err := a.accounts.EnsureAdmins(ctx, a.policy)
	if err != nil {
		return fmt.Errorf("failed to create admin accounts: %w", err)
	}
	a.logger.Info().Int("changed", admins).Msg("admin accounts ensured")

	if a.cfg.Seed.File == "" {
		return nil
	}
	seeded, err := seed.NewSeeder(a.catalog, a.seedLoader(ctx), a.logger).Seed(ctx, a.cfg.Seed.File)
	if err != nil {
		return err
	}
	a.logger.Info().Int("items", seeded).Msg("catalog seeded")
	return nil
}

// seedLoader reads seed files from S3 when enabled, falling back to the
// local file system.
func (a *application) seedLoader(ctx context.Context) seed.Loader {
	fileLoader := seed.NewFileLoader(a.logger)
	if !a.cfg.Seed.S3Enabled {
		a.logger.Info().Msg("using local file system for seed files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := seed.NewS3Loader(ctx, a.cfg.Seed.S3Bucket, a.cfg.Seed.S3Region, a.logger)
	if err != nil {
		a.logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}
	return seed.NewFallbackLoader(s3Loader, fileLoader, a.cfg.Seed.S3Prefix, true, a.logger)
}
