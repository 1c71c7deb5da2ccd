package integration

import (
	"context"
	"testing"
	"time"

	"order-app/internal/config"
	"order-app/internal/database"
	"order-app/internal/model"
	"order-app/internal/repository"
	"order-app/internal/service"
	"order-app/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the
// record store schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}
	pool, err := database.Connect(ctx, connStr, dbConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes every record store row.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "DELETE FROM record_stores"); err != nil {
		t.Logf("failed to clean record stores: %v", err)
	}
}

// Stack is every service wired over the postgres backend.
type Stack struct {
	Backend  store.Backend
	Pricer   *service.Pricer
	Catalog  service.CatalogService
	Coupons  service.CouponService
	Accounts service.AccountService
	Orders   service.OrderService
	Reports  service.ReportService

	Admin    *model.Account
	Customer *model.Account
}

// NewStack bootstraps fresh stores and wires the services. It creates the
// admin root@order.app and the customer alice@example.com.
func NewStack(t *testing.T, testDB *TestDB) *Stack {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()
	CleanupDB(t, testDB.Pool)

	backend := store.NewPostgresBackend(testDB.Pool, logger)
	if err := store.Bootstrap(ctx, backend, logger); err != nil {
		t.Fatalf("failed to bootstrap stores: %v", err)
	}
	seq := store.NewSequence(backend)

	itemRepo := repository.NewItemRepository(backend, logger)
	couponRepo := repository.NewCouponRepository(backend, logger)
	orderRepo := repository.NewOrderRepository(backend, seq, logger)
	accountRepo := repository.NewAccountRepository(backend, seq, logger)

	policy := &config.AdminPolicy{Admins: []config.AdminAccount{
		{Username: "root", Email: "root@order.app", Password: "secret"},
	}}

	s := &Stack{Backend: backend}
	s.Pricer = service.NewPricer(config.PricingConfig{CouponRate: 0.95, WholesaleRate: 0.85, WholesaleThreshold: 1000})
	s.Catalog = service.NewCatalogService(itemRepo, logger)
	s.Coupons = service.NewCouponService(couponRepo, logger)
	s.Accounts = service.NewAccountService(accountRepo, orderRepo, s.Coupons, policy, logger)
	s.Orders = service.NewOrderService(orderRepo, s.Catalog, s.Coupons, s.Accounts, s.Pricer, logger)
	s.Reports = service.NewReportService(orderRepo, accountRepo, s.Catalog, s.Coupons, s.Pricer, logger)

	if _, err := s.Accounts.EnsureAdmins(ctx, policy); err != nil {
		t.Fatalf("failed to create admins: %v", err)
	}
	var err error
	if s.Admin, err = s.Accounts.Login(ctx, "root@order.app", "secret"); err != nil {
		t.Fatalf("failed to log in admin: %v", err)
	}
	if s.Customer, err = s.Accounts.Register(ctx, "alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("failed to register customer: %v", err)
	}

	return s
}

// SeedItems imports a small catalog.
func (s *Stack) SeedItems(t *testing.T) []model.Item {
	t.Helper()

	ctx := context.Background()
	items := []model.Item{
		{Name: "Milk", Price: 1.2, Stock: 10},
		{Name: "Desk", Price: 400, Stock: 5},
		{Name: "Salt", Price: 0.5, Stock: 0},
	}
	if _, err := s.Catalog.Import(ctx, items); err != nil {
		t.Fatalf("failed to seed items: %v", err)
	}

	stored, err := s.Catalog.List(ctx)
	if err != nil {
		t.Fatalf("failed to list items: %v", err)
	}
	return stored
}
