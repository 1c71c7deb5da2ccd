package service

import (
	"context"
	"testing"
	"time"

	"order-app/internal/config"
	"order-app/internal/model"
	"order-app/internal/repository"
	"order-app/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testPricing = config.PricingConfig{
	CouponRate:         0.95,
	WholesaleRate:      0.85,
	WholesaleThreshold: 1000,
}

// testEnv wires every service over an in-memory backend.
type testEnv struct {
	backend  store.Backend
	items    repository.ItemRepository
	couponsR repository.CouponRepository
	ordersR  repository.OrderRepository
	accounts repository.AccountRepository

	catalog CatalogService
	coupons CouponService
	account AccountService
	orders  OrderService
	reports ReportService

	admin    *model.Account
	customer *model.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	backend := store.NewMemoryBackend()
	require.NoError(t, store.Bootstrap(ctx, backend, logger))
	seq := store.NewSequence(backend)

	env := &testEnv{
		backend:  backend,
		items:    repository.NewItemRepository(backend, logger),
		couponsR: repository.NewCouponRepository(backend, logger),
		ordersR:  repository.NewOrderRepository(backend, seq, logger),
		accounts: repository.NewAccountRepository(backend, seq, logger),
	}

	policy := &config.AdminPolicy{Admins: []config.AdminAccount{
		{Username: "root", Email: "root@order.app", Password: "secret"},
	}}
	pricer := NewPricer(testPricing)

	env.catalog = NewCatalogService(env.items, logger)
	env.coupons = NewCouponService(env.couponsR, logger)
	env.account = NewAccountService(env.accounts, env.ordersR, env.coupons, policy, logger)
	env.orders = NewOrderService(env.ordersR, env.catalog, env.coupons, env.account, pricer, logger)
	env.reports = NewReportService(env.ordersR, env.accounts, env.catalog, env.coupons, pricer, logger)

	svc := env.orders.(*orderService)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

	_, err := env.account.EnsureAdmins(ctx, policy)
	require.NoError(t, err)
	env.admin, err = env.account.Login(ctx, "root@order.app", "secret")
	require.NoError(t, err)

	env.customer, err = env.account.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	return env
}

// seedItem stores an item directly, bypassing the admin check.
func (e *testEnv) seedItem(t *testing.T, name string, price float64, stock int) *model.Item {
	t.Helper()
	item := &model.Item{Name: name, Price: price, Stock: stock}
	require.NoError(t, e.items.Create(context.Background(), item))
	return item
}

func (e *testEnv) stock(t *testing.T, id int) int {
	t.Helper()
	item, err := e.catalog.Lookup(context.Background(), id)
	require.NoError(t, err)
	return item.Stock
}

func (e *testEnv) couponUsed(t *testing.T, account *model.Account) bool {
	t.Helper()
	used, err := e.coupons.Status(context.Background(), account.Coupon)
	require.NoError(t, err)
	return used
}
