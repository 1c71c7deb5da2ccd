package session

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"order-app/internal/config"
	"order-app/internal/export"
	"order-app/internal/model"
	"order-app/internal/repository"
	"order-app/internal/service"
	"order-app/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// testApp wires a full application over an in-memory backend.
type testApp struct {
	out       *bytes.Buffer
	exportDir string

	catalog  service.CatalogService
	accounts service.AccountService
	orders   service.OrderService
	coupons  service.CouponService
	reports  service.ReportService
	pricer   *service.Pricer

	admin    *model.Account
	customer *model.Account
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	backend := store.NewMemoryBackend()
	require.NoError(t, store.Bootstrap(ctx, backend, logger))
	seq := store.NewSequence(backend)

	itemRepo := repository.NewItemRepository(backend, logger)
	couponRepo := repository.NewCouponRepository(backend, logger)
	orderRepo := repository.NewOrderRepository(backend, seq, logger)
	accountRepo := repository.NewAccountRepository(backend, seq, logger)

	policy := &config.AdminPolicy{Admins: []config.AdminAccount{
		{Username: "root", Email: "root@order.app", Password: "secret"},
	}}
	pricer := service.NewPricer(config.PricingConfig{CouponRate: 0.95, WholesaleRate: 0.85, WholesaleThreshold: 1000})

	a := &testApp{out: &bytes.Buffer{}, exportDir: t.TempDir(), pricer: pricer}
	a.catalog = service.NewCatalogService(itemRepo, logger)
	a.coupons = service.NewCouponService(couponRepo, logger)
	a.accounts = service.NewAccountService(accountRepo, orderRepo, a.coupons, policy, logger)
	a.orders = service.NewOrderService(orderRepo, a.catalog, a.coupons, a.accounts, pricer, logger)
	a.reports = service.NewReportService(orderRepo, accountRepo, a.catalog, a.coupons, pricer, logger)

	_, err := a.accounts.EnsureAdmins(ctx, policy)
	require.NoError(t, err)
	a.admin, err = a.accounts.Login(ctx, "root@order.app", "secret")
	require.NoError(t, err)
	a.customer, err = a.accounts.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	return a
}

// run feeds the input lines to a fresh application and returns its output.
func (a *testApp) run(t *testing.T, lines ...string) string {
	t.Helper()
	a.out.Reset()
	app := a.build(strings.Join(lines, "\n") + "\n")
	require.NoError(t, app.Run(context.Background()))
	return a.out.String()
}

func (a *testApp) build(input string) *App {
	logger := zerolog.Nop()
	console := NewConsole(strings.NewReader(input), a.out)
	router := NewRouter()
	h := NewHandlers(console, a.catalog, a.orders, a.accounts, a.reports, export.NewXLSXWriter(a.exportDir, logger), a.pricer, logger)
	h.Register(router)
	return NewApp(console, router, a.accounts, logger)
}

func (a *testApp) seedItem(t *testing.T, name string, price float64, stock int) *model.Item {
	t.Helper()
	item, err := a.catalog.Create(context.Background(), a.admin, name, price, stock)
	require.NoError(t, err)
	return item
}
