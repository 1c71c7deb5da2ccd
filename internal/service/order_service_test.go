package service

import (
	"context"
	"testing"

	"order-app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_AddToCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.seedItem(t, "Chair", 50, 5)
	cart := &model.Cart{}

	got, err := env.orders.AddToCart(ctx, cart, item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "Chair", got.Name)

	_, err = env.orders.AddToCart(ctx, cart, item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Quantity(item.ID), "quantities accumulate")

	_, err = env.orders.AddToCart(ctx, cart, item.ID, 1)
	assert.ErrorIs(t, err, model.ErrInsufficientStock, "the cart already holds all stock")

	_, err = env.orders.AddToCart(ctx, cart, 99, 1)
	assert.ErrorIs(t, err, model.ErrItemNotFound)

	_, err = env.orders.AddToCart(ctx, cart, item.ID, 0)
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)

	assert.Equal(t, 5, env.stock(t, item.ID), "stock is not touched by the cart")
}

func TestOrderService_SaveDiscountPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		useCoupon  bool
		wantTotal  float64
		wantKind   model.DiscountKind
		wantCoupon bool
	}{
		{name: "coupon", useCoupon: true, wantTotal: 1140.00, wantKind: model.DiscountCoupon, wantCoupon: true},
		{name: "wholesale", useCoupon: false, wantTotal: 1020.00, wantKind: model.DiscountWholesale, wantCoupon: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			item := env.seedItem(t, "Desk", 400, 10)
			cart := &model.Cart{}
			_, err := env.orders.AddToCart(ctx, cart, item.ID, 3)
			require.NoError(t, err)

			order, err := env.orders.Save(ctx, env.customer, cart, tt.useCoupon)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTotal, order.Total)
			assert.Equal(t, 1200.0, order.Subtotal)
			assert.Equal(t, tt.wantKind, order.Discount)
			assert.Equal(t, tt.wantCoupon, order.CouponUsed)
			assert.Equal(t, model.StatusOrdered, order.Status)
			assert.Equal(t, map[int]int{item.ID: 3}, order.Items)
			assert.Equal(t, tt.wantCoupon, env.couponUsed(t, env.customer))
			assert.Equal(t, 7, env.stock(t, item.ID))
			assert.True(t, cart.Empty())

			account, err := env.account.Get(ctx, env.customer.ID)
			require.NoError(t, err)
			assert.Equal(t, []int{order.ID}, account.Orders)
		})
	}
}

func TestOrderService_UsedCouponFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.seedItem(t, "Lamp", 20, 10)

	cart := &model.Cart{}
	_, err := env.orders.AddToCart(ctx, cart, item.ID, 1)
	require.NoError(t, err)
	first, err := env.orders.Save(ctx, env.customer, cart, true)
	require.NoError(t, err)
	assert.True(t, first.CouponUsed)
	assert.Equal(t, 19.0, first.Total)

	_, err = env.orders.AddToCart(ctx, cart, item.ID, 1)
	require.NoError(t, err)
	second, err := env.orders.Save(ctx, env.customer, cart, true)
	require.NoError(t, err)
	assert.False(t, second.CouponUsed, "a used coupon cannot be applied twice")
	assert.Equal(t, model.DiscountNone, second.Discount)
	assert.Equal(t, 20.0, second.Total)
}

func TestOrderService_SaveThenCancelRestores(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seedItem(t, "A", 10, 5)
	b := env.seedItem(t, "B", 2.5, 8)

	cart := &model.Cart{}
	_, err := env.orders.AddToCart(ctx, cart, a.ID, 2)
	require.NoError(t, err)
	_, err = env.orders.AddToCart(ctx, cart, b.ID, 8)
	require.NoError(t, err)

	order, err := env.orders.Save(ctx, env.customer, cart, true)
	require.NoError(t, err)
	assert.Equal(t, 3, env.stock(t, a.ID))
	assert.Equal(t, 0, env.stock(t, b.ID))
	assert.True(t, env.couponUsed(t, env.customer))

	require.NoError(t, env.orders.Cancel(ctx, env.customer, order.ID))

	assert.Equal(t, 5, env.stock(t, a.ID))
	assert.Equal(t, 8, env.stock(t, b.ID))
	assert.False(t, env.couponUsed(t, env.customer))

	_, err = env.orders.Get(ctx, env.customer, order.ID)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)

	saved, err := env.account.SavedOrders(ctx, env.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)

	assert.ErrorIs(t, env.orders.Cancel(ctx, env.customer, order.ID), model.ErrOrderNotFound)
}

func TestOrderService_SaveCompensatesOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seedItem(t, "A", 10, 5)
	b := env.seedItem(t, "B", 10, 5)

	cart := &model.Cart{}
	_, err := env.orders.AddToCart(ctx, cart, a.ID, 2)
	require.NoError(t, err)
	_, err = env.orders.AddToCart(ctx, cart, b.ID, 4)
	require.NoError(t, err)

	// Stock of b drops after it was picked, so the re-check at save time fails.
	require.NoError(t, env.catalog.DecrementStock(ctx, b.ID, 3))

	_, err = env.orders.Save(ctx, env.customer, cart, true)
	assert.ErrorIs(t, err, model.ErrInsufficientStock)

	assert.Equal(t, 5, env.stock(t, a.ID))
	assert.Equal(t, 2, env.stock(t, b.ID))
	assert.False(t, env.couponUsed(t, env.customer))
	assert.False(t, cart.Empty(), "the cart survives a failed save")

	orders, err := env.orders.ListForUser(ctx, env.customer)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_SaveEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.Save(context.Background(), env.customer, &model.Cart{}, false)

	assert.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestOrderService_Pay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.seedItem(t, "Sofa", 600, 3)

	cart := &model.Cart{}
	_, err := env.orders.AddToCart(ctx, cart, item.ID, 2)
	require.NoError(t, err)
	order, err := env.orders.Save(ctx, env.customer, cart, false)
	require.NoError(t, err)

	other, err := env.account.Register(ctx, "bob", "bob@example.com", "pw")
	require.NoError(t, err)
	_, err = env.orders.Pay(ctx, other, order.ID)
	assert.ErrorIs(t, err, model.ErrOrderNotOwned)

	paid, err := env.orders.Pay(ctx, env.customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, 1, env.stock(t, item.ID), "payment has no stock effect")

	saved, err := env.account.SavedOrders(ctx, env.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)

	_, err = env.orders.Pay(ctx, env.customer, order.ID)
	assert.ErrorIs(t, err, model.ErrOrderAlreadyPaid)
	assert.ErrorIs(t, env.orders.Cancel(ctx, env.customer, order.ID), model.ErrOrderAlreadyPaid)

	require.NoError(t, env.account.CanLogout(ctx, env.customer.ID, cart))
}

func TestOrderService_Receipt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seedItem(t, "Table", 700, 5)
	b := env.seedItem(t, "Cup", 2.5, 50)

	cart := &model.Cart{}
	_, err := env.orders.AddToCart(ctx, cart, b.ID, 4)
	require.NoError(t, err)
	_, err = env.orders.AddToCart(ctx, cart, a.ID, 2)
	require.NoError(t, err)
	order, err := env.orders.Save(ctx, env.customer, cart, false)
	require.NoError(t, err)
	_, err = env.orders.Pay(ctx, env.customer, order.ID)
	require.NoError(t, err)

	receipt, err := env.orders.Receipt(ctx, env.customer, order.ID)
	require.NoError(t, err)

	assert.Equal(t, order.ID, receipt.OrderID)
	assert.Equal(t, "alice", receipt.Customer)
	assert.Equal(t, 1410.0, receipt.Subtotal)
	assert.Equal(t, 1198.5, receipt.Total)
	assert.Equal(t, model.DiscountWholesale, receipt.Discount)
	assert.Equal(t, int64(15), receipt.Percent)
	require.Len(t, receipt.Lines, 2)
	assert.Equal(t, OrderLine{ItemID: a.ID, Name: "Table", Price: 700, Quantity: 2, Amount: 1400}, receipt.Lines[0])
	assert.Equal(t, OrderLine{ItemID: b.ID, Name: "Cup", Price: 2.5, Quantity: 4, Amount: 10}, receipt.Lines[1])

	_, err = env.orders.Receipt(ctx, env.admin, order.ID)
	assert.NoError(t, err, "admins can read any receipt")
}

func TestOrderService_ExportRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.seedItem(t, "Pen", 1.25, 10)

	cart := &model.Cart{}
	_, err := env.orders.AddToCart(ctx, cart, item.ID, 4)
	require.NoError(t, err)
	order, err := env.orders.Save(ctx, env.customer, cart, true)
	require.NoError(t, err)

	export, err := env.orders.ExportRows(ctx, env.customer, order.ID)
	require.NoError(t, err)

	assert.Equal(t, order.ID, export.OrderID)
	assert.True(t, export.CouponUsed)
	assert.Equal(t, model.DiscountCoupon, export.Discount)
	assert.Equal(t, int64(5), export.Percent)
	assert.Equal(t, 4.75, export.Sum)
	assert.Equal(t, []OrderLine{{ItemID: item.ID, Name: "Pen", Price: 1.25, Quantity: 4, Amount: 5}}, export.Rows)

	t.Run("removed items keep their id", func(t *testing.T) {
		require.NoError(t, env.catalog.Delete(ctx, env.admin, item.ID))

		export, err := env.orders.ExportRows(ctx, env.customer, order.ID)
		require.NoError(t, err)
		require.Len(t, export.Rows, 1)
		assert.Equal(t, item.ID, export.Rows[0].ItemID)
		assert.Contains(t, export.Rows[0].Name, "removed")
	})
}

func TestOrderService_CancelAfterItemDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seedItem(t, "A", 1, 5)
	b := env.seedItem(t, "B", 1, 5)

	cart := &model.Cart{}
	_, err := env.orders.AddToCart(ctx, cart, a.ID, 1)
	require.NoError(t, err)
	_, err = env.orders.AddToCart(ctx, cart, b.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.Save(ctx, env.customer, cart, false)
	require.NoError(t, err)

	require.NoError(t, env.catalog.Delete(ctx, env.admin, a.ID))

	require.NoError(t, env.orders.Cancel(ctx, env.customer, order.ID))
	assert.Equal(t, 5, env.stock(t, b.ID))
}

func TestOrderService_Quote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.seedItem(t, "TV", 1100, 2)

	cart := &model.Cart{}
	_, err := env.orders.AddToCart(ctx, cart, item.ID, 1)
	require.NoError(t, err)

	q, err := env.orders.Quote(ctx, env.customer, cart, true)
	require.NoError(t, err)
	assert.Equal(t, "1045", q.Total.String())
	assert.Equal(t, model.DiscountCoupon, q.Discount)

	// Quoting changes nothing.
	assert.False(t, env.couponUsed(t, env.customer))
	assert.Equal(t, 2, env.stock(t, item.ID))
	assert.False(t, cart.Empty())
}

func TestOrderService_LogoutGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.seedItem(t, "Mug", 3, 5)

	cart := &model.Cart{}
	require.NoError(t, env.account.CanLogout(ctx, env.customer.ID, cart))

	_, err := env.orders.AddToCart(ctx, cart, item.ID, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, env.account.CanLogout(ctx, env.customer.ID, cart), model.ErrPendingOrders)

	_, err = env.orders.Save(ctx, env.customer, cart, false)
	require.NoError(t, err)
	assert.ErrorIs(t, env.account.CanLogout(ctx, env.customer.ID, cart), model.ErrPendingOrders)
}

// failingAttach is an AccountService whose AttachOrder always fails.
type failingAttach struct {
	AccountService
}

func (failingAttach) AttachOrder(context.Context, int, int) error {
	return model.ErrUserNotFound
}

func TestOrderService_SaveRollsBackCompletedSteps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seedItem(t, "A", 10, 5)
	b := env.seedItem(t, "B", 10, 5)

	svc := env.orders.(*orderService)
	svc.accounts = failingAttach{AccountService: env.account}

	cart := &model.Cart{}
	_, err := svc.AddToCart(ctx, cart, a.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, cart, b.ID, 4)
	require.NoError(t, err)

	_, err = svc.Save(ctx, env.customer, cart, true)
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	// Stock, coupon and the persisted order are all undone.
	assert.Equal(t, 5, env.stock(t, a.ID))
	assert.Equal(t, 5, env.stock(t, b.ID))
	assert.False(t, env.couponUsed(t, env.customer))

	orders, err := env.ordersR.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.False(t, cart.Empty())
}
