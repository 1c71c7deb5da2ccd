package service

import (
	"context"
	"testing"

	"order-app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.coupons.Issue(ctx)
	require.NoError(t, err)
	assert.Len(t, c.Value, 36)
	assert.False(t, c.Used)

	refunded, err := env.coupons.Refund(ctx, c.Value)
	require.NoError(t, err)
	assert.False(t, refunded, "refunding an unused coupon is a no-op")

	require.NoError(t, env.coupons.Redeem(ctx, c.Value))

	used, err := env.coupons.Status(ctx, c.Value)
	require.NoError(t, err)
	assert.True(t, used)

	// Reading twice without writes yields the same answer.
	used, err = env.coupons.Status(ctx, c.Value)
	require.NoError(t, err)
	assert.True(t, used)

	assert.ErrorIs(t, env.coupons.Redeem(ctx, c.Value), model.ErrInvalidCouponStatus)

	refunded, err = env.coupons.Refund(ctx, c.Value)
	require.NoError(t, err)
	assert.True(t, refunded)

	used, err = env.coupons.Status(ctx, c.Value)
	require.NoError(t, err)
	assert.False(t, used)
}

func TestCouponService_UnknownToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.coupons.Status(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrInvalidCoupon)

	assert.ErrorIs(t, env.coupons.Redeem(ctx, "missing"), model.ErrInvalidCoupon)

	_, err = env.coupons.Refund(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrInvalidCoupon)
}

func TestCouponService_IssueIsUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for range 20 {
		c, err := env.coupons.Issue(ctx)
		require.NoError(t, err)
		assert.False(t, seen[c.Value])
		seen[c.Value] = true
	}

	coupons, err := env.coupons.List(ctx)
	require.NoError(t, err)
	assert.Len(t, coupons, 22, "20 issued plus the admin's and alice's")
}
