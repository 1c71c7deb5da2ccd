package repository

import (
	"context"
	"fmt"
	"sort"

	"order-app/internal/model"
	"order-app/internal/store"

	"github.com/rs/zerolog"
)

// couponRepository implements CouponRepository on top of the coupons store.
type couponRepository struct {
	coupons *store.Collection[model.Coupon]
	logger  zerolog.Logger
}

// NewCouponRepository creates a store-backed coupon repository.
func NewCouponRepository(backend store.Backend, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		coupons: store.NewCollection[model.Coupon](backend, store.Coupons),
		logger:  logger.With().Str("repository", "coupon").Logger(),
	}
}

// List returns every coupon ordered by value.
func (r *couponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	records, err := r.coupons.Load(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to load coupons")
		return nil, fmt.Errorf("failed to load coupons: %w", err)
	}

	coupons := make([]model.Coupon, 0, len(records))
	for value, c := range records {
		c.Value = value
		coupons = append(coupons, c)
	}
	sort.Slice(coupons, func(i, j int) bool {
		return coupons[i].Value < coupons[j].Value
	})
	return coupons, nil
}

// GetByValue returns the coupon or nil when it does not exist.
func (r *couponRepository) GetByValue(ctx context.Context, value string) (*model.Coupon, error) {
	records, err := r.coupons.Load(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to load coupons")
		return nil, fmt.Errorf("failed to load coupons: %w", err)
	}

	c, ok := records[value]
	if !ok {
		r.logger.Debug().Str("coupon", value).Msg("coupon not found")
		return nil, nil
	}
	c.Value = value
	return &c, nil
}

// Create stores a new coupon.
func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	err := r.coupons.Update(ctx, func(records map[string]model.Coupon) error {
		if _, exists := records[coupon.Value]; exists {
			return fmt.Errorf("coupon %s already exists", coupon.Value)
		}
		records[coupon.Value] = *coupon
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

// Update applies fn to the stored coupon.
func (r *couponRepository) Update(ctx context.Context, value string, fn func(coupon *model.Coupon) error) (*model.Coupon, error) {
	var updated model.Coupon
	err := r.coupons.Update(ctx, func(records map[string]model.Coupon) error {
		c, ok := records[value]
		if !ok {
			return model.ErrInvalidCoupon
		}
		c.Value = value
		if err := fn(&c); err != nil {
			return err
		}
		records[value] = c
		updated = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("coupon %s: %w", value, err)
	}
	return &updated, nil
}
