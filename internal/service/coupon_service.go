package service

import (
	"context"
	"fmt"

	"order-app/internal/model"
	"order-app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	newToken   func() string
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon ledger service.
func NewCouponService(couponRepo repository.CouponRepository, logger zerolog.Logger) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		newToken:   uuid.NewString,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// Issue creates a new unused coupon.
func (s *couponService) Issue(ctx context.Context) (*model.Coupon, error) {
	c := &model.Coupon{Value: s.newToken()}
	if err := s.couponRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("coupon", c.Value).Msg("coupon issued")
	return c, nil
}

// Status reports whether the coupon has been used.
func (s *couponService) Status(ctx context.Context, token string) (bool, error) {
	c, err := s.couponRepo.GetByValue(ctx, token)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, fmt.Errorf("coupon %s: %w", token, model.ErrInvalidCoupon)
	}
	return c.Used, nil
}

// Redeem marks the coupon used.
func (s *couponService) Redeem(ctx context.Context, token string) error {
	_, err := s.couponRepo.Update(ctx, token, func(c *model.Coupon) error {
		if c.Used {
			return model.ErrInvalidCouponStatus
		}
		c.Used = true
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("coupon", token).Msg("failed to redeem coupon")
		return err
	}

	s.logger.Info().Str("coupon", token).Msg("coupon redeemed")
	return nil
}

// Refund marks the coupon unused. Refunding an unused coupon changes nothing
// and reports false.
func (s *couponService) Refund(ctx context.Context, token string) (bool, error) {
	var wasUsed bool
	_, err := s.couponRepo.Update(ctx, token, func(c *model.Coupon) error {
		wasUsed = c.Used
		c.Used = false
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("coupon", token).Msg("failed to refund coupon")
		return false, err
	}

	if wasUsed {
		s.logger.Info().Str("coupon", token).Msg("coupon refunded")
	}
	return wasUsed, nil
}

// List returns every coupon.
func (s *couponService) List(ctx context.Context) ([]model.Coupon, error) {
	return s.couponRepo.List(ctx)
}
