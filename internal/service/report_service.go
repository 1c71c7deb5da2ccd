package service

import (
	"context"
	"errors"
	"fmt"

	"order-app/internal/model"
	"order-app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// reportService implements ReportService.
type reportService struct {
	orderRepo   repository.OrderRepository
	accountRepo repository.AccountRepository
	catalog     CatalogService
	coupons     CouponService
	pricer      *Pricer
	logger      zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(
	orderRepo repository.OrderRepository,
	accountRepo repository.AccountRepository,
	catalog CatalogService,
	coupons CouponService,
	pricer *Pricer,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		orderRepo:   orderRepo,
		accountRepo: accountRepo,
		catalog:     catalog,
		coupons:     coupons,
		pricer:      pricer,
		logger:      logger.With().Str("service", "report").Logger(),
	}
}

// AllOrders lists every order with user and item names resolved.
func (s *reportService) AllOrders(ctx context.Context, p model.Principal) ([]OrderSummary, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	usernames, err := s.usernames(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		summary := OrderSummary{Order: o, Username: usernames[o.UserID]}
		if summary.Username == "" {
			summary.Username = fmt.Sprintf("user #%d (removed)", o.UserID)
		}

		for _, itemID := range o.ItemIDs() {
			item, err := s.catalog.Lookup(ctx, itemID)
			if err != nil {
				if !errors.Is(err, model.ErrItemNotFound) {
					return nil, err
				}
				item = &model.Item{ID: itemID, Name: fmt.Sprintf("item #%d (removed)", itemID)}
			}
			summary.Lines = append(summary.Lines, s.pricer.Line(*item, o.Items[itemID]))
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Brutto sums the totals of all orders.
func (s *reportService) Brutto(ctx context.Context, p model.Principal) (float64, error) {
	return s.sum(ctx, p, func(model.Order) bool { return true })
}

// Paid sums the totals of paid orders.
func (s *reportService) Paid(ctx context.Context, p model.Principal) (float64, error) {
	return s.sum(ctx, p, func(o model.Order) bool { return o.Status == model.StatusPaid })
}

func (s *reportService) sum(ctx context.Context, p model.Principal, keep func(model.Order) bool) (float64, error) {
	if err := requireAdmin(p); err != nil {
		return 0, err
	}

	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, o := range orders {
		if keep(o) {
			total = total.Add(decimal.NewFromFloat(o.Total))
		}
	}
	return total.Round(2).InexactFloat64(), nil
}

// PopularItems returns the topN most sold items.
func (s *reportService) PopularItems(ctx context.Context, p model.Principal, topN int) ([]model.ItemSales, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.catalog.MostPopular(ctx, orders, topN)
}

// UsedCoupons lists accounts whose coupon has been used.
func (s *reportService) UsedCoupons(ctx context.Context, p model.Principal) ([]CouponOwner, error) {
	return s.couponOwners(ctx, p, true)
}

// ActiveCoupons lists accounts whose coupon is still unused.
func (s *reportService) ActiveCoupons(ctx context.Context, p model.Principal) ([]CouponOwner, error) {
	return s.couponOwners(ctx, p, false)
}

func (s *reportService) couponOwners(ctx context.Context, p model.Principal, used bool) ([]CouponOwner, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, err
	}
	status := make(map[string]bool, len(coupons))
	for _, c := range coupons {
		status[c.Value] = c.Used
	}

	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var owners []CouponOwner
	for _, a := range accounts {
		isUsed, ok := status[a.Coupon]
		if !ok {
			s.logger.Warn().Int("user_id", a.ID).Msg("account coupon missing from ledger")
			continue
		}
		if isUsed == used {
			owners = append(owners, CouponOwner{UserID: a.ID, Username: a.Username, Coupon: a.Coupon})
		}
	}
	return owners, nil
}

func (s *reportService) usernames(ctx context.Context) (map[int]string, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Username
	}
	return names, nil
}
