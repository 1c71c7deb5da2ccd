package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-app/internal/model"
	"order-app/internal/repository"

	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	catalog   CatalogService
	coupons   CouponService
	accounts  AccountService
	pricer    *Pricer
	now       func() time.Time
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	catalog CatalogService,
	coupons CouponService,
	accounts AccountService,
	pricer *Pricer,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		catalog:   catalog,
		coupons:   coupons,
		accounts:  accounts,
		pricer:    pricer,
		now:       time.Now,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// AddToCart adds qty units of itemID to cart. Availability is checked
// against the quantity already in the cart plus qty.
func (s *orderService) AddToCart(ctx context.Context, cart *model.Cart, itemID, qty int) (*model.Item, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	item, err := s.catalog.Lookup(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Available(cart.Quantity(itemID) + qty) {
		s.logger.Debug().Int("item_id", itemID).Int("quantity", qty).Int("stock", item.Stock).Msg("pick exceeds stock")
		return nil, fmt.Errorf("%s x %d: %w", item.Name, qty, model.ErrInsufficientStock)
	}

	cart.Add(itemID, qty)
	return item, nil
}

// Quote prices cart without saving anything.
func (s *orderService) Quote(ctx context.Context, p model.Principal, cart *model.Cart, useCoupon bool) (*Quote, error) {
	if cart.Empty() {
		return nil, model.ErrEmptyCart
	}

	account, err := s.accounts.Get(ctx, p.PrincipalID())
	if err != nil {
		return nil, err
	}

	lines, err := s.resolveCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	couponAvailable, err := s.couponAvailable(ctx, account, useCoupon)
	if err != nil {
		return nil, err
	}
	return s.pricer.Price(lines, couponAvailable), nil
}

// Save runs the save saga:
//
//  1. validate the cart and re-check availability
//  2. price it
//  3. take stock for every line
//  4. redeem the coupon when it was applied
//  5. persist the order
//  6. attach it to the account
//  7. clear the cart
func (s *orderService) Save(ctx context.Context, p model.Principal, cart *model.Cart, useCoupon bool) (*model.Order, error) {
	if cart.Empty() {
		return nil, model.ErrEmptyCart
	}

	account, err := s.accounts.Get(ctx, p.PrincipalID())
	if err != nil {
		return nil, err
	}

	var (
		quote *Quote
		order *model.Order
	)

	saga := NewSaga("save_order", s.logger).
		Step("validate cart", func(ctx context.Context) error {
			for _, l := range cart.Lines {
				ok, err := s.catalog.CheckAvailability(ctx, l.ItemID, l.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("item %d: %w", l.ItemID, model.ErrInsufficientStock)
				}
			}
			return nil
		}, nil).
		Step("price cart", func(ctx context.Context) error {
			lines, err := s.resolveCart(ctx, cart)
			if err != nil {
				return err
			}
			couponAvailable, err := s.couponAvailable(ctx, account, useCoupon)
			if err != nil {
				return err
			}
			quote = s.pricer.Price(lines, couponAvailable)
			return nil
		}, nil)

	for _, l := range cart.Lines {
		saga.Step(fmt.Sprintf("decrement stock of item %d", l.ItemID),
			func(ctx context.Context) error {
				return s.catalog.DecrementStock(ctx, l.ItemID, l.Quantity)
			},
			func(ctx context.Context) error {
				return s.catalog.IncrementStock(ctx, l.ItemID, l.Quantity)
			})
	}

	saga.
		Step("redeem coupon", func(ctx context.Context) error {
			if quote.Discount != model.DiscountCoupon {
				return nil
			}
			return s.coupons.Redeem(ctx, account.Coupon)
		}, func(ctx context.Context) error {
			if quote.Discount != model.DiscountCoupon {
				return nil
			}
			_, err := s.coupons.Refund(ctx, account.Coupon)
			return err
		}).
		Step("persist order", func(ctx context.Context) error {
			order = &model.Order{
				UserID:     account.ID,
				Items:      cart.Items(),
				Subtotal:   quote.Subtotal.Round(2).InexactFloat64(),
				Total:      quote.Total.InexactFloat64(),
				Discount:   quote.Discount,
				CouponUsed: quote.Discount == model.DiscountCoupon,
				Status:     model.StatusOrdered,
				CreatedAt:  s.now(),
			}
			return s.orderRepo.Create(ctx, order)
		}, func(ctx context.Context) error {
			return s.orderRepo.Delete(ctx, order.ID)
		}).
		Step("attach to account", func(ctx context.Context) error {
			return s.accounts.AttachOrder(ctx, account.ID, order.ID)
		}, func(ctx context.Context) error {
			return s.accounts.DetachOrder(ctx, account.ID, order.ID)
		}).
		Step("clear cart", func(context.Context) error {
			cart.Clear()
			return nil
		}, nil)

	if err := saga.Run(ctx); err != nil {
		s.logger.Warn().Err(err).Int("user_id", account.ID).Msg("failed to save order")
		return nil, err
	}

	s.logger.Info().
		Int("order_id", order.ID).
		Int("user_id", order.UserID).
		Float64("total", order.Total).
		Str("discount", string(order.Discount)).
		Msg("order saved")
	return order, nil
}

// Cancel runs the cancel saga: restore stock, refund the coupon, detach the
// order from the account and delete it.
func (s *orderService) Cancel(ctx context.Context, p model.Principal, orderID int) error {
	order, err := s.owned(ctx, p, orderID)
	if err != nil {
		return err
	}
	if order.Status == model.StatusPaid {
		return fmt.Errorf("order %d: %w", orderID, model.ErrOrderAlreadyPaid)
	}

	account, err := s.accounts.Get(ctx, order.UserID)
	if err != nil {
		return err
	}

	saga := NewSaga("cancel_order", s.logger)
	for _, itemID := range order.ItemIDs() {
		qty := order.Items[itemID]
		restored := false
		saga.Step(fmt.Sprintf("restore stock of item %d", itemID),
			func(ctx context.Context) error {
				err := s.catalog.IncrementStock(ctx, itemID, qty)
				if errors.Is(err, model.ErrItemNotFound) {
					s.logger.Warn().Int("item_id", itemID).Int("order_id", orderID).Msg("item deleted, stock not restored")
					return nil
				}
				restored = err == nil
				return err
			},
			func(ctx context.Context) error {
				if !restored {
					return nil
				}
				return s.catalog.DecrementStock(ctx, itemID, qty)
			})
	}

	refunded := false
	saga.
		Step("refund coupon", func(ctx context.Context) error {
			if !order.CouponUsed {
				return nil
			}
			var err error
			refunded, err = s.coupons.Refund(ctx, account.Coupon)
			return err
		}, func(ctx context.Context) error {
			if !refunded {
				return nil
			}
			return s.coupons.Redeem(ctx, account.Coupon)
		}).
		Step("detach from account", func(ctx context.Context) error {
			return s.accounts.DetachOrder(ctx, account.ID, orderID)
		}, func(ctx context.Context) error {
			return s.accounts.AttachOrder(ctx, account.ID, orderID)
		}).
		Step("delete order", func(ctx context.Context) error {
			return s.orderRepo.Delete(ctx, orderID)
		}, nil)

	if err := saga.Run(ctx); err != nil {
		s.logger.Warn().Err(err).Int("order_id", orderID).Msg("failed to cancel order")
		return err
	}

	s.logger.Info().Int("order_id", orderID).Bool("coupon_refunded", refunded).Msg("order canceled")
	return nil
}

// Pay marks a saved order paid and removes it from the account's saved list.
func (s *orderService) Pay(ctx context.Context, p model.Principal, orderID int) (*model.Order, error) {
	order, err := s.owned(ctx, p, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == model.StatusPaid {
		return nil, fmt.Errorf("order %d: %w", orderID, model.ErrOrderAlreadyPaid)
	}

	var paid *model.Order
	err = NewSaga("pay_order", s.logger).
		Step("mark paid", func(ctx context.Context) error {
			var err error
			paid, err = s.orderRepo.Update(ctx, orderID, func(o *model.Order) error {
				if o.Status == model.StatusPaid {
					return model.ErrOrderAlreadyPaid
				}
				now := s.now()
				o.Status = model.StatusPaid
				o.PaidAt = &now
				return nil
			})
			return err
		}, func(ctx context.Context) error {
			_, err := s.orderRepo.Update(ctx, orderID, func(o *model.Order) error {
				o.Status = order.Status
				o.PaidAt = nil
				return nil
			})
			return err
		}).
		Step("detach from account", func(ctx context.Context) error {
			return s.accounts.DetachOrder(ctx, order.UserID, orderID)
		}, nil).
		Run(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Int("order_id", orderID).Msg("failed to pay order")
		return nil, err
	}

	s.logger.Info().Int("order_id", orderID).Float64("total", paid.Total).Msg("order paid")
	return paid, nil
}

// Get returns an order owned by p, or any order for admins.
func (s *orderService) Get(ctx context.Context, p model.Principal, orderID int) (*model.Order, error) {
	return s.owned(ctx, p, orderID)
}

// ListForUser returns every order placed by p.
func (s *orderService) ListForUser(ctx context.Context, p model.Principal) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, p.PrincipalID())
}

// Receipt builds the printable receipt of an order.
func (s *orderService) Receipt(ctx context.Context, p model.Principal, orderID int) (*Receipt, error) {
	order, err := s.owned(ctx, p, orderID)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Get(ctx, order.UserID)
	if err != nil {
		return nil, err
	}

	lines, subtotal, err := s.orderLines(ctx, order)
	if err != nil {
		return nil, err
	}

	issued := s.now()
	if order.PaidAt != nil {
		issued = *order.PaidAt
	}

	discount := discountOf(order)
	return &Receipt{
		OrderID:  order.ID,
		Customer: account.Username,
		IssuedAt: issued,
		Lines:    lines,
		Subtotal: subtotal,
		Total:    order.Total,
		Discount: discount,
		Percent:  s.pricer.Percent(discount),
	}, nil
}

// ExportRows builds the tabular projection of an order.
func (s *orderService) ExportRows(ctx context.Context, p model.Principal, orderID int) (*OrderExport, error) {
	order, err := s.owned(ctx, p, orderID)
	if err != nil {
		return nil, err
	}

	lines, _, err := s.orderLines(ctx, order)
	if err != nil {
		return nil, err
	}

	discount := discountOf(order)
	return &OrderExport{
		OrderID:     order.ID,
		Rows:        lines,
		Discount:    discount,
		Percent:     s.pricer.Percent(discount),
		CouponUsed:  order.CouponUsed,
		Sum:         order.Total,
		GeneratedAt: s.now(),
	}, nil
}

// owned loads an order that p may see.
func (s *orderService) owned(ctx context.Context, p model.Principal, orderID int) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, model.ErrOrderNotFound)
	}
	if order.UserID != p.PrincipalID() && !p.IsAdmin() {
		return nil, fmt.Errorf("order %d: %w", orderID, model.ErrOrderNotOwned)
	}
	return order, nil
}

// resolveCart prices each cart line at the current catalog price.
func (s *orderService) resolveCart(ctx context.Context, cart *model.Cart) ([]OrderLine, error) {
	lines := make([]OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		if l.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		item, err := s.catalog.Lookup(ctx, l.ItemID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, s.pricer.Line(*item, l.Quantity))
	}
	return lines, nil
}

// orderLines resolves the lines of a saved order. Items deleted since the
// order was saved keep their id with no name or price.
func (s *orderService) orderLines(ctx context.Context, order *model.Order) ([]OrderLine, float64, error) {
	lines := make([]OrderLine, 0, len(order.Items))
	for _, itemID := range order.ItemIDs() {
		qty := order.Items[itemID]
		item, err := s.catalog.Lookup(ctx, itemID)
		if err != nil {
			if !errors.Is(err, model.ErrItemNotFound) {
				return nil, 0, err
			}
			item = &model.Item{ID: itemID, Name: fmt.Sprintf("item #%d (removed)", itemID)}
		}
		lines = append(lines, s.pricer.Line(*item, qty))
	}

	if order.Subtotal > 0 {
		return lines, order.Subtotal, nil
	}
	return lines, s.pricer.Price(lines, false).Subtotal.Round(2).InexactFloat64(), nil
}

// couponAvailable reports whether the coupon discount applies: the customer
// opted in and the coupon is still unused.
func (s *orderService) couponAvailable(ctx context.Context, account *model.Account, useCoupon bool) (bool, error) {
	if !useCoupon || account.Coupon == "" {
		return false, nil
	}
	used, err := s.coupons.Status(ctx, account.Coupon)
	if err != nil {
		return false, err
	}
	return !used, nil
}

// discountOf returns the discount recorded on order, deriving it for
// records saved without one.
func discountOf(order *model.Order) model.DiscountKind {
	switch {
	case order.Discount != "":
		return order.Discount
	case order.CouponUsed:
		return model.DiscountCoupon
	case order.Subtotal > 0 && order.Total < order.Subtotal:
		return model.DiscountWholesale
	default:
		return model.DiscountNone
	}
}
