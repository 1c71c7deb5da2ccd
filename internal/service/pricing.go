package service

import (
	"order-app/internal/config"
	"order-app/internal/model"

	"github.com/shopspring/decimal"
)

// Quote is the priced form of a cart.
type Quote struct {
	Lines    []OrderLine
	Subtotal decimal.Decimal
	Total    decimal.Decimal
	Discount model.DiscountKind
}

// Pricer applies the discount precedence. The comparison against the
// wholesale threshold uses the unrounded subtotal; only the final total is
// rounded to two decimals.
type Pricer struct {
	couponRate    decimal.Decimal
	wholesaleRate decimal.Decimal
	threshold     decimal.Decimal
}

// NewPricer creates a pricer from the pricing configuration.
func NewPricer(cfg config.PricingConfig) *Pricer {
	return &Pricer{
		couponRate:    decimal.NewFromFloat(cfg.CouponRate),
		wholesaleRate: decimal.NewFromFloat(cfg.WholesaleRate),
		threshold:     decimal.NewFromFloat(cfg.WholesaleThreshold),
	}
}

// Line prices qty units of item.
func (p *Pricer) Line(item model.Item, qty int) OrderLine {
	amount := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(qty)))
	return OrderLine{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: qty,
		Amount:   amount.Round(2).InexactFloat64(),
	}
}

// Price computes the quote for lines. couponAvailable is true only when the
// customer opted in and the coupon is still unused.
func (p *Pricer) Price(lines []OrderLine, couponAvailable bool) *Quote {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	q := &Quote{Lines: lines, Subtotal: subtotal, Discount: model.DiscountNone}
	switch {
	case couponAvailable:
		q.Total = subtotal.Mul(p.couponRate)
		q.Discount = model.DiscountCoupon
	case subtotal.GreaterThan(p.threshold):
		q.Total = subtotal.Mul(p.wholesaleRate)
		q.Discount = model.DiscountWholesale
	default:
		q.Total = subtotal
	}
	q.Total = q.Total.Round(2)
	return q
}

// Percent returns the discount of kind as a whole percentage, e.g. 5 for a
// 0.95 coupon rate.
func (p *Pricer) Percent(kind model.DiscountKind) int64 {
	hundred := decimal.NewFromInt(100)
	switch kind {
	case model.DiscountCoupon:
		return hundred.Sub(p.couponRate.Mul(hundred)).Round(0).IntPart()
	case model.DiscountWholesale:
		return hundred.Sub(p.wholesaleRate.Mul(hundred)).Round(0).IntPart()
	default:
		return 0
	}
}
