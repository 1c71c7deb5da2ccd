package model

import (
	"sort"
	"time"
)

// OrderStatus is the persisted lifecycle state of an order.
type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusOrdered OrderStatus = "ordered"
	StatusPaid    OrderStatus = "paid"
)

// DiscountKind records which discount was applied when the order was saved.
type DiscountKind string

const (
	DiscountNone      DiscountKind = "none"
	DiscountCoupon    DiscountKind = "coupon"
	DiscountWholesale DiscountKind = "wholesale"
)

// Order is a saved order. Items maps item id to quantity.
type Order struct {
	ID         int          `json:"-"`
	UserID     int          `json:"user"`
	Items      map[int]int  `json:"items"`
	Subtotal   float64      `json:"subtotal,omitempty"`
	Total      float64      `json:"total"`
	Discount   DiscountKind `json:"discount,omitempty"`
	CouponUsed bool         `json:"coupon_used"`
	Status     OrderStatus  `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	PaidAt     *time.Time   `json:"paid_at,omitempty"`
}

// ItemIDs returns the order's item ids in ascending order.
func (o *Order) ItemIDs() []int {
	ids := make([]int, 0, len(o.Items))
	for id := range o.Items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Cart is the in-session, unpersisted order being assembled.
// Lines keep the order in which items were first picked.
type Cart struct {
	Lines []CartLine
}

// CartLine is one item in the cart.
type CartLine struct {
	ItemID   int
	Quantity int
}

// Add accumulates qty for itemID.
func (c *Cart) Add(itemID, qty int) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Quantity += qty
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{ItemID: itemID, Quantity: qty})
}

// Quantity returns the quantity already in the cart for itemID.
func (c *Cart) Quantity(itemID int) int {
	for _, l := range c.Lines {
		if l.ItemID == itemID {
			return l.Quantity
		}
	}
	return 0
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Lines) == 0
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Items returns the cart as an item id to quantity mapping.
func (c *Cart) Items() map[int]int {
	items := make(map[int]int, len(c.Lines))
	for _, l := range c.Lines {
		items[l.ItemID] += l.Quantity
	}
	return items
}
