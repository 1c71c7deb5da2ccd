package service

import (
	"context"
	"time"

	"order-app/internal/config"
	"order-app/internal/model"
)

// CatalogService defines operations on catalog items.
type CatalogService interface {
	// Create adds a new item. Admin only.
	Create(ctx context.Context, p model.Principal, name string, price float64, stock int) (*model.Item, error)

	// Lookup returns the item or model.ErrItemNotFound.
	Lookup(ctx context.Context, id int) (*model.Item, error)

	// List returns every item ordered by id.
	List(ctx context.Context) ([]model.Item, error)

	// CheckAvailability reports whether the item exists and has at least qty on stock.
	CheckAvailability(ctx context.Context, id, qty int) (bool, error)

	// DecrementStock takes qty units off stock. It fails with
	// model.ErrInsufficientStock instead of letting stock go negative.
	DecrementStock(ctx context.Context, id, qty int) error

	// IncrementStock puts qty units back on stock.
	IncrementStock(ctx context.Context, id, qty int) error

	// Update sets price and stock at once. Admin only.
	Update(ctx context.Context, p model.Principal, id int, price float64, stock int) (*model.Item, error)

	// SetPrice changes the item price. Admin only.
	SetPrice(ctx context.Context, p model.Principal, id int, price float64) (*model.Item, error)

	// Delete removes the item. Admin only.
	Delete(ctx context.Context, p model.Principal, id int) error

	// MostPopular aggregates sold quantities over orders and returns the
	// topN items, highest quantity first.
	MostPopular(ctx context.Context, orders []model.Order, topN int) ([]model.ItemSales, error)

	// Import bulk-creates items during bootstrap.
	Import(ctx context.Context, items []model.Item) (int, error)
}

// CouponService defines operations on the coupon ledger.
type CouponService interface {
	// Issue creates a new unused coupon with a unique token.
	Issue(ctx context.Context) (*model.Coupon, error)

	// Status reports whether the coupon has been used.
	Status(ctx context.Context, token string) (bool, error)

	// Redeem marks the coupon used. Redeeming a used coupon fails with
	// model.ErrInvalidCouponStatus.
	Redeem(ctx context.Context, token string) error

	// Refund marks the coupon unused again and reports whether it was used.
	Refund(ctx context.Context, token string) (bool, error)

	// List returns every coupon.
	List(ctx context.Context) ([]model.Coupon, error)
}

// AccountService defines operations on user accounts.
type AccountService interface {
	// Register creates a customer account with its own coupon. Emails listed
	// in the admin policy get the admin role.
	Register(ctx context.Context, username, email, password string) (*model.Account, error)

	// Login returns the account matching the credentials.
	Login(ctx context.Context, email, password string) (*model.Account, error)

	// Get returns the account or model.ErrUserNotFound.
	Get(ctx context.Context, id int) (*model.Account, error)

	// List returns every account. Admin only.
	List(ctx context.Context, p model.Principal) ([]model.Account, error)

	// Lock prevents the account from logging in. Admin only.
	Lock(ctx context.Context, p model.Principal, id int) error

	// Unlock lifts a lock. Admin only.
	Unlock(ctx context.Context, p model.Principal, id int) error

	// AttachOrder appends orderID to the account's saved orders.
	AttachOrder(ctx context.Context, userID, orderID int) error

	// DetachOrder removes orderID from the account's saved orders.
	DetachOrder(ctx context.Context, userID, orderID int) error

	// SavedOrders returns the account's saved, unpaid orders.
	SavedOrders(ctx context.Context, userID int) ([]model.Order, error)

	// CouponStatus returns the account's coupon.
	CouponStatus(ctx context.Context, userID int) (*model.Coupon, error)

	// EnsureAdmins creates or promotes the accounts listed in policy and
	// returns how many accounts changed.
	EnsureAdmins(ctx context.Context, policy *config.AdminPolicy) (int, error)

	// CanLogout fails with model.ErrPendingOrders while the cart holds items
	// or saved orders are waiting for payment.
	CanLogout(ctx context.Context, userID int, cart *model.Cart) error
}

// OrderService defines the order lifecycle from cart to payment.
type OrderService interface {
	// AddToCart adds qty units of itemID to cart after checking availability.
	// Stock is not touched.
	AddToCart(ctx context.Context, cart *model.Cart, itemID, qty int) (*model.Item, error)

	// Quote prices cart without saving anything.
	Quote(ctx context.Context, p model.Principal, cart *model.Cart, useCoupon bool) (*Quote, error)

	// Save turns cart into an ordered order, taking stock and redeeming the
	// coupon when it was applied. The cart is cleared on success.
	Save(ctx context.Context, p model.Principal, cart *model.Cart, useCoupon bool) (*model.Order, error)

	// Cancel reverses a saved order and deletes it.
	Cancel(ctx context.Context, p model.Principal, orderID int) error

	// Pay marks a saved order paid.
	Pay(ctx context.Context, p model.Principal, orderID int) (*model.Order, error)

	// Get returns an order owned by p, or any order for admins.
	Get(ctx context.Context, p model.Principal, orderID int) (*model.Order, error)

	// ListForUser returns every order placed by p.
	ListForUser(ctx context.Context, p model.Principal) ([]model.Order, error)

	// Receipt builds the printable receipt of an order.
	Receipt(ctx context.Context, p model.Principal, orderID int) (*Receipt, error)

	// ExportRows builds the tabular projection of an order for export.
	ExportRows(ctx context.Context, p model.Principal, orderID int) (*OrderExport, error)
}

// ReportService defines read-only administrative reports.
type ReportService interface {
	// AllOrders lists every order with user and item names resolved.
	AllOrders(ctx context.Context, p model.Principal) ([]OrderSummary, error)

	// Brutto sums the totals of all orders.
	Brutto(ctx context.Context, p model.Principal) (float64, error)

	// Paid sums the totals of paid orders.
	Paid(ctx context.Context, p model.Principal) (float64, error)

	// PopularItems returns the topN most sold items.
	PopularItems(ctx context.Context, p model.Principal, topN int) ([]model.ItemSales, error)

	// UsedCoupons lists accounts whose coupon has been used.
	UsedCoupons(ctx context.Context, p model.Principal) ([]CouponOwner, error)

	// ActiveCoupons lists accounts whose coupon is still unused.
	ActiveCoupons(ctx context.Context, p model.Principal) ([]CouponOwner, error)
}

// OrderLine is one resolved order line.
type OrderLine struct {
	ItemID   int
	Name     string
	Price    float64
	Quantity int
	Amount   float64
}

// Receipt is the printable summary of a paid order.
type Receipt struct {
	OrderID  int
	Customer string
	IssuedAt time.Time
	Lines    []OrderLine
	Subtotal float64
	Total    float64
	Discount model.DiscountKind
	Percent  int64
}

// OrderExport is the flat tabular projection of an order plus summary metadata.
type OrderExport struct {
	OrderID     int
	Rows        []OrderLine
	Discount    model.DiscountKind
	Percent     int64
	CouponUsed  bool
	Sum         float64
	GeneratedAt time.Time
}

// OrderSummary is an order with its owner and item names resolved.
type OrderSummary struct {
	Order    model.Order
	Username string
	Lines    []OrderLine
}

// CouponOwner pairs an account with its coupon token.
type CouponOwner struct {
	UserID   int
	Username string
	Coupon   string
}

// requireAdmin rejects principals without the admin capability.
func requireAdmin(p model.Principal) error {
	if p == nil || !p.IsAdmin() {
		return model.ErrAdminRequired
	}
	return nil
}
