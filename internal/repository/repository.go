package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"order-app/internal/model"
)

// ItemRepository defines data access for catalog items.
type ItemRepository interface {
	// List returns every item ordered by id.
	List(ctx context.Context) ([]model.Item, error)

	// GetByID returns the item or nil when it does not exist.
	GetByID(ctx context.Context, id int) (*model.Item, error)

	// Create stores item under the next free id (max existing id + 1) and
	// sets item.ID.
	Create(ctx context.Context, item *model.Item) error

	// Update applies fn to the stored item and persists the result. It
	// fails with model.ErrItemNotFound when the item does not exist and
	// writes nothing when fn fails.
	Update(ctx context.Context, id int, fn func(item *model.Item) error) (*model.Item, error)

	// Delete removes the item.
	Delete(ctx context.Context, id int) error
}

// CouponRepository defines data access for the coupon ledger.
type CouponRepository interface {
	// List returns every coupon ordered by value.
	List(ctx context.Context) ([]model.Coupon, error)

	// GetByValue returns the coupon or nil when it does not exist.
	GetByValue(ctx context.Context, value string) (*model.Coupon, error)

	// Create stores a new coupon. Values must be unique.
	Create(ctx context.Context, coupon *model.Coupon) error

	// Update applies fn to the stored coupon and persists the result. It
	// fails with model.ErrInvalidCoupon when the coupon does not exist.
	Update(ctx context.Context, value string, fn func(coupon *model.Coupon) error) (*model.Coupon, error)
}

// OrderRepository defines data access for saved orders.
type OrderRepository interface {
	// List returns every order ordered by id.
	List(ctx context.Context) ([]model.Order, error)

	// ListByUser returns the orders placed by userID ordered by id.
	ListByUser(ctx context.Context, userID int) ([]model.Order, error)

	// GetByID returns the order or nil when it does not exist.
	GetByID(ctx context.Context, id int) (*model.Order, error)

	// Create stores order under a freshly allocated id and sets order.ID.
	Create(ctx context.Context, order *model.Order) error

	// Update applies fn to the stored order and persists the result. It
	// fails with model.ErrOrderNotFound when the order does not exist.
	Update(ctx context.Context, id int, fn func(order *model.Order) error) (*model.Order, error)

	// Delete removes the order. It fails with model.ErrOrderNotFound when
	// the order does not exist.
	Delete(ctx context.Context, id int) error
}

// AccountRepository defines data access for user accounts.
type AccountRepository interface {
	// List returns every account ordered by id.
	List(ctx context.Context) ([]model.Account, error)

	// GetByID returns the account or nil when it does not exist.
	GetByID(ctx context.Context, id int) (*model.Account, error)

	// GetByEmail returns the account registered with email or nil.
	// Emails compare case-insensitively.
	GetByEmail(ctx context.Context, email string) (*model.Account, error)

	// Create stores account under a freshly allocated id and sets
	// account.ID. It fails with model.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, account *model.Account) error

	// Update applies fn to the stored account and persists the result. It
	// fails with model.ErrUserNotFound when the account does not exist.
	Update(ctx context.Context, id int, fn func(account *model.Account) error) (*model.Account, error)
}

// key converts an integer id into its store key.
func key(id int) string {
	return strconv.Itoa(id)
}

// parseKey converts a store key back into an integer id.
func parseKey(k string) (int, error) {
	id, err := strconv.Atoi(k)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q: %w", k, err)
	}
	return id, nil
}

// maxKey returns the highest integer key in records, or 0 when empty.
func maxKey[T any](records map[string]T) (int, error) {
	highest := 0
	for k := range records {
		id, err := parseKey(k)
		if err != nil {
			return 0, err
		}
		highest = max(highest, id)
	}
	return highest, nil
}

// sortedIDs returns the integer keys of records in ascending order.
func sortedIDs[T any](records map[string]T) ([]int, error) {
	ids := make([]int, 0, len(records))
	for k := range records {
		id, err := parseKey(k)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
