package repository

import (
	"context"
	"fmt"

	"order-app/internal/model"
	"order-app/internal/store"

	"github.com/rs/zerolog"
)

// orderSequence is the sequence key used for order ids.
const orderSequence = "orders"

// orderRepository implements OrderRepository on top of the orders store.
type orderRepository struct {
	orders *store.Collection[model.Order]
	seq    *store.Sequence
	logger zerolog.Logger
}

// NewOrderRepository creates a store-backed order repository. Ids come
// from seq, so a deleted order's id is never handed out again.
func NewOrderRepository(backend store.Backend, seq *store.Sequence, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		orders: store.NewCollection[model.Order](backend, store.Orders),
		seq:    seq,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// List returns every order ordered by id.
func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, func(model.Order) bool { return true })
}

// ListByUser returns the orders placed by userID ordered by id.
func (r *orderRepository) ListByUser(ctx context.Context, userID int) ([]model.Order, error) {
	return r.list(ctx, func(o model.Order) bool { return o.UserID == userID })
}

func (r *orderRepository) list(ctx context.Context, keep func(model.Order) bool) ([]model.Order, error) {
	records, err := r.orders.Load(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to load orders")
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	ids, err := sortedIDs(records)
	if err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		o := records[key(id)]
		o.ID = id
		if keep(o) {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// GetByID returns the order or nil when it does not exist.
func (r *orderRepository) GetByID(ctx context.Context, id int) (*model.Order, error) {
	records, err := r.orders.Load(ctx)
	if err != nil {
		r.logger.Error().Err(err).Int("order_id", id).Msg("failed to load orders")
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	o, ok := records[key(id)]
	if !ok {
		r.logger.Debug().Int("order_id", id).Msg("order not found")
		return nil, nil
	}
	o.ID = id
	return &o, nil
}

// Create stores order under a freshly allocated id.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	err := r.orders.Update(ctx, func(records map[string]model.Order) error {
		highest, err := maxKey(records)
		if err != nil {
			return err
		}
		id, err := r.seq.Next(ctx, orderSequence, highest)
		if err != nil {
			return err
		}
		order.ID = id
		records[key(id)] = *order
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Int("user_id", order.UserID).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Int("order_id", order.ID).
		Int("user_id", order.UserID).
		Int("items", len(order.Items)).
		Msg("order created")
	return nil
}

// Update applies fn to the stored order.
func (r *orderRepository) Update(ctx context.Context, id int, fn func(order *model.Order) error) (*model.Order, error) {
	var updated model.Order
	err := r.orders.Update(ctx, func(records map[string]model.Order) error {
		o, ok := records[key(id)]
		if !ok {
			return model.ErrOrderNotFound
		}
		o.ID = id
		if err := fn(&o); err != nil {
			return err
		}
		records[key(id)] = o
		updated = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", id, err)
	}
	return &updated, nil
}

// Delete removes the order.
func (r *orderRepository) Delete(ctx context.Context, id int) error {
	err := r.orders.Update(ctx, func(records map[string]model.Order) error {
		if _, ok := records[key(id)]; !ok {
			return model.ErrOrderNotFound
		}
		delete(records, key(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("order %d: %w", id, err)
	}

	r.logger.Debug().Int("order_id", id).Msg("order deleted")
	return nil
}
