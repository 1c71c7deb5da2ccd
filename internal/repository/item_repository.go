package repository

import (
	"context"
	"fmt"

	"order-app/internal/model"
	"order-app/internal/store"

	"github.com/rs/zerolog"
)

// itemRepository implements ItemRepository on top of the items store.
type itemRepository struct {
	items  *store.Collection[model.Item]
	logger zerolog.Logger
}

// NewItemRepository creates a store-backed item repository.
func NewItemRepository(backend store.Backend, logger zerolog.Logger) ItemRepository {
	return &itemRepository{
		items:  store.NewCollection[model.Item](backend, store.Items),
		logger: logger.With().Str("repository", "item").Logger(),
	}
}

// List returns every item ordered by id.
func (r *itemRepository) List(ctx context.Context) ([]model.Item, error) {
	records, err := r.items.Load(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to load items")
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	ids, err := sortedIDs(records)
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		item := records[key(id)]
		item.ID = id
		items = append(items, item)
	}
	return items, nil
}

// GetByID returns the item or nil when it does not exist.
func (r *itemRepository) GetByID(ctx context.Context, id int) (*model.Item, error) {
	records, err := r.items.Load(ctx)
	if err != nil {
		r.logger.Error().Err(err).Int("item_id", id).Msg("failed to load items")
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	item, ok := records[key(id)]
	if !ok {
		r.logger.Debug().Int("item_id", id).Msg("item not found")
		return nil, nil
	}
	item.ID = id
	return &item, nil
}

// Create stores item under the next free id.
func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	err := r.items.Update(ctx, func(records map[string]model.Item) error {
		highest, err := maxKey(records)
		if err != nil {
			return err
		}
		item.ID = highest + 1
		records[key(item.ID)] = *item
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Str("name", item.Name).Msg("failed to create item")
		return fmt.Errorf("failed to create item: %w", err)
	}

	r.logger.Debug().Int("item_id", item.ID).Str("name", item.Name).Msg("item created")
	return nil
}

// Update applies fn to the stored item.
func (r *itemRepository) Update(ctx context.Context, id int, fn func(item *model.Item) error) (*model.Item, error) {
	var updated model.Item
	err := r.items.Update(ctx, func(records map[string]model.Item) error {
		item, ok := records[key(id)]
		if !ok {
			return model.ErrItemNotFound
		}
		item.ID = id
		if err := fn(&item); err != nil {
			return err
		}
		records[key(id)] = item
		updated = item
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	return &updated, nil
}

// Delete removes the item.
func (r *itemRepository) Delete(ctx context.Context, id int) error {
	err := r.items.Update(ctx, func(records map[string]model.Item) error {
		if _, ok := records[key(id)]; !ok {
			return model.ErrItemNotFound
		}
		delete(records, key(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("item %d: %w", id, err)
	}

	r.logger.Debug().Int("item_id", id).Msg("item deleted")
	return nil
}
