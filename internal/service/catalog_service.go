package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"order-app/internal/model"
	"order-app/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	itemRepo repository.ItemRepository
	logger   zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(itemRepo repository.ItemRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		itemRepo: itemRepo,
		logger:   logger.With().Str("service", "catalog").Logger(),
	}
}

// Create adds a new item.
func (s *catalogService) Create(ctx context.Context, p model.Principal, name string, price float64, stock int) (*model.Item, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.create(ctx, name, price, stock)
}

func (s *catalogService) create(ctx context.Context, name string, price float64, stock int) (*model.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("item name is required: %w", model.ErrInvalidInput)
	}
	if err := validateItem(price, stock); err != nil {
		return nil, err
	}

	item := &model.Item{Name: name, Price: price, Stock: stock}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int("item_id", item.ID).Str("name", item.Name).Msg("item created")
	return item, nil
}

// Lookup returns the item or model.ErrItemNotFound.
func (s *catalogService) Lookup(ctx context.Context, id int) (*model.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, model.ErrItemNotFound)
	}
	return item, nil
}

// List returns every item ordered by id.
func (s *catalogService) List(ctx context.Context) ([]model.Item, error) {
	return s.itemRepo.List(ctx)
}

// CheckAvailability reports whether the item exists with enough stock.
func (s *catalogService) CheckAvailability(ctx context.Context, id, qty int) (bool, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return item != nil && item.Available(qty), nil
}

// DecrementStock takes qty units off stock. The stock check and the write
// happen under the same store lock.
func (s *catalogService) DecrementStock(ctx context.Context, id, qty int) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	item, err := s.itemRepo.Update(ctx, id, func(item *model.Item) error {
		if item.Stock < qty {
			return model.ErrInsufficientStock
		}
		item.Stock -= qty
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Int("item_id", id).Int("quantity", qty).Msg("failed to decrement stock")
		return err
	}

	s.logger.Debug().Int("item_id", id).Int("stock", item.Stock).Msg("stock decremented")
	return nil
}

// IncrementStock puts qty units back on stock.
func (s *catalogService) IncrementStock(ctx context.Context, id, qty int) error {
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	item, err := s.itemRepo.Update(ctx, id, func(item *model.Item) error {
		item.Stock += qty
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Int("item_id", id).Int("quantity", qty).Msg("failed to increment stock")
		return err
	}

	s.logger.Debug().Int("item_id", id).Int("stock", item.Stock).Msg("stock incremented")
	return nil
}

// Update sets price and stock at once.
func (s *catalogService) Update(ctx context.Context, p model.Principal, id int, price float64, stock int) (*model.Item, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := validateItem(price, stock); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.Update(ctx, id, func(item *model.Item) error {
		item.Price = price
		item.Stock = stock
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("item_id", id).Float64("price", price).Int("stock", stock).Msg("item updated")
	return item, nil
}

// SetPrice changes the item price.
func (s *catalogService) SetPrice(ctx context.Context, p model.Principal, id int, price float64) (*model.Item, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if price < 0 {
		return nil, model.ErrInvalidPrice
	}

	item, err := s.itemRepo.Update(ctx, id, func(item *model.Item) error {
		item.Price = price
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("item_id", id).Float64("price", price).Msg("item price changed")
	return item, nil
}

// Delete removes the item.
func (s *catalogService) Delete(ctx context.Context, p model.Principal, id int) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int("item_id", id).Msg("item deleted")
	return nil
}

// MostPopular aggregates quantities over orders. Orders are visited by
// ascending id and their lines by ascending item id; items with equal
// quantities keep the order in which they were first seen. Items deleted
// from the catalog since are left out.
func (s *catalogService) MostPopular(ctx context.Context, orders []model.Order, topN int) ([]model.ItemSales, error) {
	if topN <= 0 {
		return nil, nil
	}

	sorted := make([]model.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	totals := map[int]int{}
	var seen []int
	for _, o := range sorted {
		for _, itemID := range o.ItemIDs() {
			if _, ok := totals[itemID]; !ok {
				seen = append(seen, itemID)
			}
			totals[itemID] += o.Items[itemID]
		}
	}

	sort.SliceStable(seen, func(i, j int) bool { return totals[seen[i]] > totals[seen[j]] })

	result := make([]model.ItemSales, 0, topN)
	for _, itemID := range seen {
		if len(result) == topN {
			break
		}
		item, err := s.Lookup(ctx, itemID)
		if err != nil {
			if errors.Is(err, model.ErrItemNotFound) {
				s.logger.Debug().Int("item_id", itemID).Msg("skipping deleted item in popularity ranking")
				continue
			}
			return nil, err
		}
		result = append(result, model.ItemSales{Item: *item, Quantity: totals[itemID]})
	}
	return result, nil
}

// Import bulk-creates items. It stops at the first invalid item.
func (s *catalogService) Import(ctx context.Context, items []model.Item) (int, error) {
	for i, it := range items {
		if _, err := s.create(ctx, it.Name, it.Price, it.Stock); err != nil {
			return i, fmt.Errorf("failed to import item %q: %w", it.Name, err)
		}
	}

	s.logger.Info().Int("count", len(items)).Msg("catalog imported")
	return len(items), nil
}

func validateItem(price float64, stock int) error {
	if price < 0 {
		return model.ErrInvalidPrice
	}
	if stock < 0 {
		return model.ErrInvalidStock
	}
	return nil
}
