package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

// withStatus fills the derived stock status of each item.
func withStatus(items []model.InventoryItem, now time.Time) []model.InventoryItem {
	for i := range items {
		items[i].Status = items[i].StockStatus(now)
	}
	return items
}

// ListInventory returns the clinic's inventory, optionally for one category.
func (s *Service) ListInventory(ctx context.Context, category string) ([]model.InventoryItem, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	items, err := store.ListInventoryItems(ctx, s.DB, clinic, strings.ToUpper(category))
	if err != nil {
		return nil, err
	}
	return withStatus(items, s.now()), nil
}

// LowStockItems returns items at or below their minimum stock.
func (s *Service) LowStockItems(ctx context.Context) ([]model.InventoryItem, error) {
	items, err := s.ListInventory(ctx, "")
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(items, func(it model.InventoryItem) bool { return !it.LowStock() }), nil
}

// ExpiringItems returns items expiring between today and the given number of days from now.
func (s *Service) ExpiringItems(ctx context.Context, days int) ([]model.InventoryItem, error) {
	if days < 0 {
		return nil, invalidf("days must not be negative")
	}

	items, err := s.ListInventory(ctx, "")
	if err != nil {
		return nil, err
	}

	today := model.StartOfDay(s.now())
	limit := today.AddDate(0, 0, days+1)
	items = slices.DeleteFunc(items, func(it model.InventoryItem) bool {
		return it.ExpiryDate == nil || it.ExpiryDate.Before(today) || !it.ExpiryDate.Before(limit)
	})
	slices.SortFunc(items, func(a, b model.InventoryItem) int { return a.ExpiryDate.Compare(*b.ExpiryDate) })
	return items, nil
}

func (s *Service) GetInventoryItem(ctx context.Context, id int64) (*model.InventoryItem, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	it, err := load(ctx, s.DB, clinic, "inventory item", id, store.GetInventoryItem)
	if err != nil {
		return nil, err
	}
	it.Status = it.StockStatus(s.now())
	return it, nil
}

func checkStockLevels(it *model.InventoryItem) error {
	if it.MaxStock > 0 && it.MinStock > it.MaxStock {
		return invalidf("min_stock must not exceed max_stock")
	}
	return nil
}

func (s *Service) CreateInventoryItem(ctx context.Context, it *model.InventoryItem) (*model.InventoryItem, error) {
	trimAll(&it.Name, &it.SKU)
	if _, err := clinicAndValidate(ctx, it); err != nil {
		return nil, err
	}
	if err := checkStockLevels(it); err != nil {
		return nil, err
	}

	created, err := store.CreateInventoryItem(ctx, s.DB, it)
	if err != nil {
		return nil, err
	}
	created.Status = created.StockStatus(s.now())

	slog.InfoContext(ctx, "inventory item created", "item", created.ID, "name", created.Name)
	s.record(ctx, model.ActionCreate, model.EntityInventory, created.ID, created.Name,
		fmt.Sprintf("Item added with %d in stock", created.CurrentStock))
	return created, nil
}

func (s *Service) UpdateInventoryItem(ctx context.Context, id int64, it *model.InventoryItem) (*model.InventoryItem, error) {
	trimAll(&it.Name, &it.SKU)
	clinic, err := clinicAndValidate(ctx, it)
	if err != nil {
		return nil, err
	}
	if err := checkStockLevels(it); err != nil {
		return nil, err
	}

	it.ID = id
	if err := store.UpdateInventoryItem(ctx, s.DB, clinic, it); err != nil {
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, model.EntityInventory, id, it.Name, "Item updated")
	return s.GetInventoryItem(ctx, id)
}

// AdjustStock adds quantity (which may be negative) to an item's stock.
func (s *Service) AdjustStock(ctx context.Context, id, quantity int64, reason string) (*model.InventoryItem, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		return nil, invalidf("quantity must not be zero")
	}

	it, err := load(ctx, s.DB, clinic, "inventory item", id, store.GetInventoryItem)
	if err != nil {
		return nil, err
	}

	if err := store.AdjustStock(ctx, s.DB, clinic, id, quantity, s.now()); err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			return nil, invalidf("cannot remove %d of %s: only %d in stock", -quantity, it.Name, it.CurrentStock)
		}
		return nil, err
	}

	desc := fmt.Sprintf("Stock adjusted by %+d", quantity)
	if reason = strings.TrimSpace(reason); reason != "" {
		desc += ": " + reason
	}
	slog.InfoContext(ctx, "stock adjusted", "item", id, "quantity", quantity, "reason", reason)
	s.record(ctx, model.ActionAdjustStock, model.EntityInventory, id, it.Name, desc)
	return s.GetInventoryItem(ctx, id)
}

func (s *Service) DeleteInventoryItem(ctx context.Context, id int64) error {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return err
	}

	it, err := load(ctx, s.DB, clinic, "inventory item", id, store.GetInventoryItem)
	if err != nil {
		return err
	}
	if err := store.DeleteInventoryItem(ctx, s.DB, clinic, id); err != nil {
		return err
	}

	s.record(ctx, model.ActionDelete, model.EntityInventory, id, it.Name, "Item removed")
	return nil
}
