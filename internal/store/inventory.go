package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/tenant"
)

// ErrInsufficientStock is returned when an adjustment would make stock negative.
var ErrInsufficientStock = errors.New("insufficient stock")

const inventoryColumns = `id, clinic_code, name, category, description, sku, current_stock, min_stock, max_stock,
	unit_price, supplier, location, expiry_date, batch_number, notes, last_restocked, created_at, updated_at`

func scanInventoryItem(s scanner) (model.InventoryItem, error) {
	var it model.InventoryItem
	err := s.Scan(&it.ID, &it.ClinicCode, &it.Name, &it.Category, &it.Description, &it.SKU,
		&it.CurrentStock, &it.MinStock, &it.MaxStock, &it.UnitPrice, &it.Supplier, &it.Location,
		&it.ExpiryDate, &it.BatchNumber, &it.Notes, &it.LastRestocked, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

// CreateInventoryItem stamps and inserts a new inventory item.
func CreateInventoryItem(ctx context.Context, db *sql.DB, it *model.InventoryItem) (*model.InventoryItem, error) {
	if err := tenant.Stamp(ctx, it); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO inventory_items (clinic_code, name, category, description, sku, current_stock, min_stock,
		     max_stock, unit_price, supplier, location, expiry_date, batch_number, notes, last_restocked)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ClinicCode, it.Name, it.Category, it.Description, it.SKU, it.CurrentStock, it.MinStock,
		it.MaxStock, it.UnitPrice, it.Supplier, it.Location, dbTimePtr(it.ExpiryDate), it.BatchNumber,
		it.Notes, dbTimePtr(it.LastRestocked),
	)
	if err != nil {
		return nil, fmt.Errorf("creating inventory item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting inventory item id: %w", err)
	}

	return GetInventoryItem(ctx, db, it.ClinicCode, id)
}

// GetInventoryItem returns an inventory item of the clinic by ID, or nil.
func GetInventoryItem(ctx context.Context, db *sql.DB, clinicCode string, id int64) (*model.InventoryItem, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	it, err := scanOne(db.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	), scanInventoryItem)
	if err != nil {
		return nil, fmt.Errorf("getting inventory item: %w", err)
	}
	return it, nil
}

// ListInventoryItems returns the clinic's inventory, optionally filtered by category.
func ListInventoryItems(ctx context.Context, db *sql.DB, clinicCode, category string) ([]model.InventoryItem, error) {
	if err := requireClinic(clinicCode); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if category != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+inventoryColumns+` FROM inventory_items WHERE clinic_code = ? AND category = ? ORDER BY name`,
			clinicCode, category,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+inventoryColumns+` FROM inventory_items WHERE clinic_code = ? ORDER BY name`, clinicCode,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}

	items, err := collect(rows, scanInventoryItem)
	if err != nil {
		return nil, fmt.Errorf("scanning inventory item: %w", err)
	}
	return items, nil
}

// UpdateInventoryItem updates an inventory item.
func UpdateInventoryItem(ctx context.Context, db *sql.DB, clinicCode string, it *model.InventoryItem) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE inventory_items SET name = ?, category = ?, description = ?, sku = ?, current_stock = ?,
		     min_stock = ?, max_stock = ?, unit_price = ?, supplier = ?, location = ?, expiry_date = ?,
		     batch_number = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND clinic_code = ?`,
		it.Name, it.Category, it.Description, it.SKU, it.CurrentStock, it.MinStock, it.MaxStock,
		it.UnitPrice, it.Supplier, it.Location, dbTimePtr(it.ExpiryDate), it.BatchNumber, it.Notes,
		it.ID, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("updating inventory item: %w", err)
	}
	return mustAffect(result, "updating inventory item")
}

// AdjustStock changes an item's stock by delta, which may be negative.
// A positive delta records the restock time.
func AdjustStock(ctx context.Context, db *sql.DB, clinicCode string, id, delta int64, at time.Time) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}
	if delta == 0 {
		return fmt.Errorf("delta must be non-zero")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT current_stock FROM inventory_items WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("adjusting stock: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking current stock: %w", err)
	}

	newQty := current + delta
	if newQty < 0 {
		return fmt.Errorf("%w: %d + %d = %d", ErrInsufficientStock, current, delta, newQty)
	}

	if delta > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE inventory_items SET current_stock = ?, last_restocked = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND clinic_code = ?`,
			newQty, dbTime(at), id, clinicCode,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE inventory_items SET current_stock = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND clinic_code = ?`,
			newQty, id, clinicCode,
		)
	}
	if err != nil {
		return fmt.Errorf("adjusting stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing adjustment: %w", err)
	}
	return nil
}

// DeleteInventoryItem deletes an inventory item.
func DeleteInventoryItem(ctx context.Context, db *sql.DB, clinicCode string, id int64) error {
	if err := requireClinic(clinicCode); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM inventory_items WHERE id = ? AND clinic_code = ?`, id, clinicCode,
	)
	if err != nil {
		return fmt.Errorf("deleting inventory item: %w", err)
	}
	return mustAffect(result, "deleting inventory item")
}
