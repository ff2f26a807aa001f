package model

import "time"

// InventoryItem is a stocked product. UnitPrice is in cents.
type InventoryItem struct {
	ID int64 `json:"id"`
	Tenancy
	Name          string     `json:"name" validate:"required,max=200"`
	Category      string     `json:"category" validate:"oneof=MEDICATION SUPPLIES EQUIPMENT FOOD TOYS OTHER"`
	Description   string     `json:"description"`
	SKU           string     `json:"sku"`
	CurrentStock  int64      `json:"current_stock" validate:"gte=0"`
	MinStock      int64      `json:"min_stock" validate:"gte=0"`
	MaxStock      int64      `json:"max_stock" validate:"gte=0"`
	UnitPrice     int64      `json:"unit_price" validate:"gte=0"`
	Supplier      string     `json:"supplier"`
	Location      string     `json:"location"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	BatchNumber   string     `json:"batch_number"`
	Notes         string     `json:"notes"`
	LastRestocked *time.Time `json:"last_restocked,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Inventory categories.
const (
	CategoryMedication = "MEDICATION"
	CategorySupplies   = "SUPPLIES"
	CategoryEquipment  = "EQUIPMENT"
	CategoryFood       = "FOOD"
	CategoryToys       = "TOYS"
	CategoryOther      = "OTHER"
)

// Stock statuses. Status is derived, never stored.
const (
	StockIn      = "IN_STOCK"
	StockLow     = "LOW_STOCK"
	StockOut     = "OUT_OF_STOCK"
	StockExpired = "EXPIRED"
)

// StockStatus derives the item's status on the given day.
func (it *InventoryItem) StockStatus(now time.Time) string {
	switch {
	case it.ExpiryDate != nil && it.ExpiryDate.Before(StartOfDay(now)):
		return StockExpired
	case it.CurrentStock <= 0:
		return StockOut
	case it.CurrentStock <= it.MinStock:
		return StockLow
	}
	return StockIn
}

// LowStock reports whether the item is at or below its minimum stock.
func (it *InventoryItem) LowStock() bool {
	return it.CurrentStock <= it.MinStock
}
