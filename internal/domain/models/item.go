// internal/domain/models/item.go
package models

// Item is an inventory item as served by the inventory backend.
type Item struct {
	ID                int       `json:"id"`
	WalmartItemID     string    `json:"walmart_item_id"`
	Name              string    `json:"name"`
	Brand             string    `json:"brand,omitempty"`
	Category          string    `json:"category"`
	Description       string    `json:"description,omitempty"`
	Quantity          int       `json:"quantity"`
	Unit              string    `json:"unit"`
	Price             float64   `json:"price"`
	CurrentStock      int       `json:"current_stock"`
	MinStockThreshold int       `json:"min_stock_threshold"`
	MaxStockThreshold int       `json:"max_stock_threshold"`
	CreatedAt         Timestamp `json:"created_at,omitempty"`
	UpdatedAt         Timestamp `json:"updated_at,omitempty"`
}

// Item defaults applied by the backend when a field is omitted.
const (
	DefaultUnit              = "pieces"
	DefaultMinStockThreshold = 10
	DefaultMaxStockThreshold = 1000
)

// Stock level labels derived from an item's own thresholds.
const (
	StockOut    = "out"
	StockLow    = "low"
	StockOver   = "over"
	StockNormal = "normal"
)

// StockLevel classifies the item's current stock against its thresholds.
func (i Item) StockLevel() string {
	switch {
	case i.CurrentStock <= 0:
		return StockOut
	case i.CurrentStock < i.MinStockThreshold:
		return StockLow
	case i.MaxStockThreshold > 0 && i.CurrentStock > i.MaxStockThreshold:
		return StockOver
	default:
		return StockNormal
	}
}

// InventoryStats summarizes the inventory.
type InventoryStats struct {
	TotalItems      int `json:"total_items"`
	TotalStock      int `json:"total_stock"`
	LowStockItems   int `json:"low_stock_items"`
	OutOfStockItems int `json:"out_of_stock_items"`
}
