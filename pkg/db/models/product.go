package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical catalog entry. StockQty is a denormalized counter
// mutated only through the inventory ledger, never written directly.
type Product struct {
	ID                int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Name              string           `gorm:"column:name;not null"`
	Barcode           *string          `gorm:"column:barcode;uniqueIndex"`
	CategoryID        int64            `gorm:"column:category_id;not null;index"`
	Category          *ProductCategory `gorm:"foreignKey:CategoryID"`
	SupplierID        *int64           `gorm:"column:supplier_id;index"`
	Supplier          *Supplier        `gorm:"foreignKey:SupplierID"`
	UnitPrice         decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CostPrice         decimal.Decimal  `gorm:"column:cost_price;type:numeric(12,2);not null"`
	StockQty          int              `gorm:"column:stock_qty;not null;default:0"`
	LowStockThreshold int              `gorm:"column:low_stock_threshold;not null;default:0"`
	IsActive          bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
